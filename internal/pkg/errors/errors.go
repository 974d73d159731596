package errors

import "errors"

// Общие ошибки приложения. Сервисы оборачивают их через %w,
// обработчики выбирают HTTP-статус по errors.Is.
var (
	// ErrNotFound - запись, вопрос или сессия не найдены
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized - запрос без идентифицированного пользователя
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden - ресурс принадлежит другому пользователю
	ErrForbidden = errors.New("forbidden")

	// ErrValidation - некорректный ввод или документ с вопросами не прошёл схему
	ErrValidation = errors.New("validation failed")

	// ErrConflict - состояние не допускает операцию (повторный ответ, дубликат ключа)
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable - сервис временно не может принять запрос, повтор имеет смысл
	ErrUnavailable = errors.New("temporarily unavailable")
)
