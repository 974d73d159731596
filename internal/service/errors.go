package service

import (
	"fmt"

	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
)

// Ошибки сервисов. Обёртки над общими ошибками, чтобы обработчики могли проверять errors.Is по обоим.
var (
	ErrSessionNotFound  = fmt.Errorf("study session %w", apperrors.ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", apperrors.ErrNotFound)
	ErrSessionForbidden = fmt.Errorf("study session belongs to another user: %w", apperrors.ErrForbidden)
	ErrQuestionMismatch = fmt.Errorf("answer is for a question other than the current one: %w", apperrors.ErrConflict)
	ErrInvalidRange     = fmt.Errorf("unknown progress range: %w", apperrors.ErrValidation)
	ErrTooManySessions  = fmt.Errorf("too many active study sessions: %w", apperrors.ErrUnavailable)
)
