package studysession

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// attemptPlaceholder - номер попытки в журнале. Повторные попытки не отслеживаются.
const attemptPlaceholder = 1

const defaultRelayTimeout = 10 * time.Second

// ProgressWriter сохраняет одну запись журнала ответов
type ProgressWriter interface {
	Save(ctx context.Context, progress *entity.UserProgress) error
}

// FailureFunc вызывается, если запись не удалась. Ошибка дальше не передаётся.
type FailureFunc func(record entity.UserProgress, err error)

// SuccessFunc вызывается после успешной записи
type SuccessFunc func(record entity.UserProgress)

// Relay отправляет результаты ответов в журнал: одна попытка на вызов, без повторов,
// без ожидания со стороны вызывающего кода.
type Relay struct {
	writer    ProgressWriter
	onFailure FailureFunc
	onSuccess SuccessFunc
	timeout   time.Duration
	wg        sync.WaitGroup
}

// RelayOption настраивает Relay
type RelayOption func(*Relay)

// WithFailureHandler заменяет обработчик ошибок записи
func WithFailureHandler(f FailureFunc) RelayOption {
	return func(r *Relay) { r.onFailure = f }
}

// WithSuccessHandler задаёт обработчик успешной записи
func WithSuccessHandler(f SuccessFunc) RelayOption {
	return func(r *Relay) { r.onSuccess = f }
}

// WithTimeout задаёт таймаут одной записи
func WithTimeout(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRelay создает Relay. По умолчанию ошибки записи пишутся в лог.
func NewRelay(writer ProgressWriter, opts ...RelayOption) *Relay {
	r := &Relay{
		writer:  writer,
		timeout: defaultRelayTimeout,
		onFailure: func(record entity.UserProgress, err error) {
			log.Printf("[ProgressRelay] Не удалось сохранить ответ user=%s question=%s: %v", record.UserID, record.QuestionID, err)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit отправляет результат в журнал, если известны пользователь и вопрос.
// Возвращает true, если запись была запущена. Запись идёт в отдельной горутине.
func (r *Relay) Submit(userID, questionID string, isCorrect bool, timeSpent int) bool {
	if r == nil || r.writer == nil || userID == "" || questionID == "" {
		return false
	}
	if timeSpent < 0 {
		timeSpent = 0
	}
	record := entity.UserProgress{
		UserID:        userID,
		QuestionID:    questionID,
		IsCorrect:     isCorrect,
		TimeSpent:     timeSpent,
		AttemptNumber: attemptPlaceholder,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.write(record)
	}()
	return true
}

func (r *Relay) write(record entity.UserProgress) {
	// Запрос клиента к этому моменту может быть завершён, поэтому контекст свой
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	toSave := record
	if err := r.writer.Save(ctx, &toSave); err != nil {
		if r.onFailure != nil {
			r.onFailure(record, err)
		}
		return
	}
	if r.onSuccess != nil {
		r.onSuccess(toSave)
	}
}

// Wait ждёт завершения всех начатых записей
func (r *Relay) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
