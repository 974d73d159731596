package repository

import (
	"context"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов
type QuestionRepository interface {
	// ListActive возвращает активные вопросы, упорядоченные по question_number
	ListActive(ctx context.Context) ([]entity.Question, error)
	GetByID(ctx context.Context, id string) (*entity.Question, error)
	// UpsertBatch вставляет или обновляет вопросы по первичному ключу
	UpsertBatch(ctx context.Context, questions []entity.Question) (int64, error)
	// Deactivate скрывает вопросы из загрузки, не удаляя их
	Deactivate(ctx context.Context, ids []string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}
