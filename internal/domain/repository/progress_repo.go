package repository

import (
	"context"
	"time"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// ProgressRepository определяет методы для журнала ответов
type ProgressRepository interface {
	Save(ctx context.Context, progress *entity.UserProgress) error
	// ListByUserSince возвращает записи пользователя новее since (нулевое время - все), от новых к старым
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]entity.UserProgress, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}
