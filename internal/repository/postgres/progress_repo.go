package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// ProgressRepo реализует repository.ProgressRepository
type ProgressRepo struct {
	db *gorm.DB
}

// NewProgressRepo создает новый репозиторий журнала ответов
func NewProgressRepo(db *gorm.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

// Save сохраняет одну запись. Повторов нет: одна попытка на вызов.
func (r *ProgressRepo) Save(ctx context.Context, progress *entity.UserProgress) error {
	if progress.AttemptNumber == 0 {
		progress.AttemptNumber = 1
	}
	return mapError(r.db.WithContext(ctx).Create(progress).Error)
}

// ListByUserSince возвращает записи пользователя от новых к старым
func (r *ProgressRepo) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]entity.UserProgress, error) {
	var records []entity.UserProgress
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

// CountByUser возвращает число ответов пользователя
func (r *ProgressRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.UserProgress{}).Where("user_id = ?", userID).Count(&count).Error
	return count, mapError(err)
}
