package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
)

// StudySessionRepo реализует repository.StudySessionRepository
type StudySessionRepo struct {
	db *gorm.DB
}

// NewStudySessionRepo создает новый репозиторий сессий
func NewStudySessionRepo(db *gorm.DB) *StudySessionRepo {
	return &StudySessionRepo{db: db}
}

// Create сохраняет завершённую сессию
func (r *StudySessionRepo) Create(ctx context.Context, session *entity.StudySession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return mapError(r.db.WithContext(ctx).Create(session).Error)
}

// GetByID возвращает сессию по ID
func (r *StudySessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StudySession, error) {
	var session entity.StudySession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapError(err)
	}
	return &session, nil
}

// ListByUser возвращает последние сессии пользователя
func (r *StudySessionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]entity.StudySession, error) {
	if limit <= 0 {
		limit = 20
	}
	var sessions []entity.StudySession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, mapError(err)
	}
	return sessions, nil
}
