package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// StudySessionRepository определяет методы для истории учебных сессий
type StudySessionRepository interface {
	Create(ctx context.Context, session *entity.StudySession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StudySession, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.StudySession, error)
}
