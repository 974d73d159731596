package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
)

// upsertBatchSize - размер пачки при импорте вопросов
const upsertBatchSize = 200

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// ListActive возвращает активные вопросы в порядке question_number
func (r *QuestionRepo) ListActive(ctx context.Context) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("question_number ASC").
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, mapError(err)
	}
	return questions, nil
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapError(err)
	}
	return &question, nil
}

// UpsertBatch вставляет вопросы, существующие строки обновляются целиком
func (r *QuestionRepo) UpsertBatch(ctx context.Context, questions []entity.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&questions, upsertBatchSize)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, mapError(err)
	}
	return affected, nil
}

// Deactivate помечает вопросы неактивными
func (r *QuestionRepo) Deactivate(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("id IN ?", ids).
		Update("is_active", false)
	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	return res.RowsAffected, nil
}

// CountActive возвращает число активных вопросов
func (r *QuestionRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Question{}).Where("is_active = ?", true).Count(&count).Error
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}
