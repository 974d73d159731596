package service

import (
	"context"
	"log"
	"time"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/questionbank"
	"github.com/yourusername/examprep-api/internal/service/studysession"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// QuestionStore - банк вопросов с перезагрузкой
type QuestionStore interface {
	QuestionSnapshot
	QuestionLookup
	Load(ctx context.Context) questionbank.LoadResult
	Source() string
	LoadedAt() time.Time
}

// CacheInvalidator сбрасывает производные данные после перезагрузки банка
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// QuestionPage - страница списка вопросов
type QuestionPage struct {
	Items    []entity.Question
	Total    int
	Page     int
	PageSize int
}

// QuestionStats - состав банка вопросов
type QuestionStats struct {
	Total        int            `json:"total"`
	Source       string         `json:"source"`
	LoadedAt     time.Time      `json:"loaded_at"`
	ByType       map[string]int `json:"by_type"`
	ByArea       map[string]int `json:"by_area"`
	ByDifficulty map[string]int `json:"by_difficulty"`
}

// QuestionService предоставляет чтение и перезагрузку банка вопросов
type QuestionService struct {
	store       QuestionStore
	invalidator CacheInvalidator
}

// NewQuestionService создает сервис. invalidator может быть nil.
func NewQuestionService(store QuestionStore, invalidator CacheInvalidator) *QuestionService {
	return &QuestionService{store: store, invalidator: invalidator}
}

// List возвращает страницу вопросов, отобранных по критериям
func (s *QuestionService) List(criteria studysession.Criteria, page, pageSize int) *QuestionPage {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	questions := s.store.Questions()
	if !criteria.IsWildcard() {
		questions = studysession.Filter(questions, criteria)
	}

	result := &QuestionPage{Total: len(questions), Page: page, PageSize: pageSize, Items: []entity.Question{}}
	start := (page - 1) * pageSize
	if start >= len(questions) {
		return result
	}
	end := start + pageSize
	if end > len(questions) {
		end = len(questions)
	}
	result.Items = questions[start:end]
	return result
}

// Get возвращает вопрос по ID
func (s *QuestionService) Get(id string) (*entity.Question, error) {
	q, ok := s.store.Get(id)
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

// Reload перезагружает банк. Активные сессии продолжают работать со своим снимком.
func (s *QuestionService) Reload(ctx context.Context) questionbank.LoadResult {
	result := s.store.Load(ctx)
	log.Printf("[QuestionService] Банк вопросов перезагружен: %d вопросов, source=%s, stale=%t", result.Count, result.Source, result.Stale)
	if !result.Stale && s.invalidator != nil {
		s.invalidator.InvalidateAll(ctx)
	}
	return result
}

// Stats возвращает состав банка по типам, областям и уровням сложности
func (s *QuestionService) Stats() QuestionStats {
	questions := s.store.Questions()
	stats := QuestionStats{
		Total:        len(questions),
		Source:       s.store.Source(),
		LoadedAt:     s.store.LoadedAt(),
		ByType:       map[string]int{},
		ByArea:       map[string]int{},
		ByDifficulty: map[string]int{},
	}
	for i := range questions {
		q := &questions[i]
		stats.ByType[q.TypeKey()]++
		stats.ByArea[q.AreaKey()]++
		stats.ByDifficulty[q.DifficultyLabel()]++
	}
	return stats
}
