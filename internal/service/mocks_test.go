package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/questionbank"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockProgressRepo реализует repository.ProgressRepository
type MockProgressRepo struct {
	mock.Mock
}

func (m *MockProgressRepo) Save(ctx context.Context, progress *entity.UserProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepo) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]entity.UserProgress, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserProgress), args.Error(1)
}

func (m *MockProgressRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCacheRepo) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// MockStudySessionRepo реализует repository.StudySessionRepository
type MockStudySessionRepo struct {
	mock.Mock
}

func (m *MockStudySessionRepo) Create(ctx context.Context, session *entity.StudySession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockStudySessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StudySession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StudySession), args.Error(1)
}

func (m *MockStudySessionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]entity.StudySession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StudySession), args.Error(1)
}

// ============================================================================
// Заглушки банка вопросов и рассылки
// ============================================================================

// fakeStore - неизменяемый банк вопросов в памяти
type fakeStore struct {
	questions []entity.Question
	source    string
	loadedAt  time.Time
	result    questionbank.LoadResult
	loads     int
}

func newFakeStore(questions []entity.Question) *fakeStore {
	return &fakeStore{questions: questions, source: questionbank.SourceStatic, loadedAt: time.Now()}
}

func (f *fakeStore) Questions() []entity.Question { return f.questions }

func (f *fakeStore) Get(id string) (*entity.Question, bool) {
	for i := range f.questions {
		if f.questions[i].ID == id {
			return &f.questions[i], true
		}
	}
	return nil, false
}

func (f *fakeStore) Len() int { return len(f.questions) }

func (f *fakeStore) Load(ctx context.Context) questionbank.LoadResult {
	f.loads++
	return f.result
}

func (f *fakeStore) Source() string { return f.source }

func (f *fakeStore) LoadedAt() time.Time { return f.loadedAt }

type publishedEvent struct {
	sessionID string
	kind      string
	payload   interface{}
}

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishSessionStats(sessionID string, stats interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{sessionID: sessionID, kind: "stats", payload: stats})
}

func (p *recordingPublisher) PublishSessionEnded(sessionID string, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{sessionID: sessionID, kind: "ended", payload: reason})
}

func (p *recordingPublisher) snapshot() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// sampleQuestions - четыре вопроса разных типов и областей
func sampleQuestions() []entity.Question {
	return []entity.Question{
		{
			ID: "q1", Number: 1, Type: entity.TypeMultipleChoice, ExamArea: entity.AreaArchitecture, Difficulty: 2,
			Text: "Pick A", Options: entity.Options{{ID: "a"}, {ID: "b"}}, CorrectAnswer: entity.StringArray{"a"},
		},
		{
			ID: "q2", Number: 2, Type: entity.TypeYesNo, ExamArea: entity.AreaImplementation, Difficulty: 3,
			Text: "Yes?", Options: entity.Options{{ID: "yes"}, {ID: "no"}}, CorrectAnswer: entity.StringArray{"yes"},
		},
		{
			ID: "q3", Number: 3, Type: entity.TypeSequence, ExamArea: entity.AreaArchitecture, Difficulty: 4,
			Text: "Order", Items: entity.StringArray{"x", "y"}, CorrectOrder: entity.StringArray{"x", "y"},
		},
		{
			ID: "q4", Number: 4, Type: entity.TypeMultipleChoice, ExamArea: entity.AreaEnvisioning, Difficulty: 5,
			Topic: "Power Platform", Text: "Pick B", Options: entity.Options{{ID: "a"}, {ID: "b"}}, CorrectAnswer: entity.StringArray{"b"},
		},
	}
}
