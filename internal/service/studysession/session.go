package studysession

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

var (
	// ErrNoQuestion - в отфильтрованной выборке нет вопросов
	ErrNoQuestion = errors.New("no question at cursor")
	// ErrAlreadyAnswered - повторный ответ на вопрос в рамках сессии
	ErrAlreadyAnswered = errors.New("question already answered in this session")
	// ErrInvalidAnswer - ответ пустой или не соответствует вопросу
	ErrInvalidAnswer = errors.New("invalid answer")
)

// Session - состояние одной учебной сессии: выборка, курсор, статистика.
// Не потокобезопасна, конкурентный доступ сериализует владелец.
type Session struct {
	ID          uuid.UUID
	UserID      string
	SessionType string
	StartedAt   time.Time

	questions []entity.Question
	criteria  Criteria
	filtered  []entity.Question
	cursor    *Cursor
	scorer    *Scorer
	relay     *Relay
	answered  map[string]Outcome

	lastActive time.Time
	now        func() time.Time
}

// New создает сессию над снимком вопросов. relay может быть nil: тогда результаты не сохраняются.
func New(userID, sessionType string, questions []entity.Question, relay *Relay) *Session {
	if !entity.IsValidSessionType(sessionType) {
		sessionType = entity.SessionPractice
	}
	s := &Session{
		ID:          uuid.New(),
		UserID:      userID,
		SessionType: sessionType,
		questions:   questions,
		filtered:    questions,
		cursor:      NewCursor(len(questions)),
		scorer:      NewScorer(),
		relay:       relay,
		answered:    map[string]Outcome{},
		now:         time.Now,
	}
	s.StartedAt = s.now()
	s.lastActive = s.StartedAt
	return s
}

// SetCriteria пересчитывает выборку и возвращает курсор в начало. Возвращает размер выборки.
func (s *Session) SetCriteria(c Criteria) int {
	s.touch()
	s.criteria = c
	if c.IsWildcard() {
		s.filtered = s.questions
	} else {
		s.filtered = Filter(s.questions, c)
	}
	s.cursor.Reset(len(s.filtered))
	return len(s.filtered)
}

// ResetCriteria снимает все фильтры
func (s *Session) ResetCriteria() int {
	return s.SetCriteria(Criteria{})
}

// Criteria возвращает текущие критерии
func (s *Session) Criteria() Criteria { return s.criteria }

// Filtered возвращает текущую выборку
func (s *Session) Filtered() []entity.Question { return s.filtered }

// Total возвращает число вопросов в снимке без фильтров
func (s *Session) Total() int { return len(s.questions) }

// Position возвращает индекс курсора и размер выборки
func (s *Session) Position() (int, int) {
	return s.cursor.Index(), s.cursor.Len()
}

// Current возвращает вопрос под курсором
func (s *Session) Current() (*entity.Question, bool) {
	if len(s.filtered) == 0 {
		return nil, false
	}
	return &s.filtered[s.cursor.Index()], true
}

// Next переходит к следующему вопросу
func (s *Session) Next() bool {
	s.touch()
	return s.cursor.Next()
}

// Previous переходит к предыдущему вопросу
func (s *Session) Previous() bool {
	s.touch()
	return s.cursor.Previous()
}

// JumpTo переходит к вопросу с индексом n, индекс вне диапазона игнорируется
func (s *Session) JumpTo(n int) bool {
	s.touch()
	return s.cursor.JumpTo(n)
}

// HasNext сообщает, есть ли следующий вопрос
func (s *Session) HasNext() bool { return s.cursor.HasNext() }

// HasPrevious сообщает, есть ли предыдущий вопрос
func (s *Session) HasPrevious() bool { return s.cursor.HasPrevious() }

// Answer оценивает ответ на текущий вопрос. Статистика обновляется до отправки в журнал,
// поэтому ошибка записи не влияет на то, что видит пользователь.
func (s *Session) Answer(a Answer, timeSpent int) (Outcome, error) {
	s.touch()
	q, ok := s.Current()
	if !ok {
		return Outcome{}, ErrNoQuestion
	}
	if _, done := s.answered[q.ID]; done {
		return Outcome{}, ErrAlreadyAnswered
	}
	if err := ValidateAnswer(q, a); err != nil {
		return Outcome{}, err
	}
	if timeSpent < 0 {
		timeSpent = 0
	}

	outcome := Outcome{
		QuestionID: q.ID,
		IsCorrect:  Grade(q, a),
		TimeSpent:  timeSpent,
	}
	s.scorer.RecordAnswer(q.TypeKey(), q.AreaKey(), outcome.IsCorrect, timeSpent)
	outcome.Persisted = s.relay.Submit(s.UserID, q.ID, outcome.IsCorrect, timeSpent)
	s.answered[q.ID] = outcome
	return outcome, nil
}

// Answered возвращает результат, если вопрос уже был отвечен в этой сессии
func (s *Session) Answered(questionID string) (Outcome, bool) {
	o, ok := s.answered[questionID]
	return o, ok
}

// Stats возвращает копию статистики сессии
func (s *Session) Stats() Stats {
	return s.scorer.Stats()
}

// LastActive возвращает время последнего действия
func (s *Session) LastActive() time.Time { return s.lastActive }

func (s *Session) touch() {
	s.lastActive = s.now()
}
