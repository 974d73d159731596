package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/domain/repository"
	"github.com/yourusername/examprep-api/internal/service/studysession"
)

// QuestionSnapshot отдаёт текущий снимок банка вопросов
type QuestionSnapshot interface {
	Questions() []entity.Question
}

// StatsPublisher рассылает события сессии подписчикам WebSocket
type StatsPublisher interface {
	PublishSessionStats(sessionID string, stats interface{})
	PublishSessionEnded(sessionID string, reason string)
}

// NavAction - действие навигации по выборке
type NavAction string

const (
	NavNext     NavAction = "next"
	NavPrevious NavAction = "previous"
	NavJump     NavAction = "jump"
)

// Причины завершения сессии, передаются подписчикам
const (
	EndReasonUser    = "ended"
	EndReasonExpired = "expired"
)

// StudyConfig содержит настройки реестра сессий
type StudyConfig struct {
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	MaxSessions     int
	WriteTimeout    time.Duration
}

// SessionView - снимок состояния сессии для ответа клиенту
type SessionView struct {
	ID          uuid.UUID
	UserID      string
	SessionType string
	StartedAt   time.Time
	Criteria    studysession.Criteria
	Index       int
	Filtered    int
	PoolSize    int
	HasNext     bool
	HasPrevious bool
	Current     *entity.Question
	// CurrentOutcome заполнен, если текущий вопрос уже отвечен
	CurrentOutcome *studysession.Outcome
	Stats          studysession.Stats
}

// Empty сообщает, что фильтры не оставили ни одного вопроса
func (v *SessionView) Empty() bool { return v.Filtered == 0 }

// AnswerResult - результат ответа вместе с правильным ответом и статистикой
type AnswerResult struct {
	Outcome       studysession.Outcome
	CorrectAnswer studysession.Answer
	Question      *entity.Question
	Stats         studysession.Stats
}

// SessionStatsPayload - данные события SESSION_STATS
type SessionStatsPayload struct {
	SessionID   string             `json:"session_id"`
	QuestionID  string             `json:"question_id"`
	IsCorrect   bool               `json:"is_correct"`
	Accuracy    int                `json:"accuracy"`
	AverageTime int                `json:"average_time"`
	Stats       studysession.Stats `json:"stats"`
}

type liveSession struct {
	mu      sync.Mutex
	session *studysession.Session
}

// StudyService хранит активные учебные сессии в памяти процесса
type StudyService struct {
	questions   QuestionSnapshot
	relay       *studysession.Relay
	sessionRepo repository.StudySessionRepository
	publisher   StatsPublisher
	config      StudyConfig

	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession

	now func() time.Time
}

// NewStudyService создает сервис. relay, sessionRepo и publisher могут быть nil.
func NewStudyService(
	questions QuestionSnapshot,
	relay *studysession.Relay,
	sessionRepo repository.StudySessionRepository,
	publisher StatsPublisher,
	config StudyConfig,
) *StudyService {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	return &StudyService{
		questions:   questions,
		relay:       relay,
		sessionRepo: sessionRepo,
		publisher:   publisher,
		config:      config,
		sessions:    make(map[uuid.UUID]*liveSession),
		now:         time.Now,
	}
}

// Start создает сессию над текущим снимком вопросов и применяет критерии
func (s *StudyService) Start(userID, sessionType string, criteria studysession.Criteria) (*SessionView, error) {
	if s.config.MaxSessions > 0 && s.ActiveCount() >= s.config.MaxSessions {
		s.EvictIdle(context.Background())
		if s.ActiveCount() >= s.config.MaxSessions {
			log.Printf("[StudyService] Достигнут лимит активных сессий (%d)", s.config.MaxSessions)
			return nil, ErrTooManySessions
		}
	}

	session := studysession.New(userID, sessionType, s.questions.Questions(), s.relay)
	if !criteria.IsWildcard() {
		session.SetCriteria(criteria)
	}

	live := &liveSession{session: session}
	// Лимит проверяется повторно под той же блокировкой, что и вставка
	s.mu.Lock()
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		log.Printf("[StudyService] Достигнут лимит активных сессий (%d)", s.config.MaxSessions)
		return nil, ErrTooManySessions
	}
	s.sessions[session.ID] = live
	s.mu.Unlock()

	_, filtered := session.Position()
	log.Printf("[StudyService] Сессия %s создана (user=%q, type=%s, вопросов=%d)", session.ID, userID, session.SessionType, filtered)

	live.mu.Lock()
	defer live.mu.Unlock()
	return buildView(session), nil
}

// lookup находит сессию и проверяет владельца. Анонимная сессия доступна по ID любому.
func (s *StudyService) lookup(userID string, id uuid.UUID) (*liveSession, error) {
	s.mu.RLock()
	live, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if owner := live.session.UserID; owner != "" && owner != userID {
		return nil, ErrSessionForbidden
	}
	return live, nil
}

// withSession выполняет fn под мьютексом сессии
func (s *StudyService) withSession(userID string, id uuid.UUID, fn func(session *studysession.Session) error) error {
	live, err := s.lookup(userID, id)
	if err != nil {
		return err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	return fn(live.session)
}

// Get возвращает состояние сессии
func (s *StudyService) Get(userID string, id uuid.UUID) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(userID, id, func(session *studysession.Session) error {
		view = buildView(session)
		return nil
	})
	return view, err
}

// UpdateFilters применяет новые критерии и возвращает курсор в начало выборки
func (s *StudyService) UpdateFilters(userID string, id uuid.UUID, criteria studysession.Criteria) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(userID, id, func(session *studysession.Session) error {
		session.SetCriteria(criteria)
		view = buildView(session)
		return nil
	})
	return view, err
}

// ResetFilters снимает все фильтры
func (s *StudyService) ResetFilters(userID string, id uuid.UUID) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(userID, id, func(session *studysession.Session) error {
		session.ResetCriteria()
		view = buildView(session)
		return nil
	})
	return view, err
}

// Navigate перемещает курсор. Переход за границы выборки игнорируется.
func (s *StudyService) Navigate(userID string, id uuid.UUID, action NavAction, index int) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(userID, id, func(session *studysession.Session) error {
		switch action {
		case NavNext:
			session.Next()
		case NavPrevious:
			session.Previous()
		case NavJump:
			session.JumpTo(index)
		}
		view = buildView(session)
		return nil
	})
	return view, err
}

// Answer оценивает ответ на текущий вопрос. questionID, если задан, должен совпадать с текущим.
func (s *StudyService) Answer(userID string, id uuid.UUID, questionID string, answer studysession.Answer, timeSpent int) (*AnswerResult, error) {
	var result *AnswerResult
	err := s.withSession(userID, id, func(session *studysession.Session) error {
		q, ok := session.Current()
		if !ok {
			return studysession.ErrNoQuestion
		}
		if questionID != "" && questionID != q.ID {
			return ErrQuestionMismatch
		}

		outcome, err := session.Answer(answer, timeSpent)
		if err != nil {
			return err
		}
		result = &AnswerResult{
			Outcome:       outcome,
			CorrectAnswer: studysession.CorrectAnswer(q),
			Question:      q,
			Stats:         session.Stats(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishSessionStats(id.String(), SessionStatsPayload{
			SessionID:   id.String(),
			QuestionID:  result.Outcome.QuestionID,
			IsCorrect:   result.Outcome.IsCorrect,
			Accuracy:    result.Stats.Accuracy(),
			AverageTime: result.Stats.AverageTime(),
			Stats:       result.Stats,
		})
	}
	return result, nil
}

// End завершает сессию. Для авторизованного пользователя сохраняет итог в study_sessions.
func (s *StudyService) End(ctx context.Context, userID string, id uuid.UUID) (*entity.StudySession, error) {
	live, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	live.mu.Lock()
	record := s.summarize(live.session)
	live.mu.Unlock()

	s.persist(ctx, record)
	if s.publisher != nil {
		s.publisher.PublishSessionEnded(id.String(), EndReasonUser)
	}
	log.Printf("[StudyService] Сессия %s завершена: %d/%d верно", id, record.QuestionsCorrect, record.QuestionsAttempted)
	return record, nil
}

// EvictIdle удаляет сессии без активности дольше SessionTTL. Возвращает число удалённых.
func (s *StudyService) EvictIdle(ctx context.Context) int {
	if s.config.SessionTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.config.SessionTTL)

	var expired []*liveSession
	s.mu.Lock()
	for id, live := range s.sessions {
		live.mu.Lock()
		idle := live.session.LastActive().Before(cutoff)
		live.mu.Unlock()
		if idle {
			expired = append(expired, live)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, live := range expired {
		live.mu.Lock()
		record := s.summarize(live.session)
		live.mu.Unlock()
		s.persist(ctx, record)
		if s.publisher != nil {
			s.publisher.PublishSessionEnded(record.ID.String(), EndReasonExpired)
		}
	}
	if len(expired) > 0 {
		log.Printf("[StudyService] Вытеснено %d неактивных сессий", len(expired))
	}
	return len(expired)
}

// RunCleanup периодически вытесняет неактивные сессии до отмены ctx
func (s *StudyService) RunCleanup(ctx context.Context) {
	if s.config.CleanupInterval <= 0 || s.config.SessionTTL <= 0 {
		log.Printf("[StudyService] Очистка неактивных сессий отключена")
		return
	}
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.EvictIdle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ActiveCount возвращает число активных сессий
func (s *StudyService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *StudyService) summarize(session *studysession.Session) *entity.StudySession {
	stats := session.Stats()
	endedAt := s.now()

	metadata, err := json.Marshal(map[string]interface{}{
		"criteria": session.Criteria(),
		"by_type":  stats.ByType,
		"by_area":  stats.ByArea,
	})
	if err != nil {
		log.Printf("[StudyService] Не удалось сериализовать метаданные сессии %s: %v", session.ID, err)
		metadata = nil
	}

	return &entity.StudySession{
		ID:                 session.ID,
		UserID:             session.UserID,
		SessionType:        session.SessionType,
		StartedAt:          session.StartedAt,
		EndedAt:            &endedAt,
		QuestionsAttempted: stats.Attempted,
		QuestionsCorrect:   stats.Correct,
		TotalTime:          stats.TotalTime,
		Metadata:           entity.RawJSON(metadata),
	}
}

// persist сохраняет итог сессии. Ошибка записи логируется и не возвращается.
func (s *StudyService) persist(ctx context.Context, record *entity.StudySession) {
	if s.sessionRepo == nil || record.UserID == "" {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.WriteTimeout)
	defer cancel()
	if err := s.sessionRepo.Create(writeCtx, record); err != nil {
		log.Printf("[StudyService] Не удалось сохранить сессию %s: %v", record.ID, err)
	}
}

func buildView(session *studysession.Session) *SessionView {
	index, filtered := session.Position()
	view := &SessionView{
		ID:          session.ID,
		UserID:      session.UserID,
		SessionType: session.SessionType,
		StartedAt:   session.StartedAt,
		Criteria:    session.Criteria(),
		Index:       index,
		Filtered:    filtered,
		PoolSize:    session.Total(),
		HasNext:     session.HasNext(),
		HasPrevious: session.HasPrevious(),
		Stats:       session.Stats(),
	}
	if q, ok := session.Current(); ok {
		view.Current = q
		if outcome, answered := session.Answered(q.ID); answered {
			view.CurrentOutcome = &outcome
		}
	}
	return view
}
