package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/service"
	"github.com/yourusername/examprep-api/internal/service/studysession"
)

// ActionResetFilters подсказывает клиенту сбросить фильтры при пустой выборке
const ActionResetFilters = "reset_filters"

// FiltersRequest - критерии отбора вопросов
type FiltersRequest struct {
	ExamArea     string `json:"exam_area" binding:"omitempty,max=64"`
	QuestionType string `json:"question_type" binding:"omitempty,max=32"`
	Difficulty   string `json:"difficulty" binding:"omitempty,max=16"`
	Topic        string `json:"topic" binding:"omitempty,max=255"`
}

// Criteria переводит запрос в критерии сессии
func (r FiltersRequest) Criteria() studysession.Criteria {
	return studysession.Criteria{
		ExamArea:     r.ExamArea,
		QuestionType: r.QuestionType,
		Difficulty:   r.Difficulty,
		Topic:        r.Topic,
	}
}

// StartSessionRequest - запрос на создание сессии
type StartSessionRequest struct {
	SessionType string         `json:"session_type" binding:"omitempty,oneof=practice exam focus flashcard lab"`
	Filters     FiltersRequest `json:"filters"`
}

// JumpRequest - переход к вопросу по индексу в выборке
type JumpRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// AnswerRequest - ответ на текущий вопрос
type AnswerRequest struct {
	QuestionID string            `json:"question_id" binding:"omitempty,max=64"`
	OptionIDs  []string          `json:"option_ids"`
	Order      []string          `json:"order"`
	Spots      []string          `json:"spots"`
	SubAnswers map[string]string `json:"sub_answers"`
	TimeSpent  int               `json:"time_spent" binding:"min=0"`
}

// Answer переводит запрос в ответ сессии
func (r AnswerRequest) Answer() studysession.Answer {
	return studysession.Answer{
		OptionIDs:  r.OptionIDs,
		Order:      r.Order,
		Spots:      r.Spots,
		SubAnswers: r.SubAnswers,
	}
}

// StatsResponse - статистика сессии
type StatsResponse struct {
	Attempted   int                               `json:"attempted"`
	Correct     int                               `json:"correct"`
	Accuracy    int                               `json:"accuracy"`
	AverageTime int                               `json:"average_time"`
	TotalTime   int                               `json:"total_time"`
	ByType      map[string]studysession.Breakdown `json:"by_type"`
	ByArea      map[string]studysession.Breakdown `json:"by_area"`
}

// NewStatsResponse создает DTO статистики
func NewStatsResponse(s studysession.Stats) StatsResponse {
	return StatsResponse{
		Attempted:   s.Attempted,
		Correct:     s.Correct,
		Accuracy:    s.Accuracy(),
		AverageTime: s.AverageTime(),
		TotalTime:   s.TotalTime,
		ByType:      s.ByType,
		ByArea:      s.ByArea,
	}
}

// SessionResponse - состояние сессии
type SessionResponse struct {
	ID          uuid.UUID             `json:"id"`
	SessionType string                `json:"session_type"`
	StartedAt   time.Time             `json:"started_at"`
	Filters     studysession.Criteria `json:"filters"`
	Index       int                   `json:"index"`
	Position    int                   `json:"position"`
	Filtered    int                   `json:"filtered_count"`
	PoolSize    int                   `json:"pool_size"`
	HasNext     bool                  `json:"has_next"`
	HasPrevious bool                  `json:"has_previous"`
	Empty       bool                  `json:"empty"`
	Actions     []string              `json:"actions,omitempty"`
	Question    *QuestionResponse     `json:"question,omitempty"`
	// Outcome и CorrectAnswer заполнены, если текущий вопрос уже отвечен
	Outcome       *studysession.Outcome `json:"outcome,omitempty"`
	CorrectAnswer *studysession.Answer  `json:"correct_answer,omitempty"`
	Stats         StatsResponse         `json:"stats"`
}

// NewSessionResponse создает DTO сессии
func NewSessionResponse(view *service.SessionView) *SessionResponse {
	resp := &SessionResponse{
		ID:          view.ID,
		SessionType: view.SessionType,
		StartedAt:   view.StartedAt,
		Filters:     view.Criteria,
		Index:       view.Index,
		Filtered:    view.Filtered,
		PoolSize:    view.PoolSize,
		HasNext:     view.HasNext,
		HasPrevious: view.HasPrevious,
		Empty:       view.Empty(),
		Stats:       NewStatsResponse(view.Stats),
	}
	if resp.Empty {
		resp.Actions = []string{ActionResetFilters}
		return resp
	}
	resp.Position = view.Index + 1
	answered := view.CurrentOutcome != nil
	resp.Question = NewQuestionResponse(view.Current, answered)
	if answered {
		correct := studysession.CorrectAnswer(view.Current)
		resp.Outcome = view.CurrentOutcome
		resp.CorrectAnswer = &correct
	}
	return resp
}

// AnswerResponse - результат ответа
type AnswerResponse struct {
	QuestionID    string              `json:"question_id"`
	IsCorrect     bool                `json:"is_correct"`
	TimeSpent     int                 `json:"time_spent"`
	Persisted     bool                `json:"persisted"`
	CorrectAnswer studysession.Answer `json:"correct_answer"`
	Explanation   entity.RawJSON      `json:"explanation,omitempty"`
	LearnURL      string              `json:"learn_url,omitempty"`
	Stats         StatsResponse       `json:"stats"`
}

// NewAnswerResponse создает DTO результата ответа
func NewAnswerResponse(result *service.AnswerResult) *AnswerResponse {
	resp := &AnswerResponse{
		QuestionID:    result.Outcome.QuestionID,
		IsCorrect:     result.Outcome.IsCorrect,
		TimeSpent:     result.Outcome.TimeSpent,
		Persisted:     result.Outcome.Persisted,
		CorrectAnswer: result.CorrectAnswer,
		Stats:         NewStatsResponse(result.Stats),
	}
	if result.Question != nil {
		resp.Explanation = result.Question.Explanation
		resp.LearnURL = result.Question.LearnURL
	}
	return resp
}

// SessionSummaryResponse - итог завершённой сессии
type SessionSummaryResponse struct {
	ID                 uuid.UUID  `json:"id"`
	SessionType        string     `json:"session_type"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	QuestionsAttempted int        `json:"questions_attempted"`
	QuestionsCorrect   int        `json:"questions_correct"`
	Accuracy           float64    `json:"accuracy"`
	TotalTime          int        `json:"total_time"`
}

// NewSessionSummaryResponse создает DTO итога сессии
func NewSessionSummaryResponse(s *entity.StudySession) *SessionSummaryResponse {
	return &SessionSummaryResponse{
		ID:                 s.ID,
		SessionType:        s.SessionType,
		StartedAt:          s.StartedAt,
		EndedAt:            s.EndedAt,
		QuestionsAttempted: s.QuestionsAttempted,
		QuestionsCorrect:   s.QuestionsCorrect,
		Accuracy:           s.Accuracy(),
		TotalTime:          s.TotalTime,
	}
}
