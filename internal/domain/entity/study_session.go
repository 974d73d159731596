package entity

import (
	"time"

	"github.com/google/uuid"
)

// Типы учебных сессий
const (
	SessionPractice  = "practice"
	SessionExam      = "exam"
	SessionFocus     = "focus"
	SessionFlashcard = "flashcard"
	SessionLab       = "lab"
)

// IsValidSessionType проверяет тип сессии
func IsValidSessionType(t string) bool {
	switch t {
	case SessionPractice, SessionExam, SessionFocus, SessionFlashcard, SessionLab:
		return true
	}
	return false
}

// StudySession - итог завершённой учебной сессии
type StudySession struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string     `gorm:"size:64;not null;index" json:"user_id"`
	SessionType        string     `gorm:"size:16;not null;default:'practice'" json:"session_type"`
	StartedAt          time.Time  `gorm:"not null" json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	QuestionsAttempted int        `gorm:"not null;default:0" json:"questions_attempted"`
	QuestionsCorrect   int        `gorm:"not null;default:0" json:"questions_correct"`
	TotalTime          int        `gorm:"not null;default:0" json:"total_time"`
	Metadata           RawJSON    `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (StudySession) TableName() string {
	return "study_sessions"
}

// Accuracy возвращает процент верных ответов (0-100)
func (s *StudySession) Accuracy() float64 {
	if s.QuestionsAttempted == 0 {
		return 0
	}
	return float64(s.QuestionsCorrect) / float64(s.QuestionsAttempted) * 100
}
