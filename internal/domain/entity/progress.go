package entity

import (
	"time"
)

// UserProgress - запись журнала ответов пользователя
type UserProgress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"size:64;not null;index:idx_progress_user_created" json:"user_id"`
	QuestionID    string    `gorm:"size:64;not null;index" json:"question_id"`
	IsCorrect     bool      `gorm:"not null" json:"is_correct"`
	TimeSpent     int       `gorm:"not null;default:0" json:"time_spent"`
	AttemptNumber int       `gorm:"not null;default:1" json:"attempt_number"`
	CreatedAt     time.Time `gorm:"index:idx_progress_user_created" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (UserProgress) TableName() string {
	return "user_progress"
}
