package entity

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
)

// QuestionType - канонический тип вопроса
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeYesNo          QuestionType = "yes-no"
	TypeSequence       QuestionType = "sequence"
	TypeDragDrop       QuestionType = "drag-drop"
	TypeHotspot        QuestionType = "hotspot"
	TypeCaseStudy      QuestionType = "case-study"
)

// Области экзамена
const (
	AreaEnvisioning    = "envisioning"
	AreaArchitecture   = "architecture"
	AreaImplementation = "implementation"
)

// Уровни сложности
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyExpert = "expert"
)

// CanonicalType приводит запись типа к каноническому виду.
// "multiplechoice", "Multiple Choice" и "multiple_choice" дают TypeMultipleChoice.
// Пустое значение считается multiple-choice.
func CanonicalType(raw string) QuestionType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return TypeMultipleChoice
	}
	compact := strings.NewReplacer("-", "", "_", "", " ", "", "/", "").Replace(key)
	switch compact {
	case "multiplechoice", "mc", "singlechoice", "multipleselect":
		return TypeMultipleChoice
	case "yesno", "truefalse":
		return TypeYesNo
	case "sequence", "ordering":
		return TypeSequence
	case "dragdrop", "draganddrop":
		return TypeDragDrop
	case "hotspot":
		return TypeHotspot
	case "casestudy":
		return TypeCaseStudy
	}
	return QuestionType(key)
}

// CanonicalExamArea сводит названия областей ("Solution Envisioning", "exam_area")
// к одному из трёх известных значений. Нераспознанный текст возвращается в нижнем регистре.
func CanonicalExamArea(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case key == "":
		return ""
	case strings.Contains(key, "envision"):
		return AreaEnvisioning
	case strings.Contains(key, "architect"):
		return AreaArchitecture
	case strings.Contains(key, "implement"):
		return AreaImplementation
	}
	return key
}

// DifficultyBand переводит числовой уровень 1-5 в полосу сложности.
// Уровни вне диапазона дают пустую строку.
func DifficultyBand(level int) string {
	switch {
	case level == 1 || level == 2:
		return DifficultyEasy
	case level == 3:
		return DifficultyMedium
	case level == 4:
		return DifficultyHard
	case level == 5:
		return DifficultyExpert
	}
	return ""
}

// Option - вариант ответа
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

// Options - список вариантов, хранится в JSONB
type Options []Option

// Scan реализует sql.Scanner
func (o *Options) Scan(value interface{}) error {
	*o = Options{}
	return scanJSONB(value, o)
}

// Value реализует driver.Valuer
func (o Options) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Hotspot - область на изображении для вопросов типа hotspot
type Hotspot struct {
	ID        string  `json:"id"`
	Label     string  `json:"label,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	IsCorrect bool    `json:"isCorrect,omitempty"`
}

// Hotspots хранится в JSONB
type Hotspots []Hotspot

// Scan реализует sql.Scanner
func (h *Hotspots) Scan(value interface{}) error {
	*h = Hotspots{}
	return scanJSONB(value, h)
}

// Value реализует driver.Valuer
func (h Hotspots) Value() (driver.Value, error) {
	if len(h) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

// SubQuestion - вложенный вопрос кейса (case-study)
type SubQuestion struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Options       Options `json:"options,omitempty"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
}

// SubQuestions хранится в JSONB
type SubQuestions []SubQuestion

// Scan реализует sql.Scanner
func (s *SubQuestions) Scan(value interface{}) error {
	*s = SubQuestions{}
	return scanJSONB(value, s)
}

// Value реализует driver.Valuer
func (s SubQuestions) Value() (driver.Value, error) {
	if len(s) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// CorrectOptionID возвращает правильный вариант подвопроса
func (s *SubQuestion) CorrectOptionID() string {
	if s.CorrectAnswer != "" {
		return s.CorrectAnswer
	}
	for _, o := range s.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return ""
}

// Question представляет нормализованный вопрос банка
type Question struct {
	ID             string         `gorm:"primaryKey;size:64" json:"id"`
	Number         int            `gorm:"column:question_number;index" json:"question_number"`
	Type           QuestionType   `gorm:"column:question_type;size:32;not null" json:"type"`
	ExamArea       string         `gorm:"column:exam_area;size:64" json:"exam_area,omitempty"`
	Difficulty     int            `gorm:"column:difficulty_level;not null;default:0" json:"difficulty,omitempty"`
	DifficultyName string         `gorm:"column:difficulty_name;size:16" json:"difficulty_name,omitempty"`
	Topic          string         `gorm:"size:255" json:"topic,omitempty"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	Text           string         `gorm:"column:question_text;type:text;not null" json:"text"`
	Options        Options        `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswer  StringArray    `gorm:"column:correct_answer;type:jsonb" json:"correct_answer,omitempty"`
	Items          StringArray    `gorm:"type:jsonb" json:"items,omitempty"`
	CorrectOrder   StringArray    `gorm:"column:correct_order;type:jsonb" json:"correct_order,omitempty"`
	Hotspots       Hotspots       `gorm:"type:jsonb" json:"hotspots,omitempty"`
	CorrectSpots   StringArray    `gorm:"column:correct_spots;type:jsonb" json:"correct_spots,omitempty"`
	MaxSelections  int            `gorm:"column:max_selections;not null;default:0" json:"max_selections,omitempty"`
	ImageURL       string         `gorm:"column:image_url;size:500" json:"image_url,omitempty"`
	SubQuestions   SubQuestions   `gorm:"column:sub_questions;type:jsonb" json:"sub_questions,omitempty"`
	Explanation    RawJSON        `gorm:"type:jsonb" json:"explanation,omitempty"`
	LearnURL       string         `gorm:"column:microsoft_learn_url;size:500" json:"learn_url,omitempty"`
	EstimatedTime  int            `gorm:"column:estimated_time;not null;default:0" json:"estimated_time,omitempty"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true" json:"-"`
	CreatedAt      time.Time      `json:"-"`
	UpdatedAt      time.Time      `json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// DifficultyLabel возвращает полосу сложности вопроса.
// Числовой уровень важнее текстового, при отсутствии обоих - medium.
func (q *Question) DifficultyLabel() string {
	if band := DifficultyBand(q.Difficulty); band != "" {
		return band
	}
	if name := strings.ToLower(strings.TrimSpace(q.DifficultyName)); name != "" {
		return name
	}
	return DifficultyMedium
}

// AreaKey - ключ группировки статистики по области
func (q *Question) AreaKey() string {
	if q.ExamArea == "" {
		return "unknown"
	}
	return q.ExamArea
}

// TypeKey - ключ группировки статистики по типу
func (q *Question) TypeKey() string {
	if q.Type == "" {
		return string(TypeMultipleChoice)
	}
	return string(q.Type)
}

// IsMultiSelect - вопрос с несколькими правильными вариантами
func (q *Question) IsMultiSelect() bool {
	if len(q.CorrectAnswer) > 1 {
		return true
	}
	if len(q.CorrectAnswer) == 0 {
		n := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				n++
			}
		}
		return n > 1
	}
	return false
}

// CorrectSpotIDs возвращает правильные области hotspot-вопроса
func (q *Question) CorrectSpotIDs() []string {
	if len(q.CorrectSpots) > 0 {
		return q.CorrectSpots
	}
	var ids []string
	for _, h := range q.Hotspots {
		if h.IsCorrect {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// CorrectOptionIDs возвращает идентификаторы правильных вариантов.
// Если correct_answer не задан, используются флаги isCorrect.
func (q *Question) CorrectOptionIDs() []string {
	if len(q.CorrectAnswer) > 0 {
		return q.CorrectAnswer
	}
	var ids []string
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}
