package studysession

import (
	"strings"
)

// Wildcard - значение селектора, не ограничивающее выборку
const Wildcard = "all"

// Criteria - критерии фильтрации. Пустое значение или "all" означает отсутствие ограничения.
type Criteria struct {
	ExamArea     string `json:"exam_area"`
	QuestionType string `json:"question_type"`
	Difficulty   string `json:"difficulty"`
	Topic        string `json:"topic"`
}

// IsWildcard проверяет, что ни одно поле не ограничивает выборку
func (c Criteria) IsWildcard() bool {
	return isWildcard(c.ExamArea) && isWildcard(c.QuestionType) &&
		isWildcard(c.Difficulty) && isWildcard(c.Topic)
}

func isWildcard(selector string) bool {
	s := strings.TrimSpace(selector)
	return s == "" || strings.EqualFold(s, Wildcard)
}

// Breakdown - счётчики по одной группе
type Breakdown struct {
	Attempted int `json:"attempted"`
	Correct   int `json:"correct"`
}

// Stats - агрегаты текущей сессии
type Stats struct {
	Attempted int                  `json:"attempted"`
	Correct   int                  `json:"correct"`
	TotalTime int                  `json:"total_time"`
	ByType    map[string]Breakdown `json:"by_type"`
	ByArea    map[string]Breakdown `json:"by_area"`
}

// NewStats создает пустую статистику
func NewStats() Stats {
	return Stats{
		ByType: map[string]Breakdown{},
		ByArea: map[string]Breakdown{},
	}
}

// Accuracy возвращает округлённый процент верных ответов
func (s Stats) Accuracy() int {
	if s.Attempted == 0 {
		return 0
	}
	return (s.Correct*200 + s.Attempted) / (s.Attempted * 2)
}

// AverageTime возвращает среднее время на ответ в секундах
func (s Stats) AverageTime() int {
	if s.Attempted == 0 {
		return 0
	}
	return s.TotalTime / s.Attempted
}

// Clone возвращает независимую копию
func (s Stats) Clone() Stats {
	out := s
	out.ByType = make(map[string]Breakdown, len(s.ByType))
	for k, v := range s.ByType {
		out.ByType[k] = v
	}
	out.ByArea = make(map[string]Breakdown, len(s.ByArea))
	for k, v := range s.ByArea {
		out.ByArea[k] = v
	}
	return out
}

// Answer - ответ пользователя. Заполняется поле, соответствующее типу вопроса.
type Answer struct {
	OptionIDs  []string          `json:"option_ids,omitempty"`
	Order      []string          `json:"order,omitempty"`
	Spots      []string          `json:"spots,omitempty"`
	SubAnswers map[string]string `json:"sub_answers,omitempty"`
}

// IsEmpty проверяет, что ответ ничего не содержит
func (a Answer) IsEmpty() bool {
	return len(a.OptionIDs) == 0 && len(a.Order) == 0 && len(a.Spots) == 0 && len(a.SubAnswers) == 0
}

// Outcome - результат ответа на вопрос
type Outcome struct {
	QuestionID string `json:"question_id"`
	IsCorrect  bool   `json:"is_correct"`
	TimeSpent  int    `json:"time_spent"`
	// Persisted - запись отправлена в журнал (пользователь известен)
	Persisted bool `json:"persisted"`
}
