package studysession

import (
	"strconv"
	"strings"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// Filter возвращает вопросы, удовлетворяющие всем критериям, в исходном порядке.
// Функция чистая: входной срез не изменяется.
func Filter(questions []entity.Question, c Criteria) []entity.Question {
	m := newMatcher(c)
	out := make([]entity.Question, 0, len(questions))
	for i := range questions {
		if m.match(&questions[i]) {
			out = append(out, questions[i])
		}
	}
	return out
}

// matcher хранит нормализованные селекторы, чтобы не пересчитывать их для каждого вопроса
type matcher struct {
	area       string
	qtype      entity.QuestionType
	hasType    bool
	difficulty string
	topic      string
}

func newMatcher(c Criteria) matcher {
	m := matcher{}
	if !isWildcard(c.ExamArea) {
		m.area = strings.ToLower(strings.TrimSpace(c.ExamArea))
	}
	if !isWildcard(c.QuestionType) {
		m.qtype = entity.CanonicalType(c.QuestionType)
		m.hasType = true
	}
	if !isWildcard(c.Difficulty) {
		m.difficulty = difficultySelector(c.Difficulty)
	}
	if !isWildcard(c.Topic) {
		m.topic = strings.ToLower(strings.TrimSpace(c.Topic))
	}
	return m
}

// difficultySelector принимает как название полосы, так и числовой уровень
func difficultySelector(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(s); err == nil {
		if band := entity.DifficultyBand(n); band != "" {
			return band
		}
	}
	return s
}

func (m matcher) match(q *entity.Question) bool {
	if m.area != "" && !matchArea(q, m.area) {
		return false
	}
	if m.hasType && entity.QuestionType(q.TypeKey()) != m.qtype {
		return false
	}
	if m.difficulty != "" && q.DifficultyLabel() != m.difficulty {
		return false
	}
	if m.topic != "" && !matchTopic(q, m.topic) {
		return false
	}
	return true
}

// matchArea: область, тема или теги содержат селектор
func matchArea(q *entity.Question, selector string) bool {
	return containsFold(q.ExamArea, selector) ||
		containsFold(q.Topic, selector) ||
		containsFold(strings.Join(q.Tags, " "), selector)
}

// matchTopic: тема, теги, текст вопроса или пояснение содержат селектор
func matchTopic(q *entity.Question, selector string) bool {
	return containsFold(q.Topic, selector) ||
		containsFold(strings.Join(q.Tags, " "), selector) ||
		containsFold(q.Text, selector) ||
		(!q.Explanation.IsEmpty() && containsFold(string(q.Explanation), selector))
}

// containsFold - регистронезависимый поиск подстроки; selector уже в нижнем регистре
func containsFold(text, selector string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), selector)
}
