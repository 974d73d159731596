package studysession

import "github.com/yourusername/examprep-api/internal/domain/entity"

const unknownArea = "unknown"

// Scorer ведёт агрегаты ответов одной сессии. Только в памяти.
// Повторный ответ на тот же вопрос должен отсекать вызывающий код.
type Scorer struct {
	stats Stats
}

// NewScorer создает пустой Scorer
func NewScorer() *Scorer {
	return &Scorer{stats: NewStats()}
}

// RecordAnswer учитывает один ответ. Отрицательное время считается нулём.
func (s *Scorer) RecordAnswer(typeKey, areaKey string, isCorrect bool, timeSpent int) {
	if typeKey == "" {
		typeKey = string(entity.TypeMultipleChoice)
	}
	if areaKey == "" {
		areaKey = unknownArea
	}
	if timeSpent < 0 {
		timeSpent = 0
	}

	s.stats.Attempted++
	if isCorrect {
		s.stats.Correct++
	}
	s.stats.TotalTime += timeSpent

	s.stats.ByType[typeKey] = bump(s.stats.ByType[typeKey], isCorrect)
	s.stats.ByArea[areaKey] = bump(s.stats.ByArea[areaKey], isCorrect)
}

func bump(b Breakdown, isCorrect bool) Breakdown {
	b.Attempted++
	if isCorrect {
		b.Correct++
	}
	return b
}

// Stats возвращает копию агрегатов
func (s *Scorer) Stats() Stats {
	return s.stats.Clone()
}
