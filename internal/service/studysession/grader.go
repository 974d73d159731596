package studysession

import (
	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// Grade определяет правильность ответа по правилам типа вопроса.
// Неизвестные типы проверяются как multiple-choice.
func Grade(q *entity.Question, a Answer) bool {
	switch q.Type {
	case entity.TypeSequence, entity.TypeDragDrop:
		return sameOrder(a.Order, q.CorrectOrder)
	case entity.TypeHotspot:
		return sameSet(a.Spots, q.CorrectSpotIDs())
	case entity.TypeCaseStudy:
		return allSubAnswersCorrect(q.SubQuestions, a.SubAnswers)
	default:
		return sameSet(a.OptionIDs, q.CorrectOptionIDs())
	}
}

// CorrectAnswer возвращает эталонный ответ для показа после попытки
func CorrectAnswer(q *entity.Question) Answer {
	switch q.Type {
	case entity.TypeSequence, entity.TypeDragDrop:
		return Answer{Order: q.CorrectOrder}
	case entity.TypeHotspot:
		return Answer{Spots: q.CorrectSpotIDs()}
	case entity.TypeCaseStudy:
		subs := make(map[string]string, len(q.SubQuestions))
		for i := range q.SubQuestions {
			subs[q.SubQuestions[i].ID] = q.SubQuestions[i].CorrectOptionID()
		}
		return Answer{SubAnswers: subs}
	default:
		return Answer{OptionIDs: q.CorrectOptionIDs()}
	}
}

// ValidateAnswer проверяет форму ответа до оценки
func ValidateAnswer(q *entity.Question, a Answer) error {
	if a.IsEmpty() {
		return ErrInvalidAnswer
	}
	if q.Type == entity.TypeHotspot && q.MaxSelections > 0 && len(dedup(a.Spots)) > q.MaxSelections {
		return ErrInvalidAnswer
	}
	return nil
}

func sameOrder(got, want []string) bool {
	if len(want) == 0 || len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// sameSet: выбранное множество совпадает с правильным (тот же размер, каждый элемент верен)
func sameSet(got, want []string) bool {
	if len(want) == 0 {
		return false
	}
	got = dedup(got)
	if len(got) != len(dedup(want)) {
		return false
	}
	set := make(map[string]struct{}, len(want))
	for _, w := range want {
		set[w] = struct{}{}
	}
	for _, g := range got {
		if _, ok := set[g]; !ok {
			return false
		}
	}
	return true
}

func allSubAnswersCorrect(subs entity.SubQuestions, answers map[string]string) bool {
	if len(subs) == 0 {
		return false
	}
	for i := range subs {
		want := subs[i].CorrectOptionID()
		if want == "" || answers[subs[i].ID] != want {
			return false
		}
	}
	return true
}

func dedup(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
