package studysession

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

func TestGrade_MultipleChoice(t *testing.T) {
	single := &entity.Question{
		Type:          entity.TypeMultipleChoice,
		Options:       entity.Options{{ID: "a"}, {ID: "b"}},
		CorrectAnswer: entity.StringArray{"b"},
	}
	multi := &entity.Question{
		Options: entity.Options{{ID: "a", IsCorrect: true}, {ID: "b"}, {ID: "c", IsCorrect: true}},
	}

	assert.True(t, Grade(single, Answer{OptionIDs: []string{"b"}}))
	assert.False(t, Grade(single, Answer{OptionIDs: []string{"a"}}))
	assert.False(t, Grade(single, Answer{OptionIDs: []string{"a", "b"}}), "Лишний вариант делает ответ неверным")

	assert.True(t, Grade(multi, Answer{OptionIDs: []string{"c", "a"}}), "Порядок выбора не важен")
	assert.False(t, Grade(multi, Answer{OptionIDs: []string{"a"}}))
}

func TestGrade_NoCorrectAnswerIsNeverCorrect(t *testing.T) {
	q := &entity.Question{Options: entity.Options{{ID: "a"}}}

	assert.False(t, Grade(q, Answer{OptionIDs: []string{"a"}}))
}

func TestGrade_Sequence(t *testing.T) {
	q := &entity.Question{
		Type:         entity.TypeSequence,
		Items:        entity.StringArray{"c", "a", "b"},
		CorrectOrder: entity.StringArray{"a", "b", "c"},
	}

	assert.True(t, Grade(q, Answer{Order: []string{"a", "b", "c"}}))
	assert.False(t, Grade(q, Answer{Order: []string{"a", "c", "b"}}))
	assert.False(t, Grade(q, Answer{Order: []string{"a", "b"}}))
}

func TestGrade_DragDropUsesOrder(t *testing.T) {
	q := &entity.Question{Type: entity.TypeDragDrop, CorrectOrder: entity.StringArray{"x", "y"}}

	assert.True(t, Grade(q, Answer{Order: []string{"x", "y"}}))
	assert.False(t, Grade(q, Answer{Order: []string{"y", "x"}}))
}

func TestGrade_Hotspot(t *testing.T) {
	q := &entity.Question{
		Type:         entity.TypeHotspot,
		Hotspots:     entity.Hotspots{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
		CorrectSpots: entity.StringArray{"s1", "s3"},
	}

	assert.True(t, Grade(q, Answer{Spots: []string{"s3", "s1"}}))
	assert.False(t, Grade(q, Answer{Spots: []string{"s1"}}), "Нужно выбрать все правильные области")
	assert.False(t, Grade(q, Answer{Spots: []string{"s1", "s2", "s3"}}), "Лишняя область делает ответ неверным")
	assert.True(t, Grade(q, Answer{Spots: []string{"s1", "s3", "s3"}}), "Повторы не учитываются")
}

func TestGrade_CaseStudy(t *testing.T) {
	q := &entity.Question{
		Type: entity.TypeCaseStudy,
		SubQuestions: entity.SubQuestions{
			{ID: "q1", Options: entity.Options{{ID: "a", IsCorrect: true}, {ID: "b"}}},
			{ID: "q2", CorrectAnswer: "b", Options: entity.Options{{ID: "a"}, {ID: "b"}}},
		},
	}

	assert.True(t, Grade(q, Answer{SubAnswers: map[string]string{"q1": "a", "q2": "b"}}))
	assert.False(t, Grade(q, Answer{SubAnswers: map[string]string{"q1": "a", "q2": "a"}}))
	assert.False(t, Grade(q, Answer{SubAnswers: map[string]string{"q1": "a"}}), "Каждый подвопрос должен быть отвечен")
}

func TestCorrectAnswer(t *testing.T) {
	assert.Equal(t, []string{"b"}, CorrectAnswer(&entity.Question{CorrectAnswer: entity.StringArray{"b"}}).OptionIDs)
	assert.Equal(t, []string{"s1"}, CorrectAnswer(&entity.Question{
		Type:     entity.TypeHotspot,
		Hotspots: entity.Hotspots{{ID: "s1", IsCorrect: true}, {ID: "s2"}},
	}).Spots)
	assert.Equal(t, map[string]string{"q1": "a"}, CorrectAnswer(&entity.Question{
		Type:         entity.TypeCaseStudy,
		SubQuestions: entity.SubQuestions{{ID: "q1", Options: entity.Options{{ID: "a", IsCorrect: true}}}},
	}).SubAnswers)
}

func TestValidateAnswer(t *testing.T) {
	hotspot := &entity.Question{Type: entity.TypeHotspot, MaxSelections: 1}

	assert.ErrorIs(t, ValidateAnswer(&entity.Question{}, Answer{}), ErrInvalidAnswer)
	assert.ErrorIs(t, ValidateAnswer(hotspot, Answer{Spots: []string{"a", "b"}}), ErrInvalidAnswer)
	assert.NoError(t, ValidateAnswer(hotspot, Answer{Spots: []string{"a"}}))
}
