package studysession

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

func questionIDs(qs []entity.Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

// randomQuestions строит набор вопросов с пропусками полей, как в реальных документах
func randomQuestions(r *rand.Rand, n int) []entity.Question {
	areas := []string{"", entity.AreaArchitecture, entity.AreaEnvisioning, entity.AreaImplementation}
	types := []entity.QuestionType{"", entity.TypeMultipleChoice, entity.TypeHotspot, entity.TypeSequence, entity.TypeYesNo}
	topics := []string{"", "Security", "ALM", "Integration"}
	tags := [][]string{nil, {"dlp"}, {"architecture review", "governance"}, {"plug-ins"}}

	out := make([]entity.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entity.Question{
			ID:         string(rune('A'+i%26)) + string(rune('a'+i/26)),
			Text:       "Question about " + topics[r.Intn(len(topics))],
			ExamArea:   areas[r.Intn(len(areas))],
			Type:       types[r.Intn(len(types))],
			Difficulty: r.Intn(6),
			Topic:      topics[r.Intn(len(topics))],
			Tags:       tags[r.Intn(len(tags))],
		})
	}
	return out
}

func randomCriteria(r *rand.Rand) Criteria {
	pick := func(values ...string) string { return values[r.Intn(len(values))] }
	return Criteria{
		ExamArea:     pick("", "all", "architecture", "ARCH", "implementation", "governance"),
		QuestionType: pick("", "all", "multiplechoice", "hotspot", "sequence"),
		Difficulty:   pick("", "all", "easy", "medium", "hard", "expert", "4"),
		Topic:        pick("", "security", "alm", "dlp", "question"),
	}
}

// isSubsequence проверяет, что sub - подпоследовательность full с сохранением порядка
func isSubsequence(sub, full []entity.Question) bool {
	j := 0
	for i := 0; i < len(full) && j < len(sub); i++ {
		if full[i].ID == sub[j].ID {
			j++
		}
	}
	return j == len(sub)
}

func TestFilter_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		questions := randomQuestions(r, r.Intn(40))
		criteria := randomCriteria(r)

		once := Filter(questions, criteria)
		twice := Filter(once, criteria)

		require.True(t, isSubsequence(once, questions), "Результат должен быть подпоследовательностью: %+v", criteria)
		require.Equal(t, questionIDs(once), questionIDs(twice), "Фильтр должен быть идемпотентным: %+v", criteria)
		require.Equal(t, questionIDs(once), questionIDs(Filter(questions, criteria)), "Фильтр должен быть детерминированным")
	}
}

func TestFilter_WildcardReturnsInput(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	questions := randomQuestions(r, 30)

	for _, c := range []Criteria{
		{},
		{ExamArea: "all", QuestionType: "all", Difficulty: "all", Topic: ""},
		{ExamArea: "ALL", QuestionType: " all ", Difficulty: "", Topic: "  "},
	} {
		assert.Equal(t, questions, Filter(questions, c))
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	questions := []entity.Question{{ID: "1", ExamArea: "architecture"}, {ID: "2", ExamArea: "implementation"}}
	before := append([]entity.Question(nil), questions...)

	_ = Filter(questions, Criteria{ExamArea: "implementation"})

	assert.Equal(t, before, questions)
}

func TestFilter_ExamAreaScenario(t *testing.T) {
	// Arrange
	questions := []entity.Question{
		{ID: "1", ExamArea: "architecture"},
		{ID: "2", ExamArea: "implementation"},
		{ID: "3", ExamArea: "architecture"},
	}

	// Act
	got := Filter(questions, Criteria{ExamArea: "architecture"})

	// Assert
	assert.Equal(t, []string{"1", "3"}, questionIDs(got), "Должны вернуться первый и третий вопросы в исходном порядке")
}

func TestFilter_ExamAreaFallsBackToTopicAndTags(t *testing.T) {
	questions := []entity.Question{
		{ID: "no-area-topic", Topic: "Solution Architecture"},
		{ID: "no-area-tag", Tags: []string{"architecture review"}},
		{ID: "other", Topic: "ALM"},
	}

	got := Filter(questions, Criteria{ExamArea: "Architecture"})

	assert.Equal(t, []string{"no-area-topic", "no-area-tag"}, questionIDs(got))
}

func TestFilter_QuestionType(t *testing.T) {
	questions := []entity.Question{
		{ID: "untyped"},
		{ID: "mc", Type: entity.TypeMultipleChoice},
		{ID: "hs", Type: entity.TypeHotspot},
	}

	assert.Equal(t, []string{"untyped", "mc"}, questionIDs(Filter(questions, Criteria{QuestionType: "multiplechoice"})),
		"Вопрос без типа считается multiple-choice")
	assert.Equal(t, []string{"hs"}, questionIDs(Filter(questions, Criteria{QuestionType: "HotSpot"})))
	assert.Empty(t, Filter(questions, Criteria{QuestionType: "sequence"}))
}

func TestFilter_Difficulty(t *testing.T) {
	questions := []entity.Question{
		{ID: "d1", Difficulty: 1},
		{ID: "d2", Difficulty: 2},
		{ID: "d3", Difficulty: 3},
		{ID: "d4", Difficulty: 4},
		{ID: "d5", Difficulty: 5},
		{ID: "none"},
		{ID: "text", DifficultyName: "Hard"},
	}

	tests := []struct {
		selector string
		want     []string
	}{
		{"easy", []string{"d1", "d2"}},
		{"medium", []string{"d3", "none"}},
		{"hard", []string{"d4", "text"}},
		{"Expert", []string{"d5"}},
		{"4", []string{"d4", "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, questionIDs(Filter(questions, Criteria{Difficulty: tt.selector})))
		})
	}
}

func TestFilter_Topic(t *testing.T) {
	questions := []entity.Question{
		{ID: "topic", Topic: "Data Loss Prevention"},
		{ID: "tag", Tags: []string{"dlp", "governance"}},
		{ID: "text", Text: "Which DLP policy applies?"},
		{ID: "explanation", Explanation: entity.RawJSON(`{"correct":"Tenant-level DLP wins"}`)},
		{ID: "none", Topic: "ALM", Text: "Pipelines"},
	}

	got := Filter(questions, Criteria{Topic: "dlp"})

	assert.Equal(t, []string{"tag", "text", "explanation"}, questionIDs(got))
	assert.Equal(t, []string{"topic"}, questionIDs(Filter(questions, Criteria{Topic: "loss prevention"})))
}

func TestFilter_CombinedCriteria(t *testing.T) {
	questions := []entity.Question{
		{ID: "1", ExamArea: "architecture", Type: entity.TypeHotspot, Difficulty: 5, Topic: "Governance"},
		{ID: "2", ExamArea: "architecture", Type: entity.TypeHotspot, Difficulty: 3, Topic: "Governance"},
		{ID: "3", ExamArea: "implementation", Type: entity.TypeHotspot, Difficulty: 5, Topic: "Governance"},
	}

	got := Filter(questions, Criteria{ExamArea: "architecture", QuestionType: "hotspot", Difficulty: "expert", Topic: "govern"})

	assert.Equal(t, []string{"1"}, questionIDs(got))
}
