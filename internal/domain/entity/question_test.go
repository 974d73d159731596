package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalType(t *testing.T) {
	tests := []struct {
		raw  string
		want QuestionType
	}{
		{"", TypeMultipleChoice},
		{"multiplechoice", TypeMultipleChoice},
		{"Multiple Choice", TypeMultipleChoice},
		{"multiple_choice", TypeMultipleChoice},
		{"yesno", TypeYesNo},
		{"Yes-No", TypeYesNo},
		{"Yes/No", TypeYesNo},
		{"Multiple-Choice", TypeMultipleChoice},
		{"sequence", TypeSequence},
		{"dragdrop", TypeDragDrop},
		{"drag-drop", TypeDragDrop},
		{"HOTSPOT", TypeHotspot},
		{"case_study", TypeCaseStudy},
		{"Essay", QuestionType("essay")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalType(tt.raw))
		})
	}
}

func TestCanonicalExamArea(t *testing.T) {
	assert.Equal(t, AreaEnvisioning, CanonicalExamArea("Solution Envisioning and Requirement Analysis"))
	assert.Equal(t, AreaArchitecture, CanonicalExamArea("architecture"))
	assert.Equal(t, AreaImplementation, CanonicalExamArea("Implement the Solution"))
	assert.Equal(t, "security", CanonicalExamArea(" Security "))
	assert.Equal(t, "", CanonicalExamArea(""))
}

func TestDifficultyBand(t *testing.T) {
	assert.Equal(t, DifficultyEasy, DifficultyBand(1))
	assert.Equal(t, DifficultyEasy, DifficultyBand(2))
	assert.Equal(t, DifficultyMedium, DifficultyBand(3))
	assert.Equal(t, DifficultyHard, DifficultyBand(4))
	assert.Equal(t, DifficultyExpert, DifficultyBand(5))
	assert.Equal(t, "", DifficultyBand(0), "Отсутствующий уровень не имеет полосы")
	assert.Equal(t, "", DifficultyBand(6))
}

func TestQuestion_DifficultyLabel(t *testing.T) {
	assert.Equal(t, DifficultyHard, (&Question{Difficulty: 4}).DifficultyLabel())
	assert.Equal(t, DifficultyExpert, (&Question{DifficultyName: "Expert"}).DifficultyLabel())
	assert.Equal(t, DifficultyMedium, (&Question{}).DifficultyLabel(), "Без сложности вопрос считается medium")
}

func TestQuestion_Keys_Defaults(t *testing.T) {
	q := &Question{}
	assert.Equal(t, "multiple-choice", q.TypeKey())
	assert.Equal(t, "unknown", q.AreaKey())

	q = &Question{Type: TypeHotspot, ExamArea: AreaArchitecture}
	assert.Equal(t, "hotspot", q.TypeKey())
	assert.Equal(t, "architecture", q.AreaKey())
}

func TestQuestion_CorrectOptionIDs(t *testing.T) {
	// Arrange
	withAnswer := &Question{CorrectAnswer: StringArray{"b"}}
	withFlags := &Question{Options: Options{
		{ID: "a", Text: "A", IsCorrect: true},
		{ID: "b", Text: "B"},
		{ID: "c", Text: "C", IsCorrect: true},
	}}

	// Act & Assert
	assert.Equal(t, []string{"b"}, withAnswer.CorrectOptionIDs())
	assert.False(t, withAnswer.IsMultiSelect())
	assert.Equal(t, []string{"a", "c"}, withFlags.CorrectOptionIDs())
	assert.True(t, withFlags.IsMultiSelect())
}

func TestQuestion_TableName(t *testing.T) {
	assert.Equal(t, "questions", Question{}.TableName())
	assert.Equal(t, "user_progress", UserProgress{}.TableName())
	assert.Equal(t, "study_sessions", StudySession{}.TableName())
}

func TestStringArray_Scan_ValidJSON(t *testing.T) {
	// Arrange
	var arr StringArray

	// Act
	err := arr.Scan([]byte(`["Option A","Option B","Option C"]`))

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для валидного JSON")
	assert.Equal(t, StringArray{"Option A", "Option B", "Option C"}, arr)
}

func TestStringArray_Scan_StringValue(t *testing.T) {
	var arr StringArray

	err := arr.Scan(`["x"]`)

	require.NoError(t, err, "pgx может отдавать jsonb строкой")
	assert.Equal(t, StringArray{"x"}, arr)
}

func TestStringArray_Scan_NullValue(t *testing.T) {
	var arr StringArray

	err := arr.Scan(nil)

	require.NoError(t, err)
	assert.NotNil(t, arr, "Массив должен быть пустым, но не nil")
	assert.Len(t, arr, 0)
}

func TestStringArray_Scan_InvalidType(t *testing.T) {
	var arr StringArray

	err := arr.Scan(12345)

	assert.Error(t, err, "Scan должен вернуть ошибку для неподдерживаемого типа")
}

func TestStringArray_Value_Empty(t *testing.T) {
	var arr StringArray

	value, err := arr.Value()

	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value, "Пустой массив пишется как []")
}

func TestOptions_ScanValue(t *testing.T) {
	// Arrange
	opts := Options{{ID: "a", Text: "Power Apps", IsCorrect: true}, {ID: "b", Text: "Power BI"}}

	// Act
	value, err := opts.Value()
	require.NoError(t, err)

	var scanned Options
	err = scanned.Scan(value)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, opts, scanned)
}

func TestRawJSON_Scan_Null(t *testing.T) {
	var raw RawJSON

	require.NoError(t, raw.Scan(nil))
	assert.True(t, raw.IsEmpty())

	value, err := raw.Value()
	require.NoError(t, err)
	assert.Nil(t, value, "Пустой JSON пишется как NULL")
}

func TestRawJSON_MarshalKeepsNesting(t *testing.T) {
	var raw RawJSON
	require.NoError(t, raw.Scan([]byte(`{"question_breakdown":{"why":"x"}}`)))

	out, err := raw.MarshalJSON()

	require.NoError(t, err)
	assert.JSONEq(t, `{"question_breakdown":{"why":"x"}}`, string(out))
}

func TestStudySession_Accuracy(t *testing.T) {
	assert.Equal(t, 0.0, (&StudySession{}).Accuracy())
	assert.InDelta(t, 75.0, (&StudySession{QuestionsAttempted: 4, QuestionsCorrect: 3}).Accuracy(), 0.001)
	assert.True(t, IsValidSessionType(SessionFocus))
	assert.False(t, IsValidSessionType("marathon"))
}
