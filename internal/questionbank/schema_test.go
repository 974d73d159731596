package questionbank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"object with questions", `{"questions":[{"id":"1","question_text":"Q","options":[{"id":"a","text":"A"}]}]}`, false},
		{"bare array", `[{"question_number":3,"question":"Q","answers":["A","B"],"correctAnswer":"A"}]`, false},
		{"missing identity", `{"questions":[{"question_text":"Q"}]}`, true},
		{"missing prompt", `{"questions":[{"id":"1"}]}`, true},
		{"no questions field", `{"version":"1.0"}`, true},
		{"option without text", `[{"id":"1","question_text":"Q","options":[{"id":"a"}]}]`, true},
		{"not json", `{"questions":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument([]byte(tt.doc))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
