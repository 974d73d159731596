package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, apperrors.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperrors.ErrNotFound},
		{"not null", &pgconn.PgError{Code: "23502"}, apperrors.ErrValidation},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "22P02"}), apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	plain := errors.New("connection reset")

	assert.Nil(t, mapError(nil))
	assert.Equal(t, plain, mapError(plain), "Неизвестные ошибки возвращаются как есть")

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), mapError(other))
}
