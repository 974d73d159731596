package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
)

// Коды ошибок PostgreSQL, которые переводятся в ошибки приложения
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02"
)

// mapError переводит ошибки драйвера в ошибки приложения, сохраняя исходную в цепочке
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.Message)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, pgErr.Detail)
	case pgNotNullViolation, pgCheckViolation, pgInvalidTextRep:
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, pgErr.Message)
	}
	return err
}
