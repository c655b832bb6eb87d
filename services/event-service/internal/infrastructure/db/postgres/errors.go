package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapErr turns driver errors into domain errors. what names the entity for
// not-found messages, e.g. "event with id=3".
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound(what + " was not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation, pqForeignKeyViolation:
			return &domain.AppError{
				Code:    domain.CodeConflict,
				Message: "Integrity constraint has been violated.",
				Meta:    map[string]string{"constraint": pqErr.Constraint},
			}
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
