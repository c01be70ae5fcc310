package postgres

import (
	"errors"
	"fmt"

	"campusdrive/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// IsPgDuplicateError reports a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsPgNoRowsError reports a QueryRow that matched nothing
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// InsertError turns a failed INSERT into a ConflictError when the primary key
// is already taken and wraps anything else with the operation name
func InsertError(err error, resourceType, id string) error {
	if IsPgDuplicateError(err) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("%s '%s' already exists", resourceType, id),
			ResourceType: resourceType,
			ResourceID:   id,
		}
	}
	return fmt.Errorf("create %s: %w", resourceType, err)
}
