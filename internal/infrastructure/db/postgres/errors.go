package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/accessdesk/user-service/internal/core/domain"
)

const uniqueViolation = "23505"

// translate maps driver errors onto the domain taxonomy: a missing row
// becomes notFound, a unique violation becomes conflict, anything else is a
// persistence failure.
func translate(op string, err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if conflict != nil && errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return conflict
	}
	return domain.NewPersistenceError(op, err)
}

// validID reports whether id is a row key in canonical form (lowercase,
// hyphenated). Other spellings uuid.Parse accepts, such as uppercase, braced
// or urn:uuid: ids, are rejected so the cache key of a user is always the
// same string the store returns. Callers short-circuit to not-found.
func validID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}
