package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = pgx.ErrNoRows

// ErrDuplicateKey marks an insert that lost the race against an
// existing row on a unique index. The pipeline treats it as a
// successful no-op, never as a failure.
var ErrDuplicateKey = errors.New("duplicate key")

// IsNotFound reports whether err is a missing-row condition.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, ErrDuplicateKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
