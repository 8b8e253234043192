package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup or conditional update matches no row.
	ErrNotFound = pgx.ErrNoRows
	// ErrUniqueViolation is returned when a write breaks a uniqueness constraint.
	ErrUniqueViolation = errors.New("unique constraint violated")
)

const (
	pgUniqueViolation        = "23505"
	pgInvalidTextRepresented = "22P02"
)

// mapWriteError translates driver errors into repository sentinels.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	}
	return err
}

// mapLookupError treats malformed ids as missing rows.
func mapLookupError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresented {
		return ErrNotFound
	}
	return err
}
