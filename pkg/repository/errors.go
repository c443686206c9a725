package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyCode   = "23503"
	pgDuplicateKeyCode = "23505"
)

// MapError translates database errors to domain errors. sql.ErrNoRows maps
// to notFoundErr, and so does a foreign-key violation (23503): writing a
// child row for a bookmark deleted mid-flight is a missing parent, not an
// internal failure. Unique violations (23505) map to duplicateErr. Other
// errors pass through unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyCode:
			return notFoundErr
		case pgDuplicateKeyCode:
			return duplicateErr
		}
	}

	return err
}
