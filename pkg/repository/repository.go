// Package repository provides database helpers for transaction management
// and squirrel-built query execution.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Builder is the shared statement builder for PostgreSQL placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner abstracts row scanning for use with query helpers.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts a Scanner into a typed value.
// Domain packages define their own scan functions for entity types.
type ScanFunc[T any] func(Scanner) (T, error)

// WithTx executes fn within a database transaction.
// It handles Begin, Commit, and Rollback automatically.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, err
	}

	return result, nil
}

// QueryOne renders the builder and executes it, scanning a single row.
func QueryOne[T any](ctx context.Context, q Querier, sqlz sq.Sqlizer, scan ScanFunc[T]) (T, error) {
	var zero T

	query, args, err := sqlz.ToSql()
	if err != nil {
		return zero, fmt.Errorf("build query: %w", err)
	}

	result, err := scan(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return zero, err
	}
	return result, nil
}

// QueryMany renders the builder and executes it, scanning every row.
// Returns an empty slice if no rows are found.
func QueryMany[T any](ctx context.Context, q Querier, sqlz sq.Sqlizer, scan ScanFunc[T]) ([]T, error) {
	query, args, err := sqlz.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Exec renders the builder and executes it.
func Exec(ctx context.Context, e Executor, sqlz sq.Sqlizer) (sql.Result, error) {
	query, args, err := sqlz.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statement: %w", err)
	}
	return e.ExecContext(ctx, query, args...)
}

// ExecExpectOne executes a statement expected to affect exactly one row.
// Returns sql.ErrNoRows if no rows were affected.
func ExecExpectOne(ctx context.Context, e Executor, sqlz sq.Sqlizer) error {
	result, err := Exec(ctx, e, sqlz)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
