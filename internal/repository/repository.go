// Package repository implements the persistence gateway over PostgreSQL
// using pgx. It is the only package that speaks SQL; callers see the
// core.Store interface and the core error taxonomy (StorageError for
// infrastructure failures, ErrNotFound for missing uploads).
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, letting queries run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
