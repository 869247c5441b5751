package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is the subset of pgx satisfied by both *pgxpool.Pool and
// pgx.Tx, so each repository can run standalone or inside a unit of work.
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres SQLSTATE code for unique constraint violations.
const pgUniqueViolation = "23505"
