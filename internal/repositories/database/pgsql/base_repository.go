// Package pgsql implements the repository ports on PostgreSQL through pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the part of *pgxpool.Pool and pgx.Tx the repositories need, so the same
// repository code runs inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db querier
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
)

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s (%s)", apperrors.ErrDuplicate, what, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s is still referenced (%s)", apperrors.ErrConflict, what, pgErr.ConstraintName)
		case pgExclusionViolation:
			return fmt.Errorf("%w: %s overlaps an existing row (%s)", apperrors.ErrConflict, what, pgErr.ConstraintName)
		}
	}
	return apperrors.NewAppError(500, "failed to write "+what, err)
}

// mapReadError turns pgx.ErrNoRows into apperrors.ErrNotFound.
func mapReadError(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return apperrors.NewAppError(500, "failed to read "+what, err)
}

// whereClause accumulates AND-ed conditions and their positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

// add appends a condition; cond holds a single %d for the placeholder number.
func (w *whereClause) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// limitArg maps a non-positive limit to LIMIT NULL, which Postgres reads as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// collectPage runs the count and the page query in one batch.
func collectPage[T any](ctx context.Context, db querier, selectList, from string, where *whereClause, orderBy string, limit, offset int, scan pgx.RowToFunc[T]) ([]T, int, error) {
	batch := &pgx.Batch{}

	var total int
	batch.Queue("SELECT COUNT(*) FROM "+from+where.String(), where.args...).QueryRow(func(row pgx.Row) error {
		return row.Scan(&total)
	})

	pageArgs := append(append([]any{}, where.args...), limitArg(limit), offset)
	pageSQL := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		selectList, from, where.String(), orderBy, len(where.args)+1, len(where.args)+2)

	items := []T{}
	batch.Queue(pageSQL, pageArgs...).Query(func(rows pgx.Rows) error {
		var err error
		items, err = pgx.CollectRows(rows, scan)
		return err
	})

	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// columns joins column names, optionally qualified with a table alias.
func columns(alias string, names ...string) string {
	if alias == "" {
		return strings.Join(names, ", ")
	}
	qualified := make([]string, len(names))
	for i, n := range names {
		qualified[i] = alias + "." + n
	}
	return strings.Join(qualified, ", ")
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ps, ", ")
}

var auditColumns = []string{"created_at", "created_by", "last_updated_at", "last_updated_by"}
