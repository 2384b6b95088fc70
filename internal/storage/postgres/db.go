// Package postgres implements the domain repositories on PostgreSQL
// via pgx. Each repository runs against the pool or, inside WithTx,
// against the surrounding transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/domain/categories"
	"github.com/katesim/explore-events/internal/domain/comments"
	"github.com/katesim/explore-events/internal/domain/compilations"
	"github.com/katesim/explore-events/internal/domain/events"
	"github.com/katesim/explore-events/internal/domain/requests"
	"github.com/katesim/explore-events/internal/domain/users"
)

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store groups the repositories over one pool and implements
// requests.Store.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres store: pool is nil")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Events() events.Repository {
	return &EventRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) Requests() requests.Repository {
	return &RequestRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) Users() users.Repository {
	return &UserRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) Categories() categories.Repository {
	return &CategoryRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) Compilations() compilations.Repository {
	return &CompilationRepository{pool: s.pool, tx: s.tx}
}

func (s *Store) Comments() comments.Repository {
	return &CommentRepository{pool: s.pool, tx: s.tx}
}

// WithTx runs fn inside one transaction. Nested calls reuse the
// surrounding transaction.
func (s *Store) WithTx(ctx context.Context, fn func(context.Context, requests.Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Store{pool: s.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
