package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *users.User) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (name, email) VALUES ($1, $2)
RETURNING id, name, email`,
		user.Name, user.Email,
	)
	created, err := scanUser(row)
	if err != nil {
		if pgErrCode(err) == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", users.ErrEmailExists, user.Email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `SELECT id, name, email FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", users.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, ids []int64, from, size int) ([]users.User, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, name, email
  FROM users
 WHERE (coalesce(cardinality($1::bigint[]), 0) = 0 OR id = ANY($1::bigint[]))
 ORDER BY id
 OFFSET $2 LIMIT $3`,
		ids, from, pageSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%d", users.ErrNotFound, id)
	}
	return nil
}
