package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/domain/categories"
)

var _ categories.Repository = (*CategoryRepository)(nil)

type CategoryRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CategoryRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanCategory(row pgx.Row) (*categories.Category, error) {
	var category categories.Category
	if err := row.Scan(&category.ID, &category.Name); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *categories.Category) (*categories.Category, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO categories (name) VALUES ($1)
RETURNING id, name`,
		category.Name,
	)
	created, err := scanCategory(row)
	if err != nil {
		if pgErrCode(err) == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", categories.ErrNameExists, category.Name)
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categories.Category, error) {
	row := r.queryer().QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", categories.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *categories.Category) (*categories.Category, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE categories SET name = $2 WHERE id = $1
RETURNING id, name`,
		category.ID, category.Name,
	)
	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", categories.ErrNotFound, category.ID)
		}
		if pgErrCode(err) == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", categories.ErrNameExists, category.Name)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

func (r *CategoryRepository) List(ctx context.Context, from, size int) ([]categories.Category, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, name FROM categories ORDER BY id OFFSET $1 LIMIT $2`,
		from, pageSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var result []categories.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, *category)
	}
	return result, rows.Err()
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgErrCode(err) == foreignKeyViolation {
			return fmt.Errorf("%w: id=%d", categories.ErrInUse, id)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%d", categories.ErrNotFound, id)
	}
	return nil
}
