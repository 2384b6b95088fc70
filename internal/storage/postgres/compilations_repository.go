package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/domain/compilations"
)

var _ compilations.Repository = (*CompilationRepository)(nil)

type CompilationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CompilationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *CompilationRepository) Create(ctx context.Context, compilation *compilations.Compilation) (*compilations.Compilation, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO compilations (title, pinned) VALUES ($1, $2)
RETURNING id, title, pinned`,
		compilation.Title, compilation.Pinned,
	)
	var created compilations.Compilation
	if err := row.Scan(&created.ID, &created.Title, &created.Pinned); err != nil {
		return nil, fmt.Errorf("insert compilation: %w", err)
	}

	if err := r.replaceEvents(ctx, created.ID, compilation.EventIDs); err != nil {
		return nil, err
	}
	created.EventIDs = compilation.EventIDs
	return &created, nil
}

func (r *CompilationRepository) GetByID(ctx context.Context, id int64) (*compilations.Compilation, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT id, title, pinned FROM compilations WHERE id = $1`, id)
	var compilation compilations.Compilation
	if err := row.Scan(&compilation.ID, &compilation.Title, &compilation.Pinned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", compilations.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get compilation: %w", err)
	}

	eventIDs, err := r.eventIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	compilation.EventIDs = eventIDs
	return &compilation, nil
}

func (r *CompilationRepository) Update(ctx context.Context, compilation *compilations.Compilation) (*compilations.Compilation, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1
RETURNING id, title, pinned`,
		compilation.ID, compilation.Title, compilation.Pinned,
	)
	var updated compilations.Compilation
	if err := row.Scan(&updated.ID, &updated.Title, &updated.Pinned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", compilations.ErrNotFound, compilation.ID)
		}
		return nil, fmt.Errorf("update compilation: %w", err)
	}

	if err := r.replaceEvents(ctx, updated.ID, compilation.EventIDs); err != nil {
		return nil, err
	}
	updated.EventIDs = compilation.EventIDs
	return &updated, nil
}

func (r *CompilationRepository) List(ctx context.Context, pinned *bool, from, size int) ([]compilations.Compilation, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, title, pinned
  FROM compilations
 WHERE ($1::boolean IS NULL OR pinned = $1)
 ORDER BY id
 OFFSET $2 LIMIT $3`,
		pinned, from, pageSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()

	var result []compilations.Compilation
	for rows.Next() {
		var compilation compilations.Compilation
		if err := rows.Scan(&compilation.ID, &compilation.Title, &compilation.Pinned); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		result = append(result, compilation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		eventIDs, err := r.eventIDs(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].EventIDs = eventIDs
	}
	return result, nil
}

func (r *CompilationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%d", compilations.ErrNotFound, id)
	}
	return nil
}

func (r *CompilationRepository) eventIDs(ctx context.Context, compilationID int64) ([]int64, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT event_id FROM compilation_events WHERE compilation_id = $1 ORDER BY event_id`,
		compilationID)
	if err != nil {
		return nil, fmt.Errorf("list compilation events: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan compilation event: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CompilationRepository) replaceEvents(ctx context.Context, compilationID int64, eventIDs []int64) error {
	if _, err := r.queryer().Exec(ctx,
		`DELETE FROM compilation_events WHERE compilation_id = $1`, compilationID); err != nil {
		return fmt.Errorf("clear compilation events: %w", err)
	}
	if len(eventIDs) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, eventID := range eventIDs {
		b.Queue(`INSERT INTO compilation_events (compilation_id, event_id) VALUES ($1, $2)`,
			compilationID, eventID)
	}
	results := r.queryer().SendBatch(ctx, b)
	defer results.Close()

	for range eventIDs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("attach compilation events: %w", err)
		}
	}
	return nil
}
