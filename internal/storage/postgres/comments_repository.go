package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/domain/comments"
)

var _ comments.Repository = (*CommentRepository)(nil)

type CommentRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *CommentRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *CommentRepository) Create(ctx context.Context, comment *comments.Comment) (*comments.Comment, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO comments (event_id, author_id, text, created_on)
VALUES ($1, $2, $3, $4)
RETURNING id, event_id, author_id, text, created_on`,
		comment.EventID, comment.AuthorID, comment.Text, comment.CreatedOn,
	)
	var created comments.Comment
	if err := row.Scan(&created.ID, &created.EventID, &created.AuthorID, &created.Text, &created.CreatedOn); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &created, nil
}

func (r *CommentRepository) ListByEvent(ctx context.Context, eventID int64, from, size int) ([]comments.Comment, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, event_id, author_id, text, created_on
  FROM comments
 WHERE event_id = $1
 ORDER BY created_on DESC, id DESC
 OFFSET $2 LIMIT $3`,
		eventID, from, pageSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var result []comments.Comment
	for rows.Next() {
		var comment comments.Comment
		if err := rows.Scan(&comment.ID, &comment.EventID, &comment.AuthorID, &comment.Text, &comment.CreatedOn); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
