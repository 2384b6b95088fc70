package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/domain/requests"
)

var _ requests.Repository = (*RequestRepository)(nil)

type RequestRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *RequestRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const requestColumns = `id, event_id, requester_id, created_on, status`

func scanRequest(row pgx.Row) (*requests.Request, error) {
	var request requests.Request
	var status string
	if err := row.Scan(&request.ID, &request.EventID, &request.RequesterID, &request.CreatedOn, &status); err != nil {
		return nil, err
	}
	request.Status = requests.Status(status)
	return &request, nil
}

func (r *RequestRepository) Create(ctx context.Context, request *requests.Request) (*requests.Request, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO event_requests (event_id, requester_id, created_on, status)
VALUES ($1, $2, $3, $4)
RETURNING `+requestColumns,
		request.EventID, request.RequesterID, request.CreatedOn, string(request.Status),
	)
	created, err := scanRequest(row)
	if err != nil {
		return nil, createRequestError(err, request)
	}
	return created, nil
}

// createRequestError maps the one-request-per-event unique constraint
// onto the duplicate-request conflict.
func createRequestError(err error, request *requests.Request) error {
	if pgErrCode(err) == uniqueViolation {
		return fmt.Errorf("%w: requester %d already requested event %d",
			requests.ErrConflict, request.RequesterID, request.EventID)
	}
	return fmt.Errorf("insert participation request: %w", err)
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*requests.Request, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+requestColumns+` FROM event_requests WHERE id = $1`, id)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", requests.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get participation request: %w", err)
	}
	return request, nil
}

func (r *RequestRepository) Update(ctx context.Context, request *requests.Request) (*requests.Request, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE event_requests SET status = $2 WHERE id = $1
RETURNING `+requestColumns,
		request.ID, string(request.Status),
	)
	updated, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", requests.ErrNotFound, request.ID)
		}
		return nil, fmt.Errorf("update participation request: %w", err)
	}
	return updated, nil
}

// UpdateAll persists status changes for the batch in one round trip.
func (r *RequestRepository) UpdateAll(ctx context.Context, batch []requests.Request) error {
	if len(batch) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for i := range batch {
		b.Queue(`UPDATE event_requests SET status = $2 WHERE id = $1`, batch[i].ID, string(batch[i].Status))
	}

	results := r.queryer().SendBatch(ctx, b)
	defer results.Close()

	for range batch {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch update participation requests: %w", err)
		}
	}
	return nil
}

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]requests.Request, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+requestColumns+`
  FROM event_requests
 WHERE requester_id = $1
 ORDER BY id`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	return collectRequests(rows)
}

// Find joins through the event so initiator scoping never trusts the
// caller's claim of ownership.
func (r *RequestRepository) Find(ctx context.Context, filter requests.Filter) ([]requests.Request, error) {
	var status string
	if filter.Status != nil {
		status = string(*filter.Status)
	}

	rows, err := r.queryer().Query(ctx, `
SELECT r.id, r.event_id, r.requester_id, r.created_on, r.status
  FROM event_requests r
  JOIN events e ON e.id = r.event_id
 WHERE (coalesce(cardinality($1::bigint[]), 0) = 0 OR r.id = ANY($1::bigint[]))
   AND ($2 = 0 OR r.event_id = $2)
   AND ($3 = 0 OR e.initiator_id = $3)
   AND ($4 = '' OR r.status = $4)
 ORDER BY r.id`,
		filter.IDs, filter.EventID, filter.InitiatorID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("find participation requests: %w", err)
	}
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]requests.Request, error) {
	defer rows.Close()

	var result []requests.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participation request: %w", err)
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}
