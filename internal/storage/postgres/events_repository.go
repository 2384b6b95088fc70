package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const eventColumns = `id, title, annotation, description, event_date, latitude, longitude,
       participant_limit, confirmed_requests, paid, request_moderation,
       state, created_on, published_on, initiator_id, category_id`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	var state string
	var publishedOn pgtype.Timestamptz
	err := row.Scan(
		&event.ID, &event.Title, &event.Annotation, &event.Description,
		&event.EventDate, &event.Latitude, &event.Longitude,
		&event.ParticipantLimit, &event.ConfirmedRequests, &event.Paid,
		&event.RequestModeration, &state, &event.CreatedOn, &publishedOn,
		&event.InitiatorID, &event.CategoryID,
	)
	if err != nil {
		return nil, err
	}
	event.State = events.State(state)
	if publishedOn.Valid {
		value := publishedOn.Time
		event.PublishedOn = &value
	}
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *events.Event) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (title, annotation, description, event_date, latitude, longitude,
                    participant_limit, confirmed_requests, paid, request_moderation,
                    state, created_on, published_on, initiator_id, category_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING `+eventColumns,
		event.Title, event.Annotation, event.Description, event.EventDate,
		event.Latitude, event.Longitude, event.ParticipantLimit,
		event.ConfirmedRequests, event.Paid, event.RequestModeration,
		string(event.State), event.CreatedOn, event.PublishedOn,
		event.InitiatorID, event.CategoryID,
	)
	created, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", events.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// GetByIDForUpdate locks the event row until the surrounding
// transaction resolves, serializing concurrent capacity checks.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", events.ErrNotFound, id)
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 AND initiator_id = $2`, id, initiatorID)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", events.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get event by initiator: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, event *events.Event) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE events
   SET title = $2, annotation = $3, description = $4, event_date = $5,
       latitude = $6, longitude = $7, participant_limit = $8,
       confirmed_requests = $9, paid = $10, request_moderation = $11,
       state = $12, published_on = $13, category_id = $14
 WHERE id = $1
RETURNING `+eventColumns,
		event.ID, event.Title, event.Annotation, event.Description,
		event.EventDate, event.Latitude, event.Longitude,
		event.ParticipantLimit, event.ConfirmedRequests, event.Paid,
		event.RequestModeration, string(event.State), event.PublishedOn,
		event.CategoryID,
	)
	updated, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", events.ErrNotFound, event.ID)
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (r *EventRepository) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE initiator_id = $1
 ORDER BY id
OFFSET $2 LIMIT $3`, initiatorID, from, pageSize(size))
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) Search(ctx context.Context, params events.AdminSearch) ([]events.Event, error) {
	states := make([]string, 0, len(params.States))
	for _, state := range params.States {
		states = append(states, string(state))
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE (coalesce(cardinality($1::bigint[]), 0) = 0 OR initiator_id = ANY($1::bigint[]))
   AND (coalesce(cardinality($2::text[]), 0) = 0 OR state = ANY($2::text[]))
   AND (coalesce(cardinality($3::bigint[]), 0) = 0 OR category_id = ANY($3::bigint[]))
   AND ($4::timestamptz IS NULL OR event_date >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR event_date <= $5::timestamptz)
 ORDER BY id
OFFSET $6 LIMIT $7`,
		params.UserIDs, states, params.CategoryIDs,
		params.RangeStart, params.RangeEnd,
		params.From, pageSize(params.Size),
	)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) SearchPublished(ctx context.Context, params events.PublicSearch) ([]events.Event, error) {
	rangeStart := params.RangeStart
	if rangeStart == nil && params.RangeEnd == nil {
		// No explicit window: show upcoming events only.
		now := time.Now()
		rangeStart = &now
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE state = 'PUBLISHED'
   AND ($1 = '' OR annotation ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
   AND ($2::boolean IS NULL OR paid = $2::boolean)
   AND (coalesce(cardinality($3::bigint[]), 0) = 0 OR category_id = ANY($3::bigint[]))
   AND ($4::timestamptz IS NULL OR event_date >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR event_date <= $5::timestamptz)
   AND (NOT $6::boolean OR participant_limit = 0 OR confirmed_requests < participant_limit)
 ORDER BY event_date ASC, id ASC
OFFSET $7 LIMIT $8`,
		params.Text, params.Paid, params.CategoryIDs,
		rangeStart, params.RangeEnd, params.OnlyAvailable,
		params.From, pageSize(params.Size),
	)
	if err != nil {
		return nil, fmt.Errorf("search published events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &EventRepository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		result = append(result, *event)
	}
	return result, rows.Err()
}

func pageSize(size int) int {
	if size <= 0 {
		return 10
	}
	return size
}
