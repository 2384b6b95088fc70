package requests

import (
	"context"

	"github.com/katesim/explore-events/internal/domain/events"
)

// Filter selects participation requests. Zero/nil fields are skipped;
// present fields combine with AND. InitiatorID is always resolved by
// joining through the event, so callers can only address requests on
// events they initiated.
type Filter struct {
	IDs         []int64
	EventID     int64
	InitiatorID int64
	Status      *Status
}

type Repository interface {
	Create(ctx context.Context, request *Request) (*Request, error)
	GetByID(ctx context.Context, id int64) (*Request, error)
	Update(ctx context.Context, request *Request) (*Request, error)
	UpdateAll(ctx context.Context, batch []Request) error
	ListByRequester(ctx context.Context, requesterID int64) ([]Request, error)
	Find(ctx context.Context, filter Filter) ([]Request, error)
}

// Store groups the repositories the lifecycle engine mutates together.
// WithTx runs fn inside one storage transaction; every public engine
// operation goes through it.
type Store interface {
	Events() events.Repository
	Requests() Repository
	WithTx(ctx context.Context, fn func(context.Context, Store) error) error
}
