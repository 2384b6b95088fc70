package events

import (
	"context"
	"time"
)

// AdminSearch filters the admin event listing. Nil/empty fields are
// not applied; present fields combine with AND.
type AdminSearch struct {
	UserIDs     []int64
	States      []State
	CategoryIDs []int64
	RangeStart  *time.Time
	RangeEnd    *time.Time
	From        int
	Size        int
}

// PublicSearch filters the public listing of published events.
type PublicSearch struct {
	Text          string
	Paid          *bool
	OnlyAvailable bool
	CategoryIDs   []int64
	RangeStart    *time.Time
	RangeEnd      *time.Time
	From          int
	Size          int
}

type Repository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	// GetByIDForUpdate locks the event row for the remainder of the
	// surrounding transaction so capacity check-then-act sequences
	// cannot interleave.
	GetByIDForUpdate(ctx context.Context, id int64) (*Event, error)
	GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*Event, error)
	Update(ctx context.Context, event *Event) (*Event, error)
	ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]Event, error)
	Search(ctx context.Context, params AdminSearch) ([]Event, error)
	SearchPublished(ctx context.Context, params PublicSearch) ([]Event, error)

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
