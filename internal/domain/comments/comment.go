package comments

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("comment not found")

	// ErrEventNotPublished rejects comments on events that are not
	// visible to the public yet.
	ErrEventNotPublished = errors.New("only published events can be commented")
)

type Comment struct {
	ID        int64
	EventID   int64
	AuthorID  int64
	Text      string
	CreatedOn time.Time
}

type Repository interface {
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	ListByEvent(ctx context.Context, eventID int64, from, size int) ([]Comment, error)
}
