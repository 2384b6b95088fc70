package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/katesim/explore-events/internal/domain/events"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	events events.Repository
}

func NewService(repo Repository, eventsRepo events.Repository) *Service {
	return &Service{repo: repo, events: eventsRepo}
}

// Create attaches a comment to a published event.
func (s *Service) Create(ctx context.Context, comment Comment) (*Comment, error) {
	event, err := s.events.GetByID(ctx, comment.EventID)
	if err != nil {
		return nil, err
	}
	if event.State != events.StatePublished {
		return nil, fmt.Errorf("%w: event %d is %s", ErrEventNotPublished, event.ID, event.State)
	}

	comment.CreatedOn = time.Now()
	created, err := s.repo.Create(ctx, &comment)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().
		Int64("comment_id", created.ID).
		Int64("event_id", created.EventID).
		Msg("comment created")
	return created, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID int64, from, size int) ([]Comment, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID, from, size)
}
