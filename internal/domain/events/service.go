package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultMinLeadTime is the minimum interval between "now" and the
	// event date required at creation and owner/admin edits.
	DefaultMinLeadTime = 2 * time.Hour
	// DefaultMinPublishLeadTime is the minimum interval required at the
	// moment an admin publishes the event.
	DefaultMinPublishLeadTime = time.Hour
)

// ModerationConfig tunes the lead-time rules. Zero values fall back to
// the defaults.
type ModerationConfig struct {
	MinLeadTime        time.Duration
	MinPublishLeadTime time.Duration
}

// Service is the event moderation engine: it owns the publication
// state machine and the field-update rules.
type Service struct {
	repo           Repository
	minLeadTime    time.Duration
	minPublishLead time.Duration
}

func NewService(repo Repository, cfg ModerationConfig) *Service {
	s := &Service{
		repo:           repo,
		minLeadTime:    cfg.MinLeadTime,
		minPublishLead: cfg.MinPublishLeadTime,
	}
	if s.minLeadTime <= 0 {
		s.minLeadTime = DefaultMinLeadTime
	}
	if s.minPublishLead <= 0 {
		s.minPublishLead = DefaultMinPublishLeadTime
	}
	return s
}

// Create registers a new event draft. The draft enters moderation in
// PENDING state with an empty confirmed counter.
func (s *Service) Create(ctx context.Context, draft Event) (*Event, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, ValidationError{Field: "title", Message: "must not be blank"}
	}
	if strings.TrimSpace(draft.Description) == "" {
		return nil, ValidationError{Field: "description", Message: "must not be blank"}
	}
	if draft.ParticipantLimit < 0 {
		return nil, ValidationError{Field: "participantLimit", Message: "must not be negative"}
	}

	now := time.Now()
	if err := validateEventDate(draft.EventDate, now.Add(s.minLeadTime)); err != nil {
		return nil, err
	}

	draft.State = StatePending
	draft.ConfirmedRequests = 0
	draft.CreatedOn = now
	draft.PublishedOn = nil

	created, err := s.repo.Create(ctx, &draft)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("event_id", created.ID).
		Int64("initiator_id", created.InitiatorID).
		Time("event_date", created.EventDate).
		Msg("event created")
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// GetPublishedByID returns the event only when it is published; an
// unpublished event is reported as absent to public callers.
func (s *Service) GetPublishedByID(ctx context.Context, id int64) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.State != StatePublished {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return event, nil
}

func (s *Service) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*Event, error) {
	return s.repo.GetByIDAndInitiator(ctx, id, initiatorID)
}

func (s *Service) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]Event, error) {
	return s.repo.ListByInitiator(ctx, initiatorID, from, size)
}

func (s *Service) Search(ctx context.Context, params AdminSearch) ([]Event, error) {
	return s.repo.Search(ctx, params)
}

func (s *Service) SearchPublished(ctx context.Context, params PublicSearch) ([]Event, error) {
	return s.repo.SearchPublished(ctx, params)
}

// UpdateByOwner applies a partial update on behalf of the event's
// initiator. Events the owner does not hold are reported as absent.
// Published events are closed for owner edits.
func (s *Service) UpdateByOwner(ctx context.Context, eventID, ownerID int64, patch Patch, action OwnerStateAction) (*Event, error) {
	var updated *Event
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		event, err := repo.GetByIDAndInitiator(ctx, eventID, ownerID)
		if err != nil {
			return err
		}
		if event.State == StatePublished {
			return fmt.Errorf("%w: only pending or canceled events can be changed by the owner", ErrForbidden)
		}

		if patch.EventDate != nil {
			if err := validateEventDate(*patch.EventDate, time.Now().Add(s.minLeadTime)); err != nil {
				return err
			}
		}

		switch action {
		case OwnerActionNone:
		case OwnerSendToReview:
			event.State = StatePending
		case OwnerCancelReview:
			event.State = StateCanceled
		}

		patch.apply(event)
		updated, err = repo.Update(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("event_id", eventID).
		Int64("owner_id", ownerID).
		Str("state", string(updated.State)).
		Msg("event updated by owner")
	return updated, nil
}

// UpdateByAdmin applies a partial update with moderation authority.
// Publish is legal from PENDING only and re-checks the publish lead
// time against the effective event date; reject is legal unless the
// event is already published.
func (s *Service) UpdateByAdmin(ctx context.Context, eventID int64, patch Patch, action AdminStateAction) (*Event, error) {
	var updated *Event
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		event, err := repo.GetByID(ctx, eventID)
		if err != nil {
			return err
		}

		now := time.Now()
		if patch.EventDate != nil {
			if err := validateEventDate(*patch.EventDate, now.Add(s.minLeadTime)); err != nil {
				return err
			}
		}

		switch action {
		case AdminActionNone:
		case AdminPublish:
			if event.State != StatePending {
				return fmt.Errorf("%w: cannot publish an event in state %s", ErrConflict, event.State)
			}
			eventDate := event.EventDate
			if patch.EventDate != nil {
				eventDate = *patch.EventDate
			}
			if err := validateEventDate(eventDate, now.Add(s.minPublishLead)); err != nil {
				return err
			}
			event.State = StatePublished
			event.PublishedOn = &now
		case AdminReject:
			if event.State == StatePublished {
				return fmt.Errorf("%w: cannot reject an event in state %s", ErrConflict, event.State)
			}
			event.State = StateCanceled
		}

		patch.apply(event)
		updated, err = repo.Update(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("event_id", eventID).
		Str("state", string(updated.State)).
		Msg("event updated by admin")
	return updated, nil
}
