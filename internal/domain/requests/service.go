package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/katesim/explore-events/internal/domain/events"
	"github.com/rs/zerolog"
)

// Service is the participation request lifecycle engine. All mutating
// operations execute inside one storage transaction and lock the event
// row before touching its capacity counter.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create files a request by requesterID to join eventID. The event
// must be published, must have a free slot, and must not be the
// requester's own. Unmoderated events confirm the request immediately
// and take the slot in the same transaction.
func (s *Service) Create(ctx context.Context, eventID, requesterID int64) (*Request, error) {
	var created *Request
	err := s.store.WithTx(ctx, func(ctx context.Context, store Store) error {
		event, err := store.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if event.State != events.StatePublished {
			return fmt.Errorf("%w: event must be published to participate", ErrForbidden)
		}
		if event.Full() {
			return fmt.Errorf("%w: event must have free slots to participate", ErrForbidden)
		}
		if event.InitiatorID == requesterID {
			return fmt.Errorf("%w: initiator cannot request participation in its own event", ErrForbidden)
		}

		request := &Request{
			EventID:     eventID,
			RequesterID: requesterID,
			CreatedOn:   time.Now(),
			Status:      StatusPending,
		}

		if !event.RequestModeration {
			if err := event.TakeSlot(); err != nil {
				return fmt.Errorf("%w: %s", ErrForbidden, err)
			}
			if _, err := store.Events().Update(ctx, event); err != nil {
				return err
			}
			request.Status = StatusConfirmed
		}

		created, err = store.Requests().Create(ctx, request)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("request_id", created.ID).
		Int64("event_id", eventID).
		Int64("requester_id", requesterID).
		Str("status", string(created.Status)).
		Msg("participation request created")
	return created, nil
}

func (s *Service) ListByRequester(ctx context.Context, requesterID int64) ([]Request, error) {
	return s.store.Requests().ListByRequester(ctx, requesterID)
}

// ListForEventByInitiator returns the requests against eventID,
// optionally narrowed to requestIDs, visible to the event's initiator.
func (s *Service) ListForEventByInitiator(ctx context.Context, requestIDs []int64, eventID, initiatorID int64) ([]Request, error) {
	return s.store.Requests().Find(ctx, Filter{
		IDs:         requestIDs,
		EventID:     eventID,
		InitiatorID: initiatorID,
	})
}

// Cancel withdraws the requester's own request. A request held by
// someone else is reported as absent, not forbidden, so existence does
// not leak. Canceling an already canceled request is a no-op; other
// terminal states refuse the transition.
func (s *Service) Cancel(ctx context.Context, requestID, requesterID int64) (*Request, error) {
	var canceled *Request
	err := s.store.WithTx(ctx, func(ctx context.Context, store Store) error {
		request, err := store.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if request.RequesterID != requesterID {
			return notFound(requestID)
		}

		switch request.Status {
		case StatusCanceled:
			canceled = request
			return nil
		case StatusConfirmed, StatusRejected:
			return fmt.Errorf("%w: cannot cancel a request in status %s", ErrConflict, request.Status)
		}

		request.Status = StatusCanceled
		canceled, err = store.Requests().Update(ctx, request)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("request_id", requestID).
		Int64("requester_id", requesterID).
		Msg("participation request canceled")
	return canceled, nil
}

// Confirm moves the addressed PENDING requests to CONFIRMED on behalf
// of the event's initiator. Events without a moderation gate (zero
// limit or moderation off) are returned untouched. When the
// confirmation fills the event exactly, every other PENDING request for
// the event is auto-rejected, whether or not it was addressed.
func (s *Service) Confirm(ctx context.Context, requestIDs []int64, eventID, initiatorID int64) ([]Request, error) {
	var confirmed []Request
	err := s.store.WithTx(ctx, func(ctx context.Context, store Store) error {
		event, err := store.Events().GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		filter := Filter{IDs: requestIDs, EventID: eventID, InitiatorID: initiatorID}

		if event.ParticipantLimit == 0 || !event.RequestModeration {
			confirmed, err = store.Requests().Find(ctx, filter)
			return err
		}

		targets, err := store.Requests().Find(ctx, filter)
		if err != nil {
			return err
		}

		for i := range targets {
			if targets[i].Status != StatusPending {
				return fmt.Errorf("%w: request %d must be pending to confirm", ErrConflict, targets[i].ID)
			}
			if err := event.TakeSlot(); err != nil {
				return fmt.Errorf("%w: %s", ErrForbidden, err)
			}
			targets[i].Status = StatusConfirmed
		}

		if _, err := store.Events().Update(ctx, event); err != nil {
			return err
		}
		if err := store.Requests().UpdateAll(ctx, targets); err != nil {
			return err
		}
		confirmed = targets

		if !event.Full() {
			return nil
		}
		return s.rejectRemainingPending(ctx, store, eventID, initiatorID)
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("event_id", eventID).
		Int64("initiator_id", initiatorID).
		Int("confirmed", len(confirmed)).
		Msg("participation requests confirmed")
	return confirmed, nil
}

// Reject moves the addressed PENDING requests to REJECTED on behalf of
// the event's initiator.
func (s *Service) Reject(ctx context.Context, requestIDs []int64, eventID, initiatorID int64) ([]Request, error) {
	var rejected []Request
	err := s.store.WithTx(ctx, func(ctx context.Context, store Store) error {
		targets, err := store.Requests().Find(ctx, Filter{
			IDs:         requestIDs,
			EventID:     eventID,
			InitiatorID: initiatorID,
		})
		if err != nil {
			return err
		}

		for i := range targets {
			if targets[i].Status != StatusPending {
				return fmt.Errorf("%w: request %d must be pending to reject", ErrConflict, targets[i].ID)
			}
			targets[i].Status = StatusRejected
		}

		if err := store.Requests().UpdateAll(ctx, targets); err != nil {
			return err
		}
		rejected = targets
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("event_id", eventID).
		Int64("initiator_id", initiatorID).
		Int("rejected", len(rejected)).
		Msg("participation requests rejected")
	return rejected, nil
}

// rejectRemainingPending flips every still-PENDING request for the
// event to REJECTED once capacity is exhausted.
func (s *Service) rejectRemainingPending(ctx context.Context, store Store, eventID, initiatorID int64) error {
	pending := StatusPending
	remaining, err := store.Requests().Find(ctx, Filter{
		EventID:     eventID,
		InitiatorID: initiatorID,
		Status:      &pending,
	})
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}

	for i := range remaining {
		remaining[i].Status = StatusRejected
	}
	if err := store.Requests().UpdateAll(ctx, remaining); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Int64("event_id", eventID).
		Int("auto_rejected", len(remaining)).
		Msg("remaining pending requests auto-rejected after event filled")
	return nil
}
