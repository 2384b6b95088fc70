package events

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("event not found")

	// ErrForbidden covers actions rejected by the current event state or
	// by the caller's relationship to the event.
	ErrForbidden = errors.New("forbidden event operation")

	// ErrConflict covers state transitions that are illegal from the
	// event's current lifecycle state.
	ErrConflict = errors.New("event state conflict")

	ErrNoFreeSlots = errors.New("event has no free participation slots")
)

// State is the moderation lifecycle state of an event.
type State string

const (
	StatePending   State = "PENDING"
	StatePublished State = "PUBLISHED"
	StateCanceled  State = "CANCELED"
)

func ParseState(value string) (State, error) {
	switch State(value) {
	case StatePending, StatePublished, StateCanceled:
		return State(value), nil
	default:
		return "", ValidationError{Field: "state", Message: fmt.Sprintf("unknown state %q", value)}
	}
}

// Event is the schedulable gathering aggregate. ConfirmedRequests is
// mutated upward only through TakeSlot.
type Event struct {
	ID                int64
	Title             string
	Annotation        string
	Description       string
	EventDate         time.Time
	Latitude          float64
	Longitude         float64
	ParticipantLimit  int
	ConfirmedRequests int
	Paid              bool
	RequestModeration bool
	State             State
	CreatedOn         time.Time
	PublishedOn       *time.Time
	InitiatorID       int64
	CategoryID        int64
}

// Full reports whether the event has a participant limit and it has
// been reached. A zero limit means unlimited capacity.
func (e *Event) Full() bool {
	return e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit
}

// TakeSlot confirms one participant. It is the single place the
// ConfirmedRequests counter is incremented, so the capacity invariant
// (ConfirmedRequests <= ParticipantLimit when limited) holds everywhere.
func (e *Event) TakeSlot() error {
	if e.Full() {
		return ErrNoFreeSlots
	}
	e.ConfirmedRequests++
	return nil
}

// ValidationError reports a structurally invalid input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validateEventDate(eventDate time.Time, minimal time.Time) error {
	if eventDate.Before(minimal) {
		return ValidationError{
			Field:   "eventDate",
			Message: fmt.Sprintf("must be on or after %s", minimal.Format(time.RFC3339)),
		}
	}
	return nil
}
