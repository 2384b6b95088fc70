package requests

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("participation request not found")

	// ErrForbidden covers creation attempts the event's state or the
	// requester's identity disallows.
	ErrForbidden = errors.New("forbidden participation request operation")

	// ErrConflict covers status transitions attempted from a state the
	// transition is not defined for.
	ErrConflict = errors.New("participation request status conflict")
)

// Status is the lifecycle status of a participation request.
// CONFIRMED, REJECTED, and CANCELED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCanceled  Status = "CANCELED"
)

func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected || s == StatusCanceled
}

// Request is one user's request to participate in an event.
type Request struct {
	ID          int64
	EventID     int64
	RequesterID int64
	CreatedOn   time.Time
	Status      Status
}

func notFound(requestID int64) error {
	return fmt.Errorf("%w: id=%d", ErrNotFound, requestID)
}
