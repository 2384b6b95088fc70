package events

import (
	"fmt"
	"time"
)

// Patch carries a partial event update. A nil field means "leave the
// current value alone"; it never means "clear the value".
type Patch struct {
	Title             *string
	Annotation        *string
	Description       *string
	EventDate         *time.Time
	Latitude          *float64
	Longitude         *float64
	ParticipantLimit  *int
	Paid              *bool
	RequestModeration *bool
	CategoryID        *int64
}

// apply writes the supplied fields onto the event. A field is only
// written when it is present and differs from the stored value, which
// keeps update diffs minimal.
func (p Patch) apply(e *Event) {
	if p.Title != nil && *p.Title != e.Title {
		e.Title = *p.Title
	}
	if p.Annotation != nil && *p.Annotation != e.Annotation {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil && *p.Description != e.Description {
		e.Description = *p.Description
	}
	if p.EventDate != nil && !p.EventDate.Equal(e.EventDate) {
		e.EventDate = *p.EventDate
	}
	if p.Latitude != nil && *p.Latitude != e.Latitude {
		e.Latitude = *p.Latitude
	}
	if p.Longitude != nil && *p.Longitude != e.Longitude {
		e.Longitude = *p.Longitude
	}
	if p.ParticipantLimit != nil && *p.ParticipantLimit != e.ParticipantLimit {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.Paid != nil && *p.Paid != e.Paid {
		e.Paid = *p.Paid
	}
	if p.RequestModeration != nil && *p.RequestModeration != e.RequestModeration {
		e.RequestModeration = *p.RequestModeration
	}
	if p.CategoryID != nil && *p.CategoryID != e.CategoryID {
		e.CategoryID = *p.CategoryID
	}
}

// OwnerStateAction is the closed set of state transitions an event's
// initiator may request alongside a patch.
type OwnerStateAction int

const (
	OwnerActionNone OwnerStateAction = iota
	OwnerSendToReview
	OwnerCancelReview
)

// ParseOwnerStateAction maps the wire action code to an owner action.
// An empty code means no state change. Unknown codes are rejected at
// the boundary so the engine only ever sees the closed set.
func ParseOwnerStateAction(code string) (OwnerStateAction, error) {
	switch code {
	case "":
		return OwnerActionNone, nil
	case "SEND_TO_REVIEW":
		return OwnerSendToReview, nil
	case "CANCEL_REVIEW":
		return OwnerCancelReview, nil
	default:
		return OwnerActionNone, ValidationError{Field: "stateAction", Message: fmt.Sprintf("unknown owner action %q", code)}
	}
}

// AdminStateAction is the closed set of state transitions an admin may
// request alongside a patch.
type AdminStateAction int

const (
	AdminActionNone AdminStateAction = iota
	AdminPublish
	AdminReject
)

func ParseAdminStateAction(code string) (AdminStateAction, error) {
	switch code {
	case "":
		return AdminActionNone, nil
	case "PUBLISH_EVENT":
		return AdminPublish, nil
	case "REJECT_EVENT":
		return AdminReject, nil
	default:
		return AdminActionNone, ValidationError{Field: "stateAction", Message: fmt.Sprintf("unknown admin action %q", code)}
	}
}
