package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPatchApplyLeavesAbsentFieldsAlone(t *testing.T) {
	event := Event{
		Title:             "original",
		Description:       "original description",
		ParticipantLimit:  5,
		RequestModeration: true,
	}

	title := "changed"
	Patch{Title: &title}.apply(&event)

	require.Equal(t, "changed", event.Title)
	require.Equal(t, "original description", event.Description)
	require.Equal(t, 5, event.ParticipantLimit)
	require.True(t, event.RequestModeration)
}

func TestPatchApplyAllFields(t *testing.T) {
	event := Event{}

	title := "t"
	annotation := "a"
	description := "d"
	eventDate := time.Now().Add(time.Hour)
	lat, lon := 55.75, 37.61
	limit := 10
	paid := true
	moderation := true
	category := int64(3)

	Patch{
		Title:             &title,
		Annotation:        &annotation,
		Description:       &description,
		EventDate:         &eventDate,
		Latitude:          &lat,
		Longitude:         &lon,
		ParticipantLimit:  &limit,
		Paid:              &paid,
		RequestModeration: &moderation,
		CategoryID:        &category,
	}.apply(&event)

	require.Equal(t, "t", event.Title)
	require.Equal(t, "a", event.Annotation)
	require.Equal(t, "d", event.Description)
	require.True(t, eventDate.Equal(event.EventDate))
	require.Equal(t, 55.75, event.Latitude)
	require.Equal(t, 37.61, event.Longitude)
	require.Equal(t, 10, event.ParticipantLimit)
	require.True(t, event.Paid)
	require.True(t, event.RequestModeration)
	require.Equal(t, int64(3), event.CategoryID)
}

func TestParseOwnerStateAction(t *testing.T) {
	action, err := ParseOwnerStateAction("")
	require.NoError(t, err)
	require.Equal(t, OwnerActionNone, action)

	action, err = ParseOwnerStateAction("SEND_TO_REVIEW")
	require.NoError(t, err)
	require.Equal(t, OwnerSendToReview, action)

	action, err = ParseOwnerStateAction("CANCEL_REVIEW")
	require.NoError(t, err)
	require.Equal(t, OwnerCancelReview, action)

	_, err = ParseOwnerStateAction("PUBLISH_EVENT")
	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "stateAction", validation.Field)
}

func TestParseAdminStateAction(t *testing.T) {
	action, err := ParseAdminStateAction("")
	require.NoError(t, err)
	require.Equal(t, AdminActionNone, action)

	action, err = ParseAdminStateAction("PUBLISH_EVENT")
	require.NoError(t, err)
	require.Equal(t, AdminPublish, action)

	action, err = ParseAdminStateAction("REJECT_EVENT")
	require.NoError(t, err)
	require.Equal(t, AdminReject, action)

	_, err = ParseAdminStateAction("SEND_TO_REVIEW")
	var validation ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestFullRequiresLimit(t *testing.T) {
	unlimited := Event{ParticipantLimit: 0, ConfirmedRequests: 100}
	require.False(t, unlimited.Full())

	limited := Event{ParticipantLimit: 2, ConfirmedRequests: 2}
	require.True(t, limited.Full())

	open := Event{ParticipantLimit: 2, ConfirmedRequests: 1}
	require.False(t, open.Full())
}

func TestTakeSlotStopsAtLimit(t *testing.T) {
	event := Event{ParticipantLimit: 2}

	require.NoError(t, event.TakeSlot())
	require.NoError(t, event.TakeSlot())
	require.ErrorIs(t, event.TakeSlot(), ErrNoFreeSlots)
	require.Equal(t, 2, event.ConfirmedRequests)
}
