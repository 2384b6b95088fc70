package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	events map[int64]*Event
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[int64]*Event)}
}

func (f *fakeRepo) put(event Event) *Event {
	if event.ID == 0 {
		f.nextID++
		event.ID = f.nextID
	} else if event.ID > f.nextID {
		f.nextID = event.ID
	}
	stored := event
	f.events[stored.ID] = &stored
	return &stored
}

func (f *fakeRepo) Create(ctx context.Context, event *Event) (*Event, error) {
	created := *f.put(*event)
	return &created, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	copied := *event
	return &copied, nil
}

func (f *fakeRepo) GetByIDForUpdate(ctx context.Context, id int64) (*Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*Event, error) {
	event, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != initiatorID {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return event, nil
}

func (f *fakeRepo) Update(ctx context.Context, event *Event) (*Event, error) {
	if _, ok := f.events[event.ID]; !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, event.ID)
	}
	updated := *f.put(*event)
	return &updated, nil
}

func (f *fakeRepo) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]Event, error) {
	var result []Event
	for _, event := range f.events {
		if event.InitiatorID == initiatorID {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (f *fakeRepo) Search(ctx context.Context, params AdminSearch) ([]Event, error) {
	var result []Event
	for _, event := range f.events {
		result = append(result, *event)
	}
	return result, nil
}

func (f *fakeRepo) SearchPublished(ctx context.Context, params PublicSearch) ([]Event, error) {
	var result []Event
	for _, event := range f.events {
		if event.State == StatePublished {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func validDraft(initiatorID int64) Event {
	return Event{
		Title:       "Evening concert",
		Annotation:  "An open air concert in the park",
		Description: "A full evening of live music with local bands",
		EventDate:   time.Now().Add(48 * time.Hour),
		InitiatorID: initiatorID,
		CategoryID:  1,
	}
}

func TestCreateSetsPendingState(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, ModerationConfig{})

	created, err := service.Create(context.Background(), validDraft(7))

	require.NoError(t, err)
	require.Equal(t, StatePending, created.State)
	require.Zero(t, created.ConfirmedRequests)
	require.Nil(t, created.PublishedOn)
	require.False(t, created.CreatedOn.IsZero())
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	service := NewService(newFakeRepo(), ModerationConfig{})

	draft := validDraft(7)
	draft.Title = "   "

	_, err := service.Create(context.Background(), draft)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "title", validation.Field)
}

func TestCreateRejectsNegativeLimit(t *testing.T) {
	service := NewService(newFakeRepo(), ModerationConfig{})

	draft := validDraft(7)
	draft.ParticipantLimit = -1

	_, err := service.Create(context.Background(), draft)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "participantLimit", validation.Field)
}

func TestCreateEnforcesLeadTime(t *testing.T) {
	service := NewService(newFakeRepo(), ModerationConfig{})

	draft := validDraft(7)
	draft.EventDate = time.Now().Add(time.Hour)

	_, err := service.Create(context.Background(), draft)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "eventDate", validation.Field)
}

func TestCreateHonorsConfiguredLeadTime(t *testing.T) {
	service := NewService(newFakeRepo(), ModerationConfig{MinLeadTime: 10 * time.Minute})

	draft := validDraft(7)
	draft.EventDate = time.Now().Add(30 * time.Minute)

	_, err := service.Create(context.Background(), draft)

	require.NoError(t, err)
}

func TestGetPublishedByIDHidesUnpublished(t *testing.T) {
	repo := newFakeRepo()
	pending := repo.put(Event{Title: "draft", State: StatePending})
	service := NewService(repo, ModerationConfig{})

	_, err := service.GetPublishedByID(context.Background(), pending.ID)

	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByOwnerRefusesPublished(t *testing.T) {
	repo := newFakeRepo()
	published := repo.put(Event{Title: "live", State: StatePublished, InitiatorID: 7})
	service := NewService(repo, ModerationConfig{})

	_, err := service.UpdateByOwner(context.Background(), published.ID, 7, Patch{}, OwnerActionNone)

	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateByOwnerHidesForeignEvent(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending, InitiatorID: 7})
	service := NewService(repo, ModerationConfig{})

	_, err := service.UpdateByOwner(context.Background(), event.ID, 8, Patch{}, OwnerActionNone)

	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByOwnerCancelReview(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending, InitiatorID: 7})
	service := NewService(repo, ModerationConfig{})

	updated, err := service.UpdateByOwner(context.Background(), event.ID, 7, Patch{}, OwnerCancelReview)

	require.NoError(t, err)
	require.Equal(t, StateCanceled, updated.State)
}

func TestUpdateByOwnerResubmitsCanceled(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StateCanceled, InitiatorID: 7})
	service := NewService(repo, ModerationConfig{})

	updated, err := service.UpdateByOwner(context.Background(), event.ID, 7, Patch{}, OwnerSendToReview)

	require.NoError(t, err)
	require.Equal(t, StatePending, updated.State)
}

func TestUpdateByOwnerRevalidatesEventDate(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending, InitiatorID: 7, EventDate: time.Now().Add(72 * time.Hour)})
	service := NewService(repo, ModerationConfig{})

	tooSoon := time.Now().Add(30 * time.Minute)
	_, err := service.UpdateByOwner(context.Background(), event.ID, 7, Patch{EventDate: &tooSoon}, OwnerActionNone)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "eventDate", validation.Field)
}

func TestUpdateByOwnerAppliesPatch(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending, InitiatorID: 7, Paid: false})
	service := NewService(repo, ModerationConfig{})

	title := "renamed"
	paid := true
	updated, err := service.UpdateByOwner(context.Background(), event.ID, 7, Patch{Title: &title, Paid: &paid}, OwnerActionNone)

	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.True(t, updated.Paid)
}

func TestUpdateByAdminPublishesPending(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending, EventDate: time.Now().Add(48 * time.Hour)})
	service := NewService(repo, ModerationConfig{})

	updated, err := service.UpdateByAdmin(context.Background(), event.ID, Patch{}, AdminPublish)

	require.NoError(t, err)
	require.Equal(t, StatePublished, updated.State)
	require.NotNil(t, updated.PublishedOn)
}

func TestUpdateByAdminPublishRequiresPending(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, ModerationConfig{})

	for _, state := range []State{StatePublished, StateCanceled} {
		event := repo.put(Event{Title: "draft", State: state, EventDate: time.Now().Add(48 * time.Hour)})

		_, err := service.UpdateByAdmin(context.Background(), event.ID, Patch{}, AdminPublish)

		require.ErrorIs(t, err, ErrConflict, "state %s", state)
	}
}

func TestUpdateByAdminPublishEnforcesLeadTime(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending, EventDate: time.Now().Add(30 * time.Minute)})
	service := NewService(repo, ModerationConfig{})

	_, err := service.UpdateByAdmin(context.Background(), event.ID, Patch{}, AdminPublish)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "eventDate", validation.Field)
}

func TestUpdateByAdminPublishChecksPatchedDate(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending, EventDate: time.Now().Add(48 * time.Hour)})
	service := NewService(repo, ModerationConfig{MinLeadTime: time.Minute, MinPublishLeadTime: time.Hour})

	tooSoon := time.Now().Add(10 * time.Minute)
	_, err := service.UpdateByAdmin(context.Background(), event.ID, Patch{EventDate: &tooSoon}, AdminPublish)

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateByAdminRejectRefusesPublished(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "live", State: StatePublished})
	service := NewService(repo, ModerationConfig{})

	_, err := service.UpdateByAdmin(context.Background(), event.ID, Patch{}, AdminReject)

	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateByAdminRejectCancelsPending(t *testing.T) {
	repo := newFakeRepo()
	event := repo.put(Event{Title: "draft", State: StatePending})
	service := NewService(repo, ModerationConfig{})

	updated, err := service.UpdateByAdmin(context.Background(), event.ID, Patch{}, AdminReject)

	require.NoError(t, err)
	require.Equal(t, StateCanceled, updated.State)
}
