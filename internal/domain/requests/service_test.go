package requests

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katesim/explore-events/internal/domain/events"
)

type fakeEventRepo struct {
	events map[int64]*events.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, event *events.Event) (*events.Event, error) {
	stored := *event
	f.events[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", events.ErrNotFound, id)
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id int64) (*events.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*events.Event, error) {
	event, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != initiatorID {
		return nil, fmt.Errorf("%w: id=%d", events.ErrNotFound, id)
	}
	return event, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *events.Event) (*events.Event, error) {
	stored := *event
	f.events[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]events.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) Search(ctx context.Context, params events.AdminSearch) ([]events.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) SearchPublished(ctx context.Context, params events.PublicSearch) ([]events.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) WithTx(ctx context.Context, fn func(context.Context, events.Repository) error) error {
	return fn(ctx, f)
}

type fakeRequestRepo struct {
	store    *fakeStore
	requests map[int64]*Request
	nextID   int64
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *Request) (*Request, error) {
	f.nextID++
	stored := *request
	stored.ID = f.nextID
	f.requests[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*Request, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, notFound(id)
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, request *Request) (*Request, error) {
	if _, ok := f.requests[request.ID]; !ok {
		return nil, notFound(request.ID)
	}
	stored := *request
	f.requests[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRequestRepo) UpdateAll(ctx context.Context, batch []Request) error {
	for i := range batch {
		if _, err := f.Update(ctx, &batch[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]Request, error) {
	var result []Request
	for id := int64(1); id <= f.nextID; id++ {
		request, ok := f.requests[id]
		if ok && request.RequesterID == requesterID {
			result = append(result, *request)
		}
	}
	return result, nil
}

func (f *fakeRequestRepo) Find(ctx context.Context, filter Filter) ([]Request, error) {
	var result []Request
	for id := int64(1); id <= f.nextID; id++ {
		request, ok := f.requests[id]
		if !ok {
			continue
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, request.ID) {
			continue
		}
		if filter.EventID != 0 && request.EventID != filter.EventID {
			continue
		}
		if filter.InitiatorID != 0 {
			event, ok := f.store.events.events[request.EventID]
			if !ok || event.InitiatorID != filter.InitiatorID {
				continue
			}
		}
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		result = append(result, *request)
	}
	return result, nil
}

type fakeStore struct {
	events   *fakeEventRepo
	requests *fakeRequestRepo
}

func newFakeStore() *fakeStore {
	store := &fakeStore{
		events: &fakeEventRepo{events: make(map[int64]*events.Event)},
	}
	store.requests = &fakeRequestRepo{store: store, requests: make(map[int64]*Request)}
	return store
}

func (f *fakeStore) Events() events.Repository { return f.events }

func (f *fakeStore) Requests() Repository { return f.requests }

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, Store) error) error {
	return fn(ctx, f)
}

func (f *fakeStore) addEvent(event events.Event) *events.Event {
	stored := event
	f.events.events[stored.ID] = &stored
	return f.events.events[stored.ID]
}

func (f *fakeStore) addRequest(request Request) *Request {
	f.requests.nextID++
	stored := request
	stored.ID = f.requests.nextID
	f.requests.requests[stored.ID] = &stored
	return &stored
}

func publishedEvent(id, initiatorID int64, limit int, moderation bool) events.Event {
	return events.Event{
		ID:                id,
		Title:             "meetup",
		State:             events.StatePublished,
		EventDate:         time.Now().Add(24 * time.Hour),
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		InitiatorID:       initiatorID,
	}
}

func TestCreateRequiresPublishedEvent(t *testing.T) {
	store := newFakeStore()
	event := publishedEvent(1, 10, 0, true)
	event.State = events.StatePending
	store.addEvent(event)
	service := NewService(store)

	_, err := service.Create(context.Background(), 1, 20)

	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateRejectsInitiator(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 0, true))
	service := NewService(store)

	_, err := service.Create(context.Background(), 1, 10)

	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateRejectsFullEvent(t *testing.T) {
	store := newFakeStore()
	event := publishedEvent(1, 10, 2, true)
	event.ConfirmedRequests = 2
	store.addEvent(event)
	service := NewService(store)

	_, err := service.Create(context.Background(), 1, 20)

	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreatePendingWhenModerated(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, true))
	service := NewService(store)

	created, err := service.Create(context.Background(), 1, 20)

	require.NoError(t, err)
	require.Equal(t, StatusPending, created.Status)
	require.Zero(t, store.events.events[1].ConfirmedRequests)
}

func TestCreateAutoConfirmsWithoutModeration(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, false))
	service := NewService(store)

	created, err := service.Create(context.Background(), 1, 20)

	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, created.Status)
	require.Equal(t, 1, store.events.events[1].ConfirmedRequests)
}

func TestCreateUnlimitedEventNeverFills(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 0, false))
	service := NewService(store)

	for requester := int64(20); requester < 25; requester++ {
		created, err := service.Create(context.Background(), 1, requester)
		require.NoError(t, err)
		require.Equal(t, StatusConfirmed, created.Status)
	}
	require.Equal(t, 5, store.events.events[1].ConfirmedRequests)
}

func TestCancelOwnPendingRequest(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, true))
	request := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	service := NewService(store)

	canceled, err := service.Cancel(context.Background(), request.ID, 20)

	require.NoError(t, err)
	require.Equal(t, StatusCanceled, canceled.Status)
}

func TestCancelIsIdempotent(t *testing.T) {
	store := newFakeStore()
	request := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusCanceled})
	service := NewService(store)

	canceled, err := service.Cancel(context.Background(), request.ID, 20)

	require.NoError(t, err)
	require.Equal(t, StatusCanceled, canceled.Status)
}

func TestCancelRefusesTerminalStatuses(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)

	for _, status := range []Status{StatusConfirmed, StatusRejected} {
		request := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: status})

		_, err := service.Cancel(context.Background(), request.ID, 20)

		require.ErrorIs(t, err, ErrConflict, "status %s", status)
	}
}

func TestCancelForeignRequestReportsAbsent(t *testing.T) {
	store := newFakeStore()
	request := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	service := NewService(store)

	_, err := service.Cancel(context.Background(), request.ID, 21)

	require.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmMovesPendingToConfirmed(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	b := store.addRequest(Request{EventID: 1, RequesterID: 21, Status: StatusPending})
	service := NewService(store)

	confirmed, err := service.Confirm(context.Background(), []int64{a.ID, b.ID}, 1, 10)

	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	require.Equal(t, 2, store.events.events[1].ConfirmedRequests)
	require.Equal(t, StatusConfirmed, store.requests.requests[a.ID].Status)
	require.Equal(t, StatusConfirmed, store.requests.requests[b.ID].Status)
}

func TestConfirmAutoRejectsRemainingWhenFull(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 2, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	b := store.addRequest(Request{EventID: 1, RequesterID: 21, Status: StatusPending})
	c := store.addRequest(Request{EventID: 1, RequesterID: 22, Status: StatusPending})
	service := NewService(store)

	confirmed, err := service.Confirm(context.Background(), []int64{a.ID, b.ID}, 1, 10)

	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	require.Equal(t, StatusConfirmed, store.requests.requests[a.ID].Status)
	require.Equal(t, StatusConfirmed, store.requests.requests[b.ID].Status)
	require.Equal(t, StatusRejected, store.requests.requests[c.ID].Status)
}

func TestConfirmBeyondCapacityFails(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 1, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	b := store.addRequest(Request{EventID: 1, RequesterID: 21, Status: StatusPending})
	service := NewService(store)

	_, err := service.Confirm(context.Background(), []int64{a.ID, b.ID}, 1, 10)

	require.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmWithoutModerationGateReturnsUntouched(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 0, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	service := NewService(store)

	result, err := service.Confirm(context.Background(), []int64{a.ID}, 1, 10)

	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, StatusPending, result[0].Status)
	require.Equal(t, StatusPending, store.requests.requests[a.ID].Status)
}

func TestConfirmRefusesNonPendingTarget(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusCanceled})
	service := NewService(store)

	_, err := service.Confirm(context.Background(), []int64{a.ID}, 1, 10)

	require.ErrorIs(t, err, ErrConflict)
}

func TestConfirmScopesToInitiator(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	service := NewService(store)

	confirmed, err := service.Confirm(context.Background(), []int64{a.ID}, 1, 99)

	require.NoError(t, err)
	require.Empty(t, confirmed)
	require.Equal(t, StatusPending, store.requests.requests[a.ID].Status)
}

func TestRejectMovesPendingToRejected(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusPending})
	service := NewService(store)

	rejected, err := service.Reject(context.Background(), []int64{a.ID}, 1, 10)

	require.NoError(t, err)
	require.Len(t, rejected, 1)
	require.Equal(t, StatusRejected, store.requests.requests[a.ID].Status)
}

func TestRejectRefusesNonPendingTarget(t *testing.T) {
	store := newFakeStore()
	store.addEvent(publishedEvent(1, 10, 5, true))
	a := store.addRequest(Request{EventID: 1, RequesterID: 20, Status: StatusConfirmed})
	service := NewService(store)

	_, err := service.Reject(context.Background(), []int64{a.ID}, 1, 10)

	require.ErrorIs(t, err, ErrConflict)
}

func TestStatusTerminal(t *testing.T) {
	require.False(t, StatusPending.Terminal())
	require.True(t, StatusConfirmed.Terminal())
	require.True(t, StatusRejected.Terminal())
	require.True(t, StatusCanceled.Terminal())
}
