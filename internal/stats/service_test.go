package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeHitRepo struct {
	hits   []Hit
	counts []ViewCount
	params CountParams
}

func (f *fakeHitRepo) Insert(ctx context.Context, hit *Hit) (*Hit, error) {
	stored := *hit
	stored.ID = int64(len(f.hits) + 1)
	f.hits = append(f.hits, stored)
	return &stored, nil
}

func (f *fakeHitRepo) Count(ctx context.Context, params CountParams) ([]ViewCount, error) {
	f.params = params
	return f.counts, nil
}

func TestRecordStoresHit(t *testing.T) {
	repo := &fakeHitRepo{}
	service := NewService(repo)

	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stored, err := service.Record(context.Background(), Hit{
		App:       "explore-events",
		URI:       "/events/1",
		IP:        "192.0.2.10",
		Timestamp: when,
	})

	require.NoError(t, err)
	require.Equal(t, int64(1), stored.ID)
	require.True(t, when.Equal(stored.Timestamp))
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	repo := &fakeHitRepo{}
	service := NewService(repo)

	stored, err := service.Record(context.Background(), Hit{
		App: "explore-events",
		URI: "/events/1",
		IP:  "192.0.2.10",
	})

	require.NoError(t, err)
	require.False(t, stored.Timestamp.IsZero())
}

func TestRecordRejectsBlankFields(t *testing.T) {
	service := NewService(&fakeHitRepo{})

	cases := []struct {
		name string
		hit  Hit
	}{
		{"app", Hit{URI: "/events/1", IP: "192.0.2.10"}},
		{"uri", Hit{App: "explore-events", IP: "192.0.2.10"}},
		{"ip", Hit{App: "explore-events", URI: "/events/1"}},
	}

	for _, tc := range cases {
		_, err := service.Record(context.Background(), tc.hit)

		var validation ValidationError
		require.ErrorAs(t, err, &validation)
		require.Equal(t, tc.name, validation.Field)
	}
}

func TestCountRejectsInvertedWindow(t *testing.T) {
	service := NewService(&fakeHitRepo{})

	_, err := service.Count(context.Background(), CountParams{
		Start: time.Now(),
		End:   time.Now().Add(-time.Hour),
	})

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "end", validation.Field)
}

func TestCountPassesParamsThrough(t *testing.T) {
	repo := &fakeHitRepo{counts: []ViewCount{{App: "explore-events", URI: "/events/1", Hits: 3}}}
	service := NewService(repo)

	counts, err := service.Count(context.Background(), CountParams{
		Start:  time.Unix(0, 0),
		End:    time.Now(),
		URIs:   []string{"/events/1"},
		Unique: true,
	})

	require.NoError(t, err)
	require.Len(t, counts, 1)
	require.True(t, repo.params.Unique)
	require.Equal(t, []string{"/events/1"}, repo.params.URIs)
}
