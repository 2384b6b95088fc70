package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katesim/explore-events/internal/stats"
)

type fakeHitRepo struct {
	hits   []stats.Hit
	counts []stats.ViewCount
}

func (f *fakeHitRepo) Insert(ctx context.Context, hit *stats.Hit) (*stats.Hit, error) {
	stored := *hit
	stored.ID = int64(len(f.hits) + 1)
	f.hits = append(f.hits, stored)
	return &stored, nil
}

func (f *fakeHitRepo) Count(ctx context.Context, params stats.CountParams) ([]stats.ViewCount, error) {
	return f.counts, nil
}

func newStatsHandler(repo *fakeHitRepo) *StatsHandler {
	return NewStatsHandler(stats.NewService(repo), "test")
}

func TestRecordHitCreated(t *testing.T) {
	repo := &fakeHitRepo{}
	handler := newStatsHandler(repo)

	body := `{"app":"explore-events","uri":"/events/1","ip":"192.0.2.10","timestamp":"2026-08-01T12:00:00Z"}`
	r := httptest.NewRequest(http.MethodPost, "/hit", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.RecordHit(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.hits, 1)
	require.Equal(t, "/events/1", repo.hits[0].URI)
}

func TestRecordHitRejectsMissingFields(t *testing.T) {
	handler := newStatsHandler(&fakeHitRepo{})

	r := httptest.NewRequest(http.MethodPost, "/hit", strings.NewReader(`{"uri":"/events/1"}`))
	w := httptest.NewRecorder()

	handler.RecordHit(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRecordHitRejectsBadTimestamp(t *testing.T) {
	handler := newStatsHandler(&fakeHitRepo{})

	body := `{"app":"explore-events","uri":"/events/1","ip":"192.0.2.10","timestamp":"yesterday"}`
	r := httptest.NewRequest(http.MethodPost, "/hit", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.RecordHit(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCountsRequiresWindow(t *testing.T) {
	handler := newStatsHandler(&fakeHitRepo{})

	r := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()

	handler.Counts(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCountsReturnsAggregates(t *testing.T) {
	repo := &fakeHitRepo{counts: []stats.ViewCount{{App: "explore-events", URI: "/events/1", Hits: 4}}}
	handler := newStatsHandler(repo)

	r := httptest.NewRequest(http.MethodGet,
		"/stats?start=2026-01-01T00:00:00Z&end=2026-12-31T00:00:00Z&uris=/events/1&unique=true", nil)
	w := httptest.NewRecorder()

	handler.Counts(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var counts []stats.ViewCount
	require.NoError(t, json.NewDecoder(w.Body).Decode(&counts))
	require.Len(t, counts, 1)
	require.Equal(t, int64(4), counts[0].Hits)
}

func TestCountsEmptyResultIsArray(t *testing.T) {
	handler := newStatsHandler(&fakeHitRepo{})

	r := httptest.NewRequest(http.MethodGet,
		"/stats?start=2026-01-01T00:00:00Z&end=2026-12-31T00:00:00Z", nil)
	w := httptest.NewRecorder()

	handler.Counts(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]\n", w.Body.String())
}
