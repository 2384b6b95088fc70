package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordHitPostsPayload(t *testing.T) {
	var received HitPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "explore-events", time.Second)

	err := client.RecordHit(context.Background(), "/events/42", "192.0.2.10")

	require.NoError(t, err)
	require.Equal(t, "explore-events", received.App)
	require.Equal(t, "/events/42", received.URI)
	require.Equal(t, "192.0.2.10", received.IP)
	require.NotEmpty(t, received.Timestamp)
}

func TestRecordHitRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "explore-events", time.Second)

	err := client.RecordHit(context.Background(), "/events/42", "192.0.2.10")

	require.Error(t, err)
}

func TestCountsMapsByURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		require.Equal(t, "/events/1,/events/2", r.URL.Query().Get("uris"))
		require.NotEmpty(t, r.URL.Query().Get("start"))
		require.NotEmpty(t, r.URL.Query().Get("end"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]ViewCount{
			{App: "explore-events", URI: "/events/1", Hits: 5},
			{App: "explore-events", URI: "/events/2", Hits: 2},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "explore-events", time.Second)

	counts, err := client.Counts(context.Background(), []string{"/events/1", "/events/2"})

	require.NoError(t, err)
	require.Equal(t, int64(5), counts["/events/1"])
	require.Equal(t, int64(2), counts["/events/2"])
	require.Zero(t, counts["/events/3"])
}

func TestCountsUnreachableServer(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "explore-events", 100*time.Millisecond)

	_, err := client.Counts(context.Background(), []string{"/events/1"})

	require.Error(t, err)
}
