// Package stats implements the page-view hit collaborator: the
// recording/aggregation service served by cmd/stats and the HTTP
// client the main server uses to consume it.
package stats

import (
	"context"
	"time"
)

// Hit is one recorded page view.
type Hit struct {
	ID        int64
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

// ViewCount is the aggregated number of hits for one URI of one app.
type ViewCount struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// CountParams selects hits for aggregation. An empty URI list means
// all URIs; Unique counts distinct IPs instead of raw hits.
type CountParams struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

type Repository interface {
	Insert(ctx context.Context, hit *Hit) (*Hit, error)
	Count(ctx context.Context, params CountParams) ([]ViewCount, error)
}
