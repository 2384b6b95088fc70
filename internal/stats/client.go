package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HitPayload is the wire form of a recorded hit.
type HitPayload struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

// Client talks to the stats server. Callers on the hot path treat its
// failures as degradation, not errors: view counts are decoration.
type Client struct {
	baseURL string
	app     string
	http    *http.Client
}

func NewClient(baseURL, app string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		app:     app,
		http:    &http.Client{Timeout: timeout},
	}
}

// RecordHit posts one page view for uri from ip.
func (c *Client) RecordHit(ctx context.Context, uri, ip string) error {
	payload := HitPayload{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode hit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post hit: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Counts returns view counts per URI accumulated since the Unix epoch.
// A URI with no recorded hits is simply absent from the map.
func (c *Client) Counts(ctx context.Context, uris []string) (map[string]int64, error) {
	query := url.Values{}
	query.Set("start", time.Unix(0, 0).UTC().Format(time.RFC3339))
	query.Set("end", time.Now().UTC().Format(time.RFC3339))
	if len(uris) > 0 {
		query.Set("uris", strings.Join(uris, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get stats: unexpected status %d", resp.StatusCode)
	}

	var counts []ViewCount
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}

	byURI := make(map[string]int64, len(counts))
	for _, count := range counts {
		byURI[count.URI] = count.Hits
	}
	return byURI, nil
}
