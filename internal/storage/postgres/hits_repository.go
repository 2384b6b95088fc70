package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katesim/explore-events/internal/stats"
)

var _ stats.Repository = (*HitRepository)(nil)

// HitRepository stores page-view hits for the stats service. Hits are
// append-only, so it runs straight against the pool with no tx mode.
type HitRepository struct {
	pool *pgxpool.Pool
}

func NewHitRepository(pool *pgxpool.Pool) *HitRepository {
	return &HitRepository{pool: pool}
}

func (r *HitRepository) Insert(ctx context.Context, hit *stats.Hit) (*stats.Hit, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO hits (app, uri, ip, ts)
VALUES ($1, $2, $3, $4)
RETURNING id, app, uri, ip, ts`,
		hit.App, hit.URI, hit.IP, hit.Timestamp,
	)
	var created stats.Hit
	if err := row.Scan(&created.ID, &created.App, &created.URI, &created.IP, &created.Timestamp); err != nil {
		return nil, fmt.Errorf("insert hit: %w", err)
	}
	return &created, nil
}

// Count aggregates hits per app/uri inside the window, most viewed
// first. Unique counts distinct client IPs instead of raw hits.
func (r *HitRepository) Count(ctx context.Context, params stats.CountParams) ([]stats.ViewCount, error) {
	counter := "count(*)"
	if params.Unique {
		counter = "count(DISTINCT ip)"
	}

	rows, err := r.pool.Query(ctx, `
SELECT app, uri, `+counter+` AS hits
  FROM hits
 WHERE ts >= $1 AND ts <= $2
   AND (coalesce(cardinality($3::text[]), 0) = 0 OR uri = ANY($3::text[]))
 GROUP BY app, uri
 ORDER BY hits DESC, app, uri`,
		params.Start, params.End, params.URIs,
	)
	if err != nil {
		return nil, fmt.Errorf("count hits: %w", err)
	}
	defer rows.Close()

	var result []stats.ViewCount
	for rows.Next() {
		var count stats.ViewCount
		if err := rows.Scan(&count.App, &count.URI, &count.Hits); err != nil {
			return nil, fmt.Errorf("scan view count: %w", err)
		}
		result = append(result, count)
	}
	return result, rows.Err()
}
