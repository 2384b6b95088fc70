package stats

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Service is the stats server's domain logic: validate and store
// hits, aggregate counts over a window.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ValidationError reports a structurally invalid hit or query field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

func (s *Service) Record(ctx context.Context, hit Hit) (*Hit, error) {
	if strings.TrimSpace(hit.App) == "" {
		return nil, ValidationError{Field: "app", Message: "must not be blank"}
	}
	if strings.TrimSpace(hit.URI) == "" {
		return nil, ValidationError{Field: "uri", Message: "must not be blank"}
	}
	if strings.TrimSpace(hit.IP) == "" {
		return nil, ValidationError{Field: "ip", Message: "must not be blank"}
	}
	if hit.Timestamp.IsZero() {
		hit.Timestamp = time.Now()
	}

	stored, err := s.repo.Insert(ctx, &hit)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("uri", stored.URI).Msg("hit recorded")
	return stored, nil
}

func (s *Service) Count(ctx context.Context, params CountParams) ([]ViewCount, error) {
	if params.End.Before(params.Start) {
		return nil, ValidationError{Field: "end", Message: "must be on or after start"}
	}
	return s.repo.Count(ctx, params)
}
