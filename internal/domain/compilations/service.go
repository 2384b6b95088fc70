package compilations

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, compilation Compilation) (*Compilation, error) {
	compilation.Title = strings.TrimSpace(compilation.Title)
	created, err := s.repo.Create(ctx, &compilation)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int64("compilation_id", created.ID).Msg("compilation created")
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Compilation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, pinned *bool, from, size int) ([]Compilation, error) {
	return s.repo.List(ctx, pinned, from, size)
}

// Update applies the supplied patch fields. A nil EventIDs slice keeps
// the current event set; an empty non-nil slice clears it.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*Compilation, error) {
	compilation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil && *patch.Title != compilation.Title {
		compilation.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Pinned != nil {
		compilation.Pinned = *patch.Pinned
	}
	if patch.EventIDs != nil {
		compilation.EventIDs = patch.EventIDs
	}
	return s.repo.Update(ctx, compilation)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("compilation_id", id).Msg("compilation deleted")
	return nil
}
