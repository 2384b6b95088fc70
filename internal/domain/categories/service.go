package categories

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

func (s *Service) Create(ctx context.Context, category Category) (*Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	created, err := s.repo.Create(ctx, &category)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int64("category_id", created.ID).Str("name", created.Name).Msg("category created")
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, from, size int) ([]Category, error) {
	return s.repo.List(ctx, from, size)
}

func (s *Service) Rename(ctx context.Context, id int64, name string) (*Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(name)
	return s.repo.Update(ctx, category)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("category_id", id).Msg("category deleted")
	return nil
}
