package users

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

func (s *Service) Create(ctx context.Context, user User) (*User, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)

	created, err := s.repo.Create(ctx, &user)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", created.ID).Msg("user created")
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, ids []int64, from, size int) ([]User, error) {
	return s.repo.List(ctx, ids, from, size)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
