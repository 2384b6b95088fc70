package categories

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("category not found")
	ErrNameExists = errors.New("category name already exists")
	// ErrInUse is returned when deleting a category that still has
	// events attached.
	ErrInUse = errors.New("category has attached events")
)

type Category struct {
	ID   int64
	Name string
}

type Repository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	List(ctx context.Context, from, size int) ([]Category, error)
	Delete(ctx context.Context, id int64) error
}
