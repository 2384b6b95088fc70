package compilations

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("compilation not found")

// Compilation is a curated set of events, optionally pinned to the
// top of public listings.
type Compilation struct {
	ID       int64
	Title    string
	Pinned   bool
	EventIDs []int64
}

// Patch carries a partial compilation update; nil means "no change".
type Patch struct {
	Title    *string
	Pinned   *bool
	EventIDs []int64
}

type Repository interface {
	Create(ctx context.Context, compilation *Compilation) (*Compilation, error)
	GetByID(ctx context.Context, id int64) (*Compilation, error)
	Update(ctx context.Context, compilation *Compilation) (*Compilation, error)
	List(ctx context.Context, pinned *bool, from, size int) ([]Compilation, error)
	Delete(ctx context.Context, id int64) error
}
