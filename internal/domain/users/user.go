package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("user email already registered")
)

type User struct {
	ID    int64
	Name  string
	Email string
}

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// List returns the users with the given ids, or a page of all
	// users when ids is empty.
	List(ctx context.Context, ids []int64, from, size int) ([]User, error)
	Delete(ctx context.Context, id int64) error
}
