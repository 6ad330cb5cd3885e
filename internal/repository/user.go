package repository

import (
	"context"
	"errors"

	"takasafi/internal/domain"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when inserting a user whose email is already registered.
	// The users table carries a unique index on email; concurrent registrations
	// racing past the existence check are rejected by the store with this error.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
