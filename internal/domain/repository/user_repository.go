package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the storage unique constraint on email rejects a write.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository loads and stores User aggregates, roles included.
type UserRepository interface {
	// FindByEmail expects an already normalized email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// Save inserts a user without an id (and assigns one) or updates an existing one.
	// The role set is replaced as a whole.
	Save(ctx context.Context, u *entity.User) (string, error)
	// Delete removes the user and, by cascade, its roles.
	Delete(ctx context.Context, id string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
