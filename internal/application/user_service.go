package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	repo "github.com/oksasatya/mexyapp-accounts/internal/domain/repository"
)

var (
	ErrMissingField   = errors.New("missing required field")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
	ErrPersistence    = errors.New("persistence failure")
)

// FieldError lists the raw inputs that were empty or whitespace-only.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return ErrMissingField.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *FieldError) Unwrap() error { return ErrMissingField }

// Hasher turns a plaintext password into an opaque one-way hash.
type Hasher interface {
	Hash(plain string) (string, error)
}

// ViewCache is a read-through cache of projected users.
type ViewCache interface {
	GetOrLoad(ctx context.Context, id string, load func(ctx context.Context) (*UserView, error)) (*UserView, error)
	Set(ctx context.Context, v *UserView)
	Delete(ctx context.Context, id string)
}

// SearchIndex keeps a searchable copy of user views.
type SearchIndex interface {
	Index(ctx context.Context, v *UserView) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]UserView, error)
}

// EventPublisher ships user lifecycle events to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, body any) error
}

const (
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
)

// UserEvent is the payload put on the user events queue.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Projections groups the optional, best-effort collaborators refreshed after
// every successful write. Any of them may be nil.
type Projections struct {
	Cache  ViewCache
	Index  SearchIndex
	Events EventPublisher
	Logger *logrus.Logger
}

func (p Projections) warn(err error, userID, msg string) {
	if p.Logger != nil {
		p.Logger.WithError(err).WithField("user_id", userID).Warn(msg)
	}
}

func (p Projections) refresh(ctx context.Context, v *UserView) {
	if p.Cache != nil {
		p.Cache.Set(ctx, v)
	}
	if p.Index != nil {
		if err := p.Index.Index(ctx, v); err != nil {
			p.warn(err, v.ID, "search index failed")
		}
	}
}

func (p Projections) forget(ctx context.Context, id string) {
	if p.Cache != nil {
		p.Cache.Delete(ctx, id)
	}
	if p.Index != nil {
		if err := p.Index.Delete(ctx, id); err != nil {
			p.warn(err, id, "search index delete failed")
		}
	}
}

func (p Projections) publish(ctx context.Context, ev UserEvent) {
	if p.Events == nil {
		return
	}
	if err := p.Events.Publish(ctx, ev.Type, ev); err != nil {
		p.warn(err, ev.UserID, "publish "+ev.Type+" failed")
	}
}

// persistenceError keeps the repository cause in the chain for logging.
func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// saveError maps a repository Save failure to the caller-visible kind.
// ErrNotFound means the user was deleted after it was loaded.
func saveError(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	}
	return persistenceError(err)
}

func loadUser(ctx context.Context, r repo.UserRepository, id string) (*entity.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistenceError(err)
	}
	return u, nil
}
