package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/repository"
)

// UserRepository keeps users in process memory. Email uniqueness is
// enforced on every write the same way the relational unique index does.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]entity.UserRecord
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]entity.UserRecord),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return entity.RehydrateUser(r.byID[id])
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return entity.RehydrateUser(rec)
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, taken := r.byEmail[u.Email()]; taken && owner != u.ID() {
		return "", repository.ErrDuplicateEmail
	}

	if !u.IsPersisted() {
		if err := u.AssignID(uuid.NewString()); err != nil {
			return "", err
		}
	} else {
		prev, ok := r.byID[u.ID()]
		if !ok {
			return "", repository.ErrNotFound
		}
		delete(r.byEmail, prev.Email)
	}

	rec := u.Record()
	r.byID[rec.ID] = rec
	r.byEmail[rec.Email] = rec.ID
	return rec.ID, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, rec.Email)
	delete(r.byID, id)
	return nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }

// Len reports how many users are stored.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

var _ repository.UserRepository = (*UserRepository)(nil)
