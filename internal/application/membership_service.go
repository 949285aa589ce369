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

// MembershipService applies administrative changes to an existing user:
// roles, status, email and credential rotation, and deletion.
type MembershipService struct {
	Repo        repo.UserRepository
	Hasher      Hasher
	Projections Projections
	Logger      *logrus.Logger
}

func NewMembershipService(r repo.UserRepository, hasher Hasher, proj Projections, logger *logrus.Logger) *MembershipService {
	return &MembershipService{Repo: r, Hasher: hasher, Projections: proj, Logger: logger}
}

func (s *MembershipService) AssignRole(ctx context.Context, id string, role entity.Role) (*UserView, error) {
	return s.mutate(ctx, id, func(u *entity.User) error { return u.AddRole(role) })
}

// RevokeRole fails with entity.ErrBaseRoleRequired for the base role.
func (s *MembershipService) RevokeRole(ctx context.Context, id string, role entity.Role) (*UserView, error) {
	return s.mutate(ctx, id, func(u *entity.User) error { return u.RemoveRole(role) })
}

func (s *MembershipService) Block(ctx context.Context, id string) (*UserView, error) {
	return s.mutate(ctx, id, func(u *entity.User) error { u.Block(); return nil })
}

func (s *MembershipService) Unblock(ctx context.Context, id string) (*UserView, error) {
	return s.mutate(ctx, id, func(u *entity.User) error { u.Unblock(); return nil })
}

// ChangeEmail checks that no other user owns the address before saving.
func (s *MembershipService) ChangeEmail(ctx context.Context, id, email string) (*UserView, error) {
	if strings.TrimSpace(email) == "" {
		return nil, &FieldError{Fields: []string{"email"}}
	}
	normalized := entity.NormalizeEmail(email)
	owner, err := s.Repo.FindByEmail(ctx, normalized)
	switch {
	case err == nil && owner != nil && owner.ID() != id:
		return nil, ErrDuplicateEmail
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, persistenceError(err)
	}
	return s.mutate(ctx, id, func(u *entity.User) error { return u.ChangeEmail(normalized) })
}

func (s *MembershipService) ChangePassword(ctx context.Context, id, password string) (*UserView, error) {
	if strings.TrimSpace(password) == "" {
		return nil, &FieldError{Fields: []string{"password"}}
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.mutate(ctx, id, func(u *entity.User) error { return u.ChangePasswordHash(hash) })
}

func (s *MembershipService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return persistenceError(err)
	}
	s.Projections.forget(ctx, id)
	s.Projections.publish(ctx, UserEvent{Type: EventUserDeleted, UserID: id, OccurredAt: time.Now().UTC()})
	if s.Logger != nil {
		s.Logger.WithField("user_id", id).Info("user deleted")
	}
	return nil
}

func (s *MembershipService) mutate(ctx context.Context, id string, change func(*entity.User) error) (*UserView, error) {
	u, err := loadUser(ctx, s.Repo, id)
	if err != nil {
		return nil, err
	}
	if err := change(u); err != nil {
		return nil, err
	}
	if _, err := s.Repo.Save(ctx, u); err != nil {
		if s.Logger != nil && !errors.Is(err, repo.ErrDuplicateEmail) && !errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithError(err).WithField("user_id", id).Error("save user failed")
		}
		return nil, saveError(err)
	}
	view := NewUserView(u)
	s.Projections.refresh(ctx, view)
	return view, nil
}
