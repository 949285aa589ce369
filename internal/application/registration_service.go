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

type RegistrationService struct {
	Repo        repo.UserRepository
	Hasher      Hasher
	Projections Projections
	Logger      *logrus.Logger
}

func NewRegistrationService(r repo.UserRepository, hasher Hasher, proj Projections, logger *logrus.Logger) *RegistrationService {
	return &RegistrationService{Repo: r, Hasher: hasher, Projections: proj, Logger: logger}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user holding the base role.
// The pre-check on email is advisory; the storage unique constraint decides
// when two registrations race, and both paths surface as ErrDuplicateEmail.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	if err := requireFields(in); err != nil {
		return nil, err
	}

	email := entity.NormalizeEmail(in.Email)
	existing, err := s.Repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateEmail
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		s.logError(err, email, "lookup by email failed")
		return nil, persistenceError(err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := entity.NewUser(in.Username, email, hash)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.Save(ctx, u); err != nil {
		if !errors.Is(err, repo.ErrDuplicateEmail) {
			s.logError(err, email, "save user failed")
		}
		return nil, saveError(err)
	}

	view := NewUserView(u)
	s.Projections.refresh(ctx, view)
	s.Projections.publish(ctx, UserEvent{
		Type:       EventUserRegistered,
		UserID:     view.ID,
		Username:   view.Username,
		Email:      view.Email,
		OccurredAt: time.Now().UTC(),
	})
	if s.Logger != nil {
		s.Logger.WithField("user_id", view.ID).Info("user registered")
	}
	return view, nil
}

func requireFields(in RegisterInput) error {
	var missing []string
	if strings.TrimSpace(in.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Password) == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &FieldError{Fields: missing}
	}
	return nil
}

func (s *RegistrationService) logError(err error, email, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("email", email).Error(msg)
	}
}
