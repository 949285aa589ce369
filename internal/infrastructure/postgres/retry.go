package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/repository"
)

const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// RetryingUserRepository retries calls that failed before the server saw
// them, or that lost a serialization race. Lookups that found nothing and
// duplicate emails are answers, not failures, and are returned at once.
type RetryingUserRepository struct {
	next      repository.UserRepository
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	logger    *logrus.Logger
}

func NewRetryingUserRepository(next repository.UserRepository, attempts int, maxDelay time.Duration, logger *logrus.Logger) *RetryingUserRepository {
	if attempts < 1 {
		attempts = 1
	}
	if maxDelay <= 0 {
		maxDelay = 8 * time.Second
	}
	return &RetryingUserRepository{
		next:      next,
		attempts:  attempts,
		baseDelay: 100 * time.Millisecond,
		maxDelay:  maxDelay,
		logger:    logger,
	}
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDuplicateEmail) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
	}
	return pgconn.SafeToRetry(err)
}

func (r *RetryingUserRepository) do(ctx context.Context, op string, fn func() error) error {
	delay := min(r.baseDelay, r.maxDelay)
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if !Retryable(err) || attempt >= r.attempts {
			return err
		}
		if r.logger != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{"op": op, "attempt": attempt}).Warn("retrying user repository call")
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
		delay *= 2
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}
}

func (r *RetryingUserRepository) FindByEmail(ctx context.Context, email string) (u *entity.User, err error) {
	err = r.do(ctx, "find_by_email", func() error {
		u, err = r.next.FindByEmail(ctx, email)
		return err
	})
	return u, err
}

func (r *RetryingUserRepository) FindByID(ctx context.Context, id string) (u *entity.User, err error) {
	err = r.do(ctx, "find_by_id", func() error {
		u, err = r.next.FindByID(ctx, id)
		return err
	})
	return u, err
}

func (r *RetryingUserRepository) Save(ctx context.Context, u *entity.User) (id string, err error) {
	err = r.do(ctx, "save", func() error {
		id, err = r.next.Save(ctx, u)
		return err
	})
	return id, err
}

func (r *RetryingUserRepository) Delete(ctx context.Context, id string) error {
	return r.do(ctx, "delete", func() error {
		return r.next.Delete(ctx, id)
	})
}

func (r *RetryingUserRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

var _ repository.UserRepository = (*RetryingUserRepository)(nil)
