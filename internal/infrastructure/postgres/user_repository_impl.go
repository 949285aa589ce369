package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
	"github.com/oksasatya/mexyapp-accounts/internal/domain/repository"
)

const uniqueViolation = "23505"

const selectUser = `
	SELECT u.id::text, u.username, u.email, u.password_hash, u.status,
	       COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_roles r ON r.user_id = u.id
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`
		WHERE u.email = $1
		GROUP BY u.id
	`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	// ids are uuids; anything else can never match a row
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, selectUser+`
		WHERE u.id = $1
		GROUP BY u.id
	`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var rec entity.UserRecord
	if err := row.Scan(&rec.ID, &rec.Username, &rec.Email, &rec.PasswordHash, &rec.Status, &rec.Roles); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return entity.RehydrateUser(rec)
}

// Save writes the user row and replaces its role rows in one transaction.
// The id is handed to the aggregate only after the commit succeeds.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (string, error) {
	rec := u.Record()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := rec.ID
	if !u.IsPersisted() {
		err = tx.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id::text
		`, rec.Username, rec.Email, rec.PasswordHash, rec.Status).Scan(&id)
		if err != nil {
			return "", mapWriteError(err)
		}
	} else {
		res, err := tx.Exec(ctx, `
			UPDATE users
			SET username = $1, email = $2, password_hash = $3, status = $4, updated_at = now()
			WHERE id = $5
		`, rec.Username, rec.Email, rec.PasswordHash, rec.Status, id)
		if err != nil {
			return "", mapWriteError(err)
		}
		if res.RowsAffected() == 0 {
			return "", repository.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return "", err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role)
		SELECT $1::uuid, unnest($2::text[])
	`, id, rec.Roles); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", mapWriteError(err)
	}

	if !u.IsPersisted() {
		if err := u.AssignID(id); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateEmail, pgErr.ConstraintName)
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
