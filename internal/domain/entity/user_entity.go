package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyField        = errors.New("field must not be empty")
	ErrUnknownRole       = errors.New("unknown role")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrBaseRoleRequired  = errors.New("base role cannot be removed")
	ErrIDAlreadyAssigned = errors.New("user id already assigned")
	ErrCorruptRecord     = errors.New("corrupt user record")
)

// ValidationError reports which field broke an aggregate invariant.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// User is the aggregate root for the account domain.
// Fields are only reachable through its methods so every invariant is
// checked on the way in; the role set is never handed out directly.
type User struct {
	id           string
	username     string
	email        string
	passwordHash string
	status       Status
	roles        roleSet
}

// NewUser builds a validated, not yet persisted user holding only the base role.
func NewUser(username, email, passwordHash string) (*User, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	mail, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := requireHash(passwordHash)
	if err != nil {
		return nil, err
	}
	return &User{
		username:     name,
		email:        mail,
		passwordHash: hash,
		status:       StatusActive,
		roles:        newRoleSet(BaseRole),
	}, nil
}

// UserRecord is the flat persisted shape of a User.
type UserRecord struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Status       string
	Roles        []string
}

// RehydrateUser rebuilds a user previously written by a repository.
// Intended for persistence adapters only: field values are trusted, but
// symbolic names are checked so a tampered row never yields a bogus enum.
func RehydrateUser(rec UserRecord) (*User, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrCorruptRecord)
	}
	st, err := ParseStatus(rec.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s: %v", ErrCorruptRecord, rec.ID, err)
	}
	roles := newRoleSet(BaseRole)
	for _, name := range rec.Roles {
		r, err := ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("%w: user %s: %v", ErrCorruptRecord, rec.ID, err)
		}
		roles[r] = struct{}{}
	}
	return &User{
		id:           rec.ID,
		username:     rec.Username,
		email:        rec.Email,
		passwordHash: rec.PasswordHash,
		status:       st,
		roles:        roles,
	}, nil
}

// Record flattens the user for persistence. Roles are sorted.
func (u *User) Record() UserRecord {
	roles := u.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return UserRecord{
		ID:           u.id,
		Username:     u.username,
		Email:        u.email,
		PasswordHash: u.passwordHash,
		Status:       u.status.String(),
		Roles:        names,
	}
}

func (u *User) ID() string           { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Status() Status       { return u.status }
func (u *User) IsPersisted() bool    { return u.id != "" }

// AssignID is called by the repository on first persistence.
func (u *User) AssignID(id string) error {
	if u.id != "" {
		return ErrIDAlreadyAssigned
	}
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Err: ErrEmptyField}
	}
	u.id = id
	return nil
}

// Roles returns a sorted copy of the role set.
func (u *User) Roles() []Role {
	return u.roles.sorted()
}

func (u *User) HasRole(role Role) bool {
	return u.roles.has(role)
}

// AddRole is a no-op when the role is already held.
func (u *User) AddRole(role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
	}
	u.roles[role] = struct{}{}
	return nil
}

// RemoveRole is a no-op when the role is not held. The base role is
// never removed: asking for it fails with ErrBaseRoleRequired.
func (u *User) RemoveRole(role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
	}
	if role == BaseRole {
		return ErrBaseRoleRequired
	}
	delete(u.roles, role)
	return nil
}

// ChangeEmail does not check uniqueness; that needs the repository.
func (u *User) ChangeEmail(newEmail string) error {
	mail, err := normalizeEmail(newEmail)
	if err != nil {
		return err
	}
	u.email = mail
	return nil
}

func (u *User) ChangePasswordHash(newHash string) error {
	hash, err := requireHash(newHash)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	return nil
}

func (u *User) Block()   { u.status = StatusBlocked }
func (u *User) Unblock() { u.status = StatusActive }

// NormalizeEmail trims and lower-cases an address. It is idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUsername(username string) (string, error) {
	v := strings.TrimSpace(username)
	if v == "" {
		return "", &ValidationError{Field: "username", Err: ErrEmptyField}
	}
	return v, nil
}

func normalizeEmail(email string) (string, error) {
	v := NormalizeEmail(email)
	if v == "" {
		return "", &ValidationError{Field: "email", Err: ErrEmptyField}
	}
	return v, nil
}

func requireHash(hash string) (string, error) {
	if strings.TrimSpace(hash) == "" {
		return "", &ValidationError{Field: "password_hash", Err: ErrEmptyField}
	}
	return hash, nil
}
