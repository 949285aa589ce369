package entity

import "fmt"

// Status is the account state of a User.
type Status string

const (
	StatusActive  Status = "Active"
	StatusBlocked Status = "Blocked"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusBlocked
}

func (s Status) String() string { return string(s) }

// ParseStatus maps a symbolic name to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}
