package helpers

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash rejects passwords longer than MaxPasswordBytes with a
// *entity.ValidationError on the password field.
func (h BcryptHasher) Hash(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", &entity.ValidationError{Field: "password", Err: bcrypt.ErrPasswordTooLong}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
