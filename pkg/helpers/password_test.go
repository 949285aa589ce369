package helpers

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/mexyapp-accounts/internal/domain/entity"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
	other, _ := h.Hash("secret123")
	if other == hash {
		t.Errorf("expected salted hashes to differ")
	}
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	if got := NewBcryptHasher(0).Cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want default", got)
	}
	if got := NewBcryptHasher(99).Cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want default", got)
	}
	if got := NewBcryptHasher(12).Cost; got != 12 {
		t.Errorf("cost = %d, want 12", got)
	}
}

func TestBcryptHasher_LengthIsCountedInBytes(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("é", 36)); err != nil {
		t.Fatalf("72-byte password: %v", err)
	}

	_, err := h.Hash(strings.Repeat("é", 72))
	var invalid *entity.ValidationError
	if !errors.As(err, &invalid) || invalid.Field != "password" {
		t.Fatalf("expected a password ValidationError, got %v", err)
	}
	if !errors.Is(err, bcrypt.ErrPasswordTooLong) {
		t.Errorf("expected bcrypt.ErrPasswordTooLong in chain, got %v", err)
	}
}
