package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch  = errors.New("password does not match")
	ErrInvalidHashFormat = errors.New("invalid password hash format")
)

// HashPassword hashes a plaintext password with bcrypt. Costs below the
// bcrypt default are raised to it, so a misconfigured cost never weakens
// stored hashes.
func HashPassword(plaintext string, cost int) (string, error) {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt digest.
// It returns nil on match, ErrPasswordMismatch on mismatch and
// ErrInvalidHashFormat when the digest itself is unparseable.
func CheckPassword(plaintext, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return ErrInvalidHashFormat
}
