package service

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost of hashes already stored in the users collection.
const bcryptCost = 10

const (
	// MinPasswordLength counts characters.
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt will hash.
	MaxPasswordBytes = 72
)

func checkPasswordTooLong(pw string) error {
	if len(pw) > MaxPasswordBytes {
		return failWith(ErrBadRequest, "password_too_long", map[string]any{"Max": MaxPasswordBytes})
	}
	return nil
}

func checkNewPassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return failWith(ErrBadRequest, "password_too_short", map[string]any{"Min": MinPasswordLength})
	}
	return checkPasswordTooLong(pw)
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2")
}

// CheckPassword verifies candidate against the stored credential. Credentials
// that are not bcrypt hashes are legacy plaintext; legacy reports that case
// so the caller can upgrade the stored value.
func CheckPassword(stored, candidate string) (ok, legacy bool) {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil, false
	}
	if stored == "" {
		return false, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1, true
}
