package auth

import (
	"errors"
	"unicode"

	"github.com/alexedwards/argon2id"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters")
	ErrPasswordTooWeak  = errors.New("password must contain an uppercase letter, a lowercase letter, a digit and a special character")
)

// HashPassword produces a salted argon2id digest of the plaintext.
// The plaintext itself never leaves this package.
func HashPassword(plaintext string) (string, error) {
	return argon2id.CreateHash(plaintext, argon2id.DefaultParams)
}

// VerifyPassword reports whether the plaintext matches the stored digest.
func VerifyPassword(plaintext, digest string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plaintext, digest)
}

// CheckPasswordPolicy enforces the registration password policy:
// 8 to 72 characters with at least one uppercase letter, one lowercase
// letter, one digit and one special character.
func CheckPasswordPolicy(plaintext string) error {
	runes := []rune(plaintext)
	if len(runes) < 8 {
		return ErrPasswordTooShort
	}
	if len(runes) > 72 {
		return ErrPasswordTooLong
	}

	var upper, lower, digit, special bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return ErrPasswordTooWeak
	}
	return nil
}
