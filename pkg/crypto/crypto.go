package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 48
)

// ErrWeakPassword is returned when a password does not meet the strength rules.
var ErrWeakPassword = errors.New("la contraseña debe tener de 8 a 48 caracteres, con mayúsculas, minúsculas y números")

// HashPassword returns a bcrypt hash of the supplied password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// CheckPasswordStrength requires at least one upper case letter, one lower
// case letter and one digit, with no whitespace.
func CheckPasswordStrength(password string) error {
	runes := []rune(password)
	if len(runes) < MinPasswordLength || len(runes) > MaxPasswordLength {
		return ErrWeakPassword
	}

	var upper, lower, digit bool
	for _, r := range runes {
		switch {
		case unicode.IsSpace(r):
			return ErrWeakPassword
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
