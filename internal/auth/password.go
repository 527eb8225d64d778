package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const passwordSymbols = `!#$%&? "`

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ValidatePassword enforces the account password policy: at least 8
// characters with one letter, one digit and one symbol from passwordSymbols.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errPasswordPolicy("must be at least 8 characters")
	}

	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasLetter:
		return errPasswordPolicy("must contain at least one letter")
	case !hasDigit:
		return errPasswordPolicy("must contain at least one digit")
	case !hasSymbol:
		return errPasswordPolicy(`must contain at least one of ! # $ % & ? space "`)
	}
	return nil
}

// PasswordPolicyError marks a password that violates the policy, as opposed
// to a missing field.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return "password " + e.Reason
}

func errPasswordPolicy(reason string) error {
	return &PasswordPolicyError{Reason: reason}
}
