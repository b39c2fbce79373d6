// Package validation contains input validation helpers for account fields.
package validation

import (
	"errors"
	"net/mail"
	"strings"
)

const (
	maxUsernameLen = 80
	maxEmailLen    = 120
)

// ValidateUsername checks that a username is non-empty, within length limits
// and made of letters, digits, underscores, dots or dashes.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) > maxUsernameLen {
		return errors.New("username too long (max 80 characters)")
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			return errors.New("username may only contain letters, digits, '_', '.' and '-'")
		}
	}
	return nil
}

// ValidateEmail checks that an email address parses and is within length limits.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLen {
		return errors.New("email too long (max 120 characters)")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return errors.New("invalid email address")
	}
	return nil
}
