package auth

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Input limits. Lengths are counted in characters, not bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxEmailLength    = 254
	MaxPhoneLength    = 20
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+\d\s()-]+$`)
)

// ValidationError describes a rejected input field.
// Message is safe to show to the client as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidEmail checks that s has a local@domain.tld shape.
// Deliverability is not checked.
func IsValidEmail(s string) bool {
	return len(s) <= MaxEmailLength && emailPattern.MatchString(s)
}

// ValidatePassword enforces the password strength policy.
// Rules are checked in order and the first failure is returned.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return invalid("password", "Password must be at least 8 characters long")
	}
	if n > MaxPasswordLength {
		return invalid("password", "Password must be at most 128 characters long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return invalid("password", "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return invalid("password", "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return invalid("password", "Password must contain at least one number")
	}
	return nil
}

// ValidatePhone checks an optional phone number. Empty is accepted.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if utf8.RuneCountInString(phone) > MaxPhoneLength {
		return invalid("phone", "Phone number is too long. Maximum 20 characters allowed.")
	}
	if !phonePattern.MatchString(phone) {
		return invalid("phone", "Invalid phone number format. Use only numbers, spaces, and characters: + - ( )")
	}
	return nil
}
