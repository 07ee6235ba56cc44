package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20

	MinPasswordLength = 6

	MinMessageLength = 10
	MaxMessageLength = 500
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateUsername validates username format
// Rules: 3-20 characters, letters, numbers, underscores only
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at least 3 characters"}
	}

	if len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at most 20 characters"}
	}

	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"}
	}

	return nil
}

// NormalizeUsername converts username to lowercase for storage and lookups,
// so "Bob" and "bob" are the same account.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateEmail validates email shape (not deliverability).
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)

	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}

	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Invalid email address"}
	}

	return nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters long"}
	}
	return nil
}

// ValidateMessageContent enforces the 10-500 character bounds on anonymous
// message content. Bounds count characters, not bytes, so multibyte text is
// measured the way the sender sees it. Handlers re-check this even though the
// form validates it client-side.
func ValidateMessageContent(content string) error {
	length := utf8.RuneCountInString(content)
	if length < MinMessageLength {
		return &ValidationError{Field: "content", Message: "Message must not be empty or less than 10 characters long"}
	}
	if length > MaxMessageLength {
		return &ValidationError{Field: "content", Message: "Message must not be more than 500 characters long"}
	}
	return nil
}
