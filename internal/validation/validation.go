package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const MaxUsernameLength = 64

var gradeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,15}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUsername checks a trimmed username. Usernames are free text, so
// only emptiness, length and control characters are rejected.
func ValidateUsername(username string) error {
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return ValidationError{Field: "username", Message: fmt.Sprintf("username must be at most %d characters", MaxUsernameLength)}
	}
	if strings.IndexFunc(username, unicode.IsControl) >= 0 {
		return ValidationError{Field: "username", Message: "username contains invalid characters"}
	}
	return nil
}

// ValidateGrade checks that a grade level is usable as a path segment and file name
func ValidateGrade(grade string) error {
	if grade == "" {
		return ValidationError{Field: "grade", Message: "grade is required"}
	}
	if !gradeRegex.MatchString(grade) {
		return ValidationError{Field: "grade", Message: "invalid grade format"}
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return nil
}
