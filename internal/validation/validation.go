package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Local mobile numbers: 11 digits starting with 01.
	phoneRegex = regexp.MustCompile(`^01[0-9]{9}$`)
)

// ValidationError represents a field-level validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks the required name field
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "Name is required"}
	}
	return nil
}

// ValidatePhone checks the required phone field against the local
// 11-digit mobile pattern
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return ValidationError{Field: "phone", Message: "Phone is required"}
	}
	if !phoneRegex.MatchString(phone) {
		return ValidationError{Field: "phone", Message: "Phone must be 11 digits and valid"}
	}
	return nil
}

// ValidateEmail checks the optional email field; empty is allowed
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "Invalid email format"}
	}
	return nil
}
