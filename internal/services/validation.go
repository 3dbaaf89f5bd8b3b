package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is a validation failure tied to one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldError(field, format string, args ...interface{}) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// checkText validates a bounded text field measured in characters.
func checkText(field, value string, required bool, maxLen int) error {
	if required && strings.TrimSpace(value) == "" {
		return fieldError(field, "%s is required", field)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fieldError(field, "%s must be at most %d characters", field, maxLen)
	}
	return nil
}

// checkPassword enforces the minimum password length in characters.
func checkPassword(field, value string) error {
	if utf8.RuneCountInString(value) < constants.MinPasswordLength {
		return fieldError(field, "password must be at least %d characters", constants.MinPasswordLength)
	}
	return nil
}

func checkOptionalText(field string, value *string, maxLen int) error {
	if value == nil {
		return nil
	}
	return checkText(field, *value, false, maxLen)
}
