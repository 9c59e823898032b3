package apiutil

import (
	"fmt"
	"strings"
)

// RequiredString trims value and reports a FieldError when it is empty.
func RequiredString(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	return value, nil
}

// OptionalString trims value and returns nil for nil or blank input.
func OptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// IntInRange applies def when value is nil and checks the result lies in [min, max].
func IntInRange(value *int, def, min, max int, field string) (int, error) {
	if value == nil {
		return def, nil
	}
	if *value < min || *value > max {
		return 0, FieldError{Field: field, Reason: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return *value, nil
}

// NonNegativeInt applies def when value is nil and rejects negative values.
func NonNegativeInt(value *int, def int, field string) (int, error) {
	if value == nil {
		return def, nil
	}
	if *value < 0 {
		return 0, FieldError{Field: field, Reason: "must be 0 or greater"}
	}
	return *value, nil
}
