package validation

import (
	"fmt"
	"strings"
	"time"

	cerrors "github.com/vnykmshr/concur/pkg/common/errors"
)

// ValidatePositive validates that an integer or duration value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive[T ~int | ~int64](module, field string, value T) error {
	if value <= 0 {
		return cerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that an integer value is non-negative (>= 0).
// Returns a ValidationError if the value is negative.
func ValidateNonNegative(module, field string, value int) error {
	if value < 0 {
		return cerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive value")
	}
	return nil
}

// ValidateDurationRange validates that min <= value <= max.
func ValidateDurationRange(module, field string, value, min, max time.Duration) error {
	if value < min || value > max {
		return cerrors.NewValidationError(module, field, value, "out of range").
			WithHint(fmt.Sprintf("use a duration between %v and %v", min, max))
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return cerrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return cerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

// ValidateOneOf validates that value matches one of allowed, ignoring case.
// An empty value is accepted so callers can fall back to a default.
func ValidateOneOf(module, field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return cerrors.NewValidationError(module, field, value, "unsupported value").
		WithHint("use one of " + strings.Join(allowed, ", "))
}
