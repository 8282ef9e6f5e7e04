package validation

import (
	"testing"
	"time"

	"github.com/vnykmshr/concur/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantError bool
	}{
		{"positive value", 10, false},
		{"positive value 1", 1, false},
		{"zero value", 0, true},
		{"negative value", -1, true},
		{"large negative", -1000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("test", "count", tt.value)

			if tt.wantError {
				if !errors.IsValidationError(err) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}

	if err := ValidatePositive("test", "interval", time.Millisecond); err != nil {
		t.Errorf("expected no error for positive duration, got %v", err)
	}
	if err := ValidatePositive("test", "interval", time.Duration(0)); !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError for zero duration, got %v", err)
	}
}

func TestValidateNonNegative(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantError bool
	}{
		{"zero", 0, false},
		{"positive", 7, false},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonNegative("threadpool", "threads", tt.value)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateNonNegative(%d) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
		})
	}
}

func TestValidateDurationRange(t *testing.T) {
	tests := []struct {
		name      string
		value     time.Duration
		wantError bool
	}{
		{"lower bound", 0, false},
		{"upper bound", time.Second, false},
		{"inside", 50 * time.Millisecond, false},
		{"below", -time.Millisecond, true},
		{"above", time.Second + time.Nanosecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDurationRange("timer", "reliability", tt.value, 0, time.Second)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateDurationRange(%v) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
		})
	}
}

func TestValidateNotNil(t *testing.T) {
	if err := ValidateNotNil("test", "callback", nil); err == nil {
		t.Error("expected error for nil value")
	}
	if err := ValidateNotNil("test", "callback", func() {}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateNotEmpty(t *testing.T) {
	if err := ValidateNotEmpty("timercollection", "id", ""); err == nil {
		t.Error("expected error for empty string")
	}
	if err := ValidateNotEmpty("timercollection", "id", "heartbeat"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateOneOf(t *testing.T) {
	tests := []struct {
		value     string
		wantError bool
	}{
		{"", false},
		{"debug", false},
		{"INFO", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateOneOf("log", "level", tt.value, "debug", "info", "warn", "error")
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateOneOf(%q) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
		})
	}
}

func TestValidationErrorDetails(t *testing.T) {
	t.Run("ValidatePositive error details", func(t *testing.T) {
		err := ValidatePositive("eventqueue", "max_size", -5)
		if err == nil {
			t.Fatal("expected error")
		}

		valErr, ok := err.(*errors.ValidationError)
		if !ok {
			t.Fatal("could not cast to ValidationError")
		}

		if valErr.Module != "eventqueue" {
			t.Errorf("Module = %q, want %q", valErr.Module, "eventqueue")
		}
		if valErr.Field != "max_size" {
			t.Errorf("Field = %q, want %q", valErr.Field, "max_size")
		}
		if valErr.Value != -5 {
			t.Errorf("Value = %v, want %v", valErr.Value, -5)
		}
		if valErr.Hint != "value must be greater than 0" {
			t.Errorf("Hint = %q, want %q", valErr.Hint, "value must be greater than 0")
		}
	})

	t.Run("ValidateNotEmpty error details", func(t *testing.T) {
		err := ValidateNotEmpty("config", "key", "")
		valErr, ok := err.(*errors.ValidationError)
		if !ok {
			t.Fatal("could not cast to ValidationError")
		}
		if valErr.Hint != "provide a non-empty key" {
			t.Errorf("Hint = %q, want contains 'key'", valErr.Hint)
		}
	})
}

func TestValidationErrorWrapping(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{"ValidatePositive", ValidatePositive("test", "field", -1)},
		{"ValidateNonNegative", ValidateNonNegative("test", "field", -1)},
		{"ValidateDurationRange", ValidateDurationRange("test", "field", -1, 0, 1)},
		{"ValidateNotNil", ValidateNotNil("test", "field", nil)},
		{"ValidateNotEmpty", ValidateNotEmpty("test", "field", "")},
		{"ValidateOneOf", ValidateOneOf("test", "field", "x", "y")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err == nil {
				t.Fatal("expected error")
			}
			valErr, ok := tc.err.(*errors.ValidationError)
			if !ok {
				t.Fatalf("error should be a ValidationError, got %T", tc.err)
			}
			if wrapped := valErr.Unwrap(); wrapped != errors.ErrInvalidConfiguration {
				t.Errorf("should unwrap to ErrInvalidConfiguration, got %v", wrapped)
			}
		})
	}
}
