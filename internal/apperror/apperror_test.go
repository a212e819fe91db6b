package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("secret", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps ErrValidation",
			err:       Invalid("content", "Message must have content"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrAuth",
			err:       InvalidCredentials(),
			target:    ErrAuth,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("secret", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "InvalidCredentials does NOT match ErrNotFound",
			err:       InvalidCredentials(),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got, want := NotFound("secret", "abc123").Error(), "secret not found with id abc123"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := InvalidCredentials().Error(), "Email and password combination does not exist"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrorFields(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"last_name":  "Last name is required",
		"first_name": "First name is required",
	}}

	// Messages come out sorted by field name, regardless of map order.
	msgs := err.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Messages() returned %d entries, want 2", len(msgs))
	}
	if msgs[0] != "First name is required" || msgs[1] != "Last name is required" {
		t.Errorf("Messages() = %v, want first/last name order", msgs)
	}

	want := "first_name: First name is required; last_name: Last name is required"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrorAsTarget(t *testing.T) {
	// Wrapping through fmt.Errorf must keep the concrete type reachable.
	wrapped := fmt.Errorf("creating user: %w", Invalid("email", "Please enter a valid email"))

	var verr *ValidationError
	if !errors.As(wrapped, &verr) {
		t.Fatal("errors.As failed to extract *ValidationError from wrapped chain")
	}
	if verr.Fields["email"] != "Please enter a valid email" {
		t.Errorf("Fields[email] = %q", verr.Fields["email"])
	}
}
