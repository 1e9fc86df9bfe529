package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantStatus  int
		wantMessage string
		operational bool
	}{
		{"validation", NewValidationError("Institute code already exists"), 400, "Institute code already exists", true},
		{"not found", NewNotFoundError("Institute"), 404, "Institute not found", true},
		{"duplicate", NewDuplicateError("institute_code"), 409, "institute_code already exists", true},
		{"database", NewDatabaseError("Failed to fetch institute"), 500, "Failed to fetch institute", false},
		{"unauthorized default", NewUnauthorizedError(""), 401, "Unauthorized access", true},
		{"unauthorized custom", NewUnauthorizedError("Token has expired"), 401, "Token has expired", true},
		{"forbidden default", NewForbiddenError(""), 403, "Access forbidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.wantStatus)
			}
			if tt.err.Error() != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantMessage)
			}
			if tt.err.IsOperational != tt.operational {
				t.Errorf("IsOperational = %v, want %v", tt.err.IsOperational, tt.operational)
			}
		})
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NewNotFoundError("Institute"))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to unwrap AppError")
	}
	if appErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", appErr.StatusCode)
	}
}
