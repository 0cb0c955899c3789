package model

import (
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := NewNotFoundError("Semester")
	if got, want := err.Error(), "[NOT_FOUND] Semester not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestHasCode_WrappedError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewConflictError("Semester already exists"))

	if !HasCode(err, ErrCodeConflict) {
		t.Error("expected HasCode to find CONFLICT in wrapped error")
	}
	if HasCode(err, ErrCodeNotFound) {
		t.Error("expected HasCode to reject NOT_FOUND")
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeConflict) {
		t.Error("expected HasCode to be false for non-APIError")
	}
}

func TestSeason_IsValid(t *testing.T) {
	for _, s := range Seasons {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Season{"", "fall", "Autumn", "$ne"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
