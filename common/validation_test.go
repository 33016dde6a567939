package common

import (
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"admin", true},
		{"op.irban1", true},
		{"user_name-2", true},
		{"ab", false},
		{"", false},
		{"UPPERCASE", false},
		{"has space", false},
		{"way-too-long-username-that-exceeds-the-limit", false},
	}

	for _, tt := range tests {
		result := ValidateUsername(tt.username)
		if result != tt.valid {
			t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, result, tt.valid)
		}
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"2025-01-31", true},
		{"2025-12-01", true},
		{"", false},
		{"31-01-2025", false},
		{"2025-13-01", false},
		{"2025-1-1", false},
		{"not-a-date", false},
	}

	for _, tt := range tests {
		err := ValidateDate("start_date", tt.input)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateDate(%q) valid = %v, want %v", tt.input, err == nil, tt.valid)
		}
	}
}

func TestValidateEnum(t *testing.T) {
	allowed := []string{"planning", "in-progress", "completed"}

	if err := ValidateEnum("status", "planning", allowed); err != nil {
		t.Errorf("expected %q to be valid", "planning")
	}

	err := ValidateEnum("status", "done", allowed)
	if err == nil {
		t.Fatal("expected error for invalid enum value")
	}
	if err.Field != "status" {
		t.Errorf("expected field 'status', got %q", err.Field)
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange("progress_percent", 0, 0, 100); err != nil {
		t.Error("0 should be within range")
	}
	if err := ValidateRange("progress_percent", 100, 0, 100); err != nil {
		t.Error("100 should be within range")
	}
	if err := ValidateRange("progress_percent", 101, 0, 100); err == nil {
		t.Error("101 should be out of range")
	}
	if err := ValidateRange("progress_percent", -1, 0, 100); err == nil {
		t.Error("-1 should be out of range")
	}
}

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors

	if fe.Err() != nil {
		t.Error("empty FieldErrors should produce nil error")
	}

	fe.Add("activity_name", "activity_name is required")
	fe.Add("status", "status must be one of: planning, in-progress, completed")

	err := fe.Err()
	if err == nil {
		t.Fatal("expected error after adding field errors")
	}

	domainErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if domainErr.Kind != KindValidation {
		t.Errorf("expected KindValidation, got %v", domainErr.Kind)
	}
	if len(domainErr.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(domainErr.Fields))
	}
}
