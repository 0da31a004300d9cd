package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeStore, cause, "failed to load")

	if err.Code != ErrCodeStore {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStore)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeTreeNotFound, "tree missing")

	if !Is(err, ErrCodeTreeNotFound) {
		t.Error("Is(err, ErrCodeTreeNotFound) = false, want true")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is(err, ErrCodeInternal) = true, want false")
	}
	if Is(errors.New("plain"), ErrCodeTreeNotFound) {
		t.Error("Is(plain, code) = true, want false")
	}

	// Codes survive wrapping in plain fmt errors.
	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, ErrCodeTreeNotFound) {
		t.Error("Is(wrapped, ErrCodeTreeNotFound) = false, want true")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "slow")); got != ErrCodeTimeout {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeTimeout)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "bad id")); got != "bad id" {
		t.Errorf("UserMessage = %q, want %q", got, "bad id")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q, want %q", got, "plain")
	}
}

func TestValidateStableID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"Valid", "ENSG001", false},
		{"Empty", "", true},
		{"ControlChar", "ENSG\x1f001", true},
		{"TooLong", string(make([]byte, 300)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStableID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStableID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"Valid", "trees/history.json", false},
		{"Empty", "", true},
		{"Traversal", "../etc/passwd", true},
		{"NullByte", "a\x00b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
