package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"op message err", &AppError{Op: "Op", Message: "msg", Err: base}, "Op: msg: boom"},
		{"op message", &AppError{Op: "Op", Message: "msg"}, "Op: msg"},
		{"op err", &AppError{Op: "Op", Err: base}, "Op: boom"},
		{"message only", &AppError{Message: "msg"}, "msg"},
		{"empty", &AppError{}, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("chunk 3: %w", E(CodeRateLimited, "Gemini.Complete", "quota", nil))
	if !IsCode(err, CodeRateLimited) {
		t.Error("IsCode() should see through fmt.Errorf wrapping")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("IsCode() matched the wrong code")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("x"), false},
		{"unavailable", E(CodeUnavailable, "", "", nil), true},
		{"rate limited", E(CodeRateLimited, "", "", nil), true},
		{"invalid", E(CodeInvalidArgument, "", "", nil), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	if got := HTTPStatus(E(CodeInvalidArgument, "", "bad", nil)); got != http.StatusBadRequest {
		t.Errorf("HTTPStatus() = %d, want 400", got)
	}
	if got := HTTPStatus(errors.New("x")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus() = %d, want 500", got)
	}
}
