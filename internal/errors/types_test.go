package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	wrapped := errors.New("connection refused")
	err := NewModelGatewayError("provider call failed", "GATEWAY_DOWN", wrapped)

	if err.Error() != "provider call failed: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Code() != "GATEWAY_DOWN" {
		t.Errorf("Code() = %q", err.Code())
	}
}

func TestAppErrorWithoutCause(t *testing.T) {
	err := NewValidationError("video_id is required", "MISSING_VIDEO_ID", "Pass video_id as a query parameter.")

	if err.Error() != "video_id is required" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", err.StatusCode)
	}
	if err.RecoverySuggestion() == "" {
		t.Error("expected a recovery suggestion")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want bool
	}{
		{"rate limit", NewRateLimitError("slow down", "RATE", ""), true},
		{"gateway 500", NewModelGatewayError("down", "GW", nil), true},
		{"tool call 500", NewToolCallError("search down", "TOOL", nil), true},
		{"validation", NewValidationError("bad input", "VAL", ""), false},
		{"not found", NewNotFoundError("missing", "NF", ""), false},
		{"internal", NewInternalError("bug", "INT", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsRetryable(); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusCodes(t *testing.T) {
	if got := NewRateLimitError("", "", "").StatusCode; got != http.StatusTooManyRequests {
		t.Errorf("rate limit status = %d", got)
	}
	if got := NewNotFoundError("", "", "").StatusCode; got != http.StatusNotFound {
		t.Errorf("not found status = %d", got)
	}
}
