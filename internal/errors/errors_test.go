package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{RateLimit("slow down"), http.StatusTooManyRequests},
		{ServiceUnavailable("loading"), http.StatusServiceUnavailable},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if tt.err.StatusCode != tt.want {
			t.Errorf("%s status = %d, want %d", tt.err.Code, tt.err.StatusCode, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("unknown sort column %q", "Nope")
	err := BadRequestWrap(cause, "invalid table query")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Details != "" {
		t.Errorf("Details = %q, cause text should stay server side", err.Details)
	}
	if got := err.WithDetails("sort=Col:asc,Col:desc").Details; got != "sort=Col:asc,Col:desc" {
		t.Errorf("WithDetails() = %q", got)
	}
}

func TestWriteError_WrappedCauseNotSent(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	cause := stderrors.New("invalid character 'x' looking for beginning of value")

	w := httptest.NewRecorder()
	WriteError(w, logger, BadRequestWrap(cause, "invalid signals"), "req-2")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if strings.Contains(w.Body.String(), "invalid character") {
		t.Errorf("cause leaked to client: %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "invalid character") {
		t.Error("cause should be logged")
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, discardLogger(), fmt.Errorf("handler: %w", BadRequest("invalid date range")), "req-1")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("success should be false")
	}
	if resp.Error.Code != string(CodeBadRequest) || resp.Error.Message != "invalid date range" || resp.Error.RequestID != "req-1" {
		t.Errorf("error body = %+v", resp.Error)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, discardLogger(), stderrors.New("secret path /etc/passwd"), "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error == nil {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if resp.Error.Code != CodeInternal || resp.Error.Details != "" {
		t.Errorf("error body = %+v", resp.Error)
	}
	if strings.Contains(w.Body.String(), "/etc/passwd") {
		t.Error("plain errors should not be echoed to the client")
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, []int{1, 2}, map[string]string{"Cache-Control": "public, max-age=300"})

	if w.Header().Get("Cache-Control") != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}

	var resp SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success should be true")
	}
}
