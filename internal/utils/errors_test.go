package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{E(CodeInvalidArgument, "op", "bad", nil), http.StatusBadRequest},
		{E(CodeNotFound, "op", "missing", ErrNotFound), http.StatusNotFound},
		{E(CodeInvalidState, "op", "closed", ErrClosed), http.StatusConflict},
		{E(CodeUnavailable, "op", "down", nil), http.StatusServiceUnavailable},
		{E(CodeTimeout, "op", "slow", nil), http.StatusGatewayTimeout},
		{fmt.Errorf("wrapped: %w", ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(E(CodeUnavailable, "op", "down", nil)) {
		t.Fatal("expected UNAVAILABLE to be retryable")
	}
	if !Retryable(E(CodeTimeout, "op", "slow", nil)) {
		t.Fatal("expected TIMEOUT to be retryable")
	}
	if Retryable(E(CodeInvalidState, "op", "closed", nil)) {
		t.Fatal("expected INVALID_STATE to be terminal")
	}
	if Retryable(errors.New("boom")) {
		t.Fatal("expected plain errors to be terminal")
	}
}

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	err := E(CodeNotFound, "InterviewService.Get", "interview not found", ErrNotFound)
	if got, want := err.Error(), "InterviewService.Get: interview not found: not found"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is to see the wrapped sentinel")
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatal("expected IsCode to match")
	}
}
