package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("Bytez")

	if GetErrorCode(err) != ErrUpstreamError {
		t.Fatalf("expected code %s, got %s", ErrUpstreamError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got != "[UPSTREAM_ERROR] upstream failed: root" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestError_WrappedLookup(t *testing.T) {
	t.Parallel()

	base := NewNotFoundError("agent not found")
	wrapped := fmt.Errorf("resolve: %w", base)

	if !IsErrorCode(wrapped, ErrNotFound) {
		t.Fatalf("expected wrapped error to carry %s", ErrNotFound)
	}
	e, ok := AsError(wrapped)
	if !ok || e.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 status through wrapping, got %+v", e)
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no code")
	}
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := UserID(ctx); ok {
		t.Fatalf("empty context should not carry a user")
	}

	ctx = WithUserID(ctx, "u-1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTokenID(ctx, "jti-1")

	if v, ok := UserID(ctx); !ok || v != "u-1" {
		t.Fatalf("unexpected user id %q", v)
	}
	if v, ok := RequestID(ctx); !ok || v != "req-1" {
		t.Fatalf("unexpected request id %q", v)
	}
	if v, ok := TokenID(ctx); !ok || v != "jti-1" {
		t.Fatalf("unexpected token id %q", v)
	}
	if _, ok := UserID(WithUserID(context.Background(), "")); ok {
		t.Fatalf("empty user id should be reported as absent")
	}
}
