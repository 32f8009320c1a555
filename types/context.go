package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keyUserID    contextKey = "user_id"
	keyTokenID   contextKey = "token_id"
)

// WithRequestID adds request ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID extracts request ID from context.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}

// WithUserID adds the authenticated user ID to context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

// UserID extracts the authenticated user ID from context.
func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyUserID).(string)
	return v, ok && v != ""
}

// WithTokenID adds the access token jti to context.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, keyTokenID, jti)
}

// TokenID extracts the access token jti from context.
func TokenID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyTokenID).(string)
	return v, ok && v != ""
}
