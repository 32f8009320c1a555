package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	_, ok := RequestID(ctx)
	assert.False(t, ok)
	_, ok = UserID(ctx)
	assert.False(t, ok)
	_, ok = TokenID(ctx)
	assert.False(t, ok)

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithTokenID(ctx, "jti-1")

	id, ok := RequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)

	uid, ok := UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", uid)

	jti, ok := TokenID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "jti-1", jti)
}

func TestContextValues_EmptyStringIsAbsent(t *testing.T) {
	ctx := WithUserID(context.Background(), "")
	_, ok := UserID(ctx)
	assert.False(t, ok)
}
