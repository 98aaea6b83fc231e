package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = SetRequestID(ctx, "req-1")
	ctx = SetUserID(ctx, "user-1")
	ctx = SetSessionID(ctx, "sess-1")
	ctx = SetMethod(ctx, "POST")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))
	assert.Equal(t, "POST", GetMethod(ctx))
	assert.Empty(t, GetRoute(ctx))

	assert.Equal(t, map[string]any{
		"X-Request-Id": "req-1",
		"X-User-Id":    "user-1",
		"X-Session-Id": "sess-1",
	}, LogFields(ctx))
}
