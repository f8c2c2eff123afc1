package auditcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, IPAddressFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithIPAddress(ctx, "10.0.0.7")
	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, "10.0.0.7", IPAddressFromContext(ctx))
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	// Empty values leave the context untouched.
	assert.Equal(t, ctx, WithIPAddress(ctx, ""))
}
