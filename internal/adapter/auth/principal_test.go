package auth

import (
	"context"
	"testing"

	"p2plending/internal/domain/loan"

	"github.com/stretchr/testify/assert"
)

func TestContextAuthorizer(t *testing.T) {
	var a ContextAuthorizer
	ctx := WithPrincipal(context.Background(), "alice")

	assert.NoError(t, a.RequireAuth(ctx, "alice"))
	assert.ErrorIs(t, a.RequireAuth(ctx, "bob"), loan.ErrNotAuthorized)
	assert.ErrorIs(t, a.RequireAuth(ctx, ""), loan.ErrNotAuthorized)
	assert.ErrorIs(t, a.RequireAuth(context.Background(), "alice"), loan.ErrNotAuthorized)
	assert.ErrorIs(t, a.RequireAuth(WithPrincipal(context.Background(), ""), ""), loan.ErrNotAuthorized)
}

func TestContextAuthorizer_Reserved(t *testing.T) {
	a := ContextAuthorizer{Reserved: []string{"custody"}}
	ctx := WithPrincipal(context.Background(), "custody")

	assert.ErrorIs(t, a.RequireAuth(ctx, "custody"), loan.ErrNotAuthorized)
	assert.NoError(t, a.RequireAuth(WithPrincipal(context.Background(), "alice"), "alice"))
}

func TestPrincipal(t *testing.T) {
	_, ok := Principal(context.Background())
	assert.False(t, ok)

	id, ok := Principal(WithPrincipal(context.Background(), "carol"))
	assert.True(t, ok)
	assert.Equal(t, "carol", id)
}
