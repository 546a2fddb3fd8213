package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()

	_, ok, err := s.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "auth_token", "abc"))
	require.NoError(t, s.Set(ctx, "user_name", "Ana"))

	v, ok, err := s.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Remove(ctx, "auth_token", "user_name", "missing"))
	_, ok, _ = s.Get(ctx, "auth_token")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "user_name")
	assert.False(t, ok)
}
