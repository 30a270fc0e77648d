package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_AbsentSecret(t *testing.T) {
	r := NewInMemory()

	value, ok, err := r.GetSecretBytes(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestInMemory_RoundTrip(t *testing.T) {
	r := NewInMemory()
	ctx := context.Background()

	require.NoError(t, r.SetSecretBytes(ctx, "key", []byte{1, 2, 3}))

	value, ok, err := r.GetSecretBytes(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, value)
}

func TestInMemory_Overwrite(t *testing.T) {
	r := NewInMemory()
	ctx := context.Background()

	require.NoError(t, r.SetSecretBytes(ctx, "key", []byte("old")))
	require.NoError(t, r.SetSecretBytes(ctx, "key", []byte("new")))

	value, ok, err := r.GetSecretBytes(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
}

func TestInMemory_CopiesValue(t *testing.T) {
	r := NewInMemory()
	ctx := context.Background()

	original := []byte("secret")
	require.NoError(t, r.SetSecretBytes(ctx, "key", original))
	original[0] = 'X' // caller mutation must not reach the registry

	value, ok, err := r.GetSecretBytes(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("secret"), value)
}
