package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		m := NewMemory()
		_, ok, err := m.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
		val, ok, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), val)
	})

	t.Run("delete evicts", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, m.Delete(ctx, "k"))
		_, ok, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete of absent key is a no-op", func(t *testing.T) {
		m := NewMemory()
		assert.NoError(t, m.Delete(ctx, "nope"))
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
		time.Sleep(25 * time.Millisecond)
		_, ok, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
		time.Sleep(15 * time.Millisecond)
		_, ok, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
