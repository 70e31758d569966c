package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "ns", "k", "v", time.Minute))
	v, err := m.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = m.Get(ctx, "other", "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Delete(ctx, "ns", "k"))
	_, err = m.Get(ctx, "ns", "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "ns", "k", "v", time.Minute))
	now = now.Add(59 * time.Second)
	_, err := m.Get(ctx, "ns", "k")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.Get(ctx, "ns", "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_SetNX(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.SetNX(ctx, "ns", "k", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.SetNX(ctx, "ns", "k", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _ := m.Get(ctx, "ns", "k")
	assert.Equal(t, "first", v)
}

func TestMemoryStore_GetDelIsSingleUse(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "ns", "k", "v", 0))

	v, err := m.GetDel(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = m.GetDel(ctx, "ns", "k")
	assert.ErrorIs(t, err, ErrMiss)
}
