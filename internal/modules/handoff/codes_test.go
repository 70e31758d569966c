package handoff

import (
	"context"
	"testing"
	"time"

	"roflexi/internal/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes_IssueAndRedeemOnce(t *testing.T) {
	ctx := context.Background()
	codes := NewCodes(cache.NewMemory(), "pepper", time.Minute)

	code, err := codes.Issue(ctx, "uid-1")
	require.NoError(t, err)
	assert.Len(t, code, 32)

	require.NoError(t, codes.Redeem(ctx, "uid-1", code))
	assert.ErrorIs(t, codes.Redeem(ctx, "uid-1", code), ErrExchangeCodeInvalid)
}

func TestCodes_WrongOwnerBurnsCode(t *testing.T) {
	ctx := context.Background()
	codes := NewCodes(cache.NewMemory(), "pepper", time.Minute)

	code, err := codes.Issue(ctx, "uid-1")
	require.NoError(t, err)

	assert.ErrorIs(t, codes.Redeem(ctx, "uid-2", code), ErrExchangeCodeInvalid)
	assert.ErrorIs(t, codes.Redeem(ctx, "uid-1", code), ErrExchangeCodeInvalid)
}

func TestCodes_StoresOnlyHash(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	codes := NewCodes(store, "pepper", time.Minute)

	code, err := codes.Issue(ctx, "uid-1")
	require.NoError(t, err)

	_, err = store.Get(ctx, exchangeCodeNS, code)
	assert.ErrorIs(t, err, cache.ErrMiss)

	uid, err := store.Get(ctx, exchangeCodeNS, codes.hash(code))
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	// a different pepper derives a different key
	other := NewCodes(store, "other", time.Minute)
	assert.NotEqual(t, codes.hash(code), other.hash(code))
}

func TestCodes_EmptyCode(t *testing.T) {
	codes := NewCodes(cache.NewMemory(), "pepper", time.Minute)
	assert.ErrorIs(t, codes.Redeem(context.Background(), "uid-1", ""), ErrExchangeCodeInvalid)
}
