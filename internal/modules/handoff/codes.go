package handoff

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"roflexi/internal/pkg/cache"
)

const exchangeCodeNS = "handoff:code"

// Codes issues short-lived single-use exchange codes bound to a principal.
// Only a peppered hash of each code is stored.
type Codes struct {
	store  cache.Store
	pepper string
	ttl    time.Duration
}

func NewCodes(store cache.Store, pepper string, ttl time.Duration) *Codes {
	return &Codes{store: store, pepper: pepper, ttl: ttl}
}

func (c *Codes) Issue(ctx context.Context, uid string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate exchange code: %w", err)
	}
	code := base64.RawURLEncoding.EncodeToString(buf)

	if err := c.store.Set(ctx, exchangeCodeNS, c.hash(code), uid, c.ttl); err != nil {
		return "", fmt.Errorf("store exchange code: %w", err)
	}
	return code, nil
}

// Redeem consumes code and checks that it was issued for uid. A code is
// consumed even when the uid does not match.
func (c *Codes) Redeem(ctx context.Context, uid, code string) error {
	if code == "" {
		return ErrExchangeCodeInvalid
	}
	owner, err := c.store.GetDel(ctx, exchangeCodeNS, c.hash(code))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return ErrExchangeCodeInvalid
		}
		return err
	}
	if owner != uid {
		return ErrExchangeCodeInvalid
	}
	return nil
}

func (c *Codes) hash(code string) string {
	sum := sha256.Sum256([]byte(code + c.pepper))
	return hex.EncodeToString(sum[:])
}
