// Package storage persists profile images and maps them to public paths.
package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmptyObject = errors.New("empty object")
	ErrInvalidKey  = errors.New("invalid object key")
)

// Store writes objects under a flat key namespace.
type Store interface {
	// Put stores data under key and returns the path clients use to fetch it.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	// Path is the public path of key, known before the object exists.
	Path(key string) string
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, ".") {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}

func publicPath(prefix, key string) string {
	return strings.TrimRight(prefix, "/") + "/" + key
}
