package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Local keeps objects on the local disk below baseDir. The HTTP server
// exposes baseDir under urlPrefix.
type Local struct {
	baseDir   string
	urlPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{baseDir: baseDir, urlPrefix: urlPrefix}
}

func (l *Local) Dir() string { return l.baseDir }

func (l *Local) Path(key string) string { return publicPath(l.urlPrefix, key) }

func (l *Local) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(l.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	absPath := filepath.Join(l.baseDir, key)
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return l.Path(key), nil
}

// Delete removes the object. A missing object is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	err := os.Remove(filepath.Join(l.baseDir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
