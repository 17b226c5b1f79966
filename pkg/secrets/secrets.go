// Package secrets resolves named credentials from a remote configuration
// service. Values are held in memory by callers only; nothing here caches or
// persists them.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when the source has no value for the requested name.
var ErrNotFound = errors.New("secrets: not found")

// Source resolves a named secret.
type Source interface {
	Secret(ctx context.Context, name string) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, name string) (string, error)

func (f SourceFunc) Secret(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// Static serves secrets from an in-memory map.
type Static map[string]string

func (s Static) Secret(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, ok := s[name]
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return value, nil
}

// Env serves secrets from environment variables, optionally prefixed.
type Env struct {
	Prefix string
}

func (e Env) Secret(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := strings.TrimSpace(e.Prefix) + name
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, nil
}

// Chain tries each source in order and returns the first value found. Errors
// other than ErrNotFound stop the chain.
type Chain []Source

func (c Chain) Secret(ctx context.Context, name string) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		value, err := src.Secret(ctx, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
