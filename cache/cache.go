// Package cache stores rendered share-view responses keyed by share token.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss key absent or expired
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheClosed cache used after Close
	ErrCacheClosed = errors.New("cache closed")
)

// Cache byte-oriented store shared by API instances
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ShareKey cache key of a shared menu view
func ShareKey(token string) string {
	return "share:" + token
}
