// Package cache holds the fetched-row cache used to avoid hitting the record source for
// every view that opens the same entity under the same scope.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheClosed is returned by operations on a closed cache
var ErrCacheClosed = errors.New("row cache is closed")

// KeyPrefix namespaces every cache key
const KeyPrefix = "fmis:rows:"

// RowCache stores encoded fetch results by key
type RowCache interface {
	// Get returns the value and true on a hit, or nil and false on a miss or expiry
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteEntity drops every cached scope of an entity
	DeleteEntity(ctx context.Context, entityID string) error
	Close() error
}

// RowKey builds the cache key of an entity under a scope key
func RowKey(entityID, scopeKey string) string {
	return KeyPrefix + entityID + ":" + scopeKey
}

func entityPrefix(entityID string) string {
	return KeyPrefix + entityID + ":"
}

func hasEntityPrefix(key, entityID string) bool {
	return strings.HasPrefix(key, entityPrefix(entityID))
}
