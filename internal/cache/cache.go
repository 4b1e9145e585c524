// Package cache provides the response cache used by the dashboard endpoints.
// Aggregation services never touch it; handlers consult the provider keyed on
// (endpoint, organization, parameters), so the core stays testable without a
// live cache.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrMiss is returned by Get when no entry exists for the key
var ErrMiss = errors.New("cache miss")

// Provider is the caching contract consumed by the HTTP layer and the warmup job
type Provider interface {
	// Get returns the cached payload, or ErrMiss
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the payload with the provider's configured TTL
	Set(ctx context.Context, key string, value []byte) error
	// Invalidate drops every entry under the given key prefix
	Invalidate(ctx context.Context, prefix string) error
	// IsStale reports whether the entry is past its soft refresh age.
	// A missing entry is stale.
	IsStale(ctx context.Context, key string) (bool, error)
}

// Key builds a cache key from its parts, e.g.
// Key("dashboard", orgID, "metrics") -> "dashboard:<org>:metrics"
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Noop is a Provider that caches nothing, used when caching is disabled
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, error)     { return nil, ErrMiss }
func (Noop) Set(ctx context.Context, key string, value []byte) error { return nil }
func (Noop) Invalidate(ctx context.Context, prefix string) error     { return nil }
func (Noop) IsStale(ctx context.Context, key string) (bool, error)   { return true, nil }

// Config holds the provider tuning shared by implementations
type Config struct {
	TTL      time.Duration
	StaleAge time.Duration
}
