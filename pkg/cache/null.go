package cache

import (
	"context"
	"time"
)

// NullCache discards writes and misses every read. It backs --no-cache runs
// and keeps the Runner free of nil checks.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

// Ensure NullCache implements Cache.
var _ Cache = NullCache{}
