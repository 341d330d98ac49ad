// Package fetch downloads and decodes photos for the compositor.
//
// The lookup order is an in-process LRU, then an optional Redis cache, then
// the network. Raw bytes are cached, not decoded images, so every layer holds
// exactly what the origin served.
package fetch

import (
	"context"
	"errors"
)

// ErrFetchFailure wraps every transport, status and decode failure.
var ErrFetchFailure = errors.New("fetch: failure")

// Fetcher returns the bytes stored at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Cache stores bytes by key. Implementations treat their own failures as
// misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}
