package fetch

import (
	"context"
	"log/slog"

	"github.com/tingold/geoatlas/metrics"
)

// Layer is one named cache in a CachedFetcher.
type Layer struct {
	Name  string
	Cache Cache
}

// CachedFetcher consults its layers in order before falling back to the
// network. A hit is copied into every layer above it; a download is stored
// in all of them.
type CachedFetcher struct {
	layers []Layer
	next   Fetcher
	logger *slog.Logger
}

// NewCachedFetcher returns a fetcher over next. Layers with a nil Cache are
// ignored.
func NewCachedFetcher(next Fetcher, logger *slog.Logger, layers ...Layer) *CachedFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &CachedFetcher{next: next, logger: logger}
	for _, l := range layers {
		if l.Cache != nil {
			f.layers = append(f.layers, l)
		}
	}
	return f
}

func (f *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	for i, l := range f.layers {
		data, ok := l.Cache.Get(ctx, url)
		if !ok {
			metrics.FetchCacheMissesTotal.WithLabelValues(l.Name).Inc()
			continue
		}
		metrics.FetchCacheHitsTotal.WithLabelValues(l.Name).Inc()
		f.logger.Debug("fetch_cache_hit", "layer", l.Name, "url", url)
		for _, above := range f.layers[:i] {
			above.Cache.Set(ctx, url, data)
		}
		return data, nil
	}

	data, err := f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	for _, l := range f.layers {
		l.Cache.Set(ctx, url, data)
	}
	return data, nil
}
