package geoatlas

import (
	"context"
	"log/slog"

	"github.com/tingold/geoatlas/catalog"
	"github.com/tingold/geoatlas/change"
	"github.com/tingold/geoatlas/compositor"
	"github.com/tingold/geoatlas/locate"
	"github.com/tingold/geoatlas/metrics"
)

// Options configures an Engine.
type Options struct {
	Compositor *compositor.Options
	Logger     *slog.Logger
}

// DefaultOptions returns the default compositor settings.
func DefaultOptions() *Options {
	return &Options{Compositor: compositor.DefaultOptions()}
}

// Engine owns one catalog, its locator and one published atlas. All methods
// are safe for concurrent use.
type Engine struct {
	cat    *catalog.Catalog
	loc    *locate.Locator
	comp   *compositor.Compositor
	logger *slog.Logger
}

// New builds an engine over cat. src delivers photo images.
func New(cat *catalog.Catalog, src compositor.ImageSource, opts *Options) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	copts := compositor.DefaultOptions()
	if opts.Compositor != nil {
		c := *opts.Compositor
		copts = &c
	}
	if copts.Logger == nil {
		copts.Logger = logger
	}

	return &Engine{
		cat:    cat,
		loc:    locate.New(cat, &locate.Options{Logger: logger}),
		comp:   compositor.New(cat, src, copts),
		logger: logger,
	}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Update reduces photos to the latest one per country and applies the result.
func (e *Engine) Update(ctx context.Context, photos []change.Photo) (*compositor.Atlas, error) {
	return e.UpdateAssignment(ctx, change.Latest(photos))
}

// UpdateAssignment applies an assignment that already holds one photo per
// country. See compositor.Compositor.Update for the error contract.
func (e *Engine) UpdateAssignment(ctx context.Context, a change.Assignment) (*compositor.Atlas, error) {
	atlas, err := e.comp.Update(ctx, a)
	if err != nil {
		e.logger.Debug("atlas_update_failed", "error", err)
		return nil, err
	}
	return atlas, nil
}

// CurrentAtlas returns the published atlas, or nil before the first update.
func (e *Engine) CurrentAtlas() *compositor.Atlas {
	return e.comp.Current()
}

// CountryFor returns the country at (lat, lon), or nil over ocean.
func (e *Engine) CountryFor(lat, lon float64) *catalog.Country {
	return observe(e.loc.Locate(lat, lon))
}

// CountryForPoint returns the country under a point of the globe mesh. The
// axis convention is the one documented in package locate.
func (e *Engine) CountryForPoint(x, y, z float64) *catalog.Country {
	return observe(e.loc.LocateUnitSphere(x, y, z))
}

func observe(c *catalog.Country) *catalog.Country {
	if c == nil {
		metrics.LocateTotal.WithLabelValues("ocean").Inc()
	} else {
		metrics.LocateTotal.WithLabelValues("country").Inc()
	}
	return c
}
