package compositor

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tingold/geoatlas/catalog"
	"github.com/tingold/geoatlas/change"
	"github.com/tingold/geoatlas/metrics"
)

// Compositor maintains the published atlas for one catalog.
type Compositor struct {
	cat  *catalog.Catalog
	src  ImageSource
	opts *Options

	// mu serializes updates from reading the published atlas to publishing
	// its successor.
	mu   sync.Mutex
	base *image.RGBA // built on first use, guarded by mu

	current atomic.Pointer[Atlas]
	// latest is the generation of the newest Update call. An update whose
	// generation falls behind it stops at the next stamp.
	latest atomic.Uint64
}

// New returns a compositor with no published atlas. src may be nil when only
// Stamp and BaseMap are used.
func New(cat *catalog.Catalog, src ImageSource, opts *Options) *Compositor {
	return &Compositor{
		cat:  cat,
		src:  src,
		opts: opts.withDefaults(),
	}
}

// Current returns the published atlas, or nil before the first update.
func (c *Compositor) Current() *Atlas {
	return c.current.Load()
}

// Update brings the atlas in line with assignment, choosing the strategy with
// Decide against the published atlas. It returns the atlas that is published
// when it returns. If a newer Update starts before this one finishes, this
// one returns ErrSuperseded; a cancelled ctx returns ctx.Err(). Neither
// touches the published atlas.
//
// Where countries overlap, the one whose code sorts last is on top, whichever
// strategy runs.
func (c *Compositor) Update(ctx context.Context, assignment change.Assignment) (*Atlas, error) {
	gen := c.latest.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(ctx, gen); err != nil {
		return nil, err
	}

	cur := c.current.Load()
	var prev change.Assignment
	if cur != nil {
		prev = cur.assignment
	}
	changes := change.Diff(prev, assignment)
	mode := Decide(cur, changes, c.opts)

	switch mode {
	case ModeNone:
		metrics.AtlasUpdatesTotal.WithLabelValues(mode.String()).Inc()
		c.opts.logger().Debug("atlas_unchanged", "version", cur.version)
		return cur, nil
	case ModeIncremental:
		next, err := c.incremental(ctx, gen, cur, changes)
		if !errors.Is(err, errEscalate) {
			return next, err
		}
		c.opts.logger().Debug("atlas_incremental_escalated", "version", cur.version)
	}
	return c.full(ctx, gen, assignment)
}

// Regenerate redraws the atlas from the base map regardless of what changed.
func (c *Compositor) Regenerate(ctx context.Context, assignment change.Assignment) (*Atlas, error) {
	gen := c.latest.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(ctx, gen); err != nil {
		return nil, err
	}
	return c.full(ctx, gen, assignment)
}

// errEscalate makes an incremental pass fall back to a full one.
var errEscalate = errors.New("compositor: escalate to full regeneration")

func (c *Compositor) full(ctx context.Context, gen uint64, assignment change.Assignment) (*Atlas, error) {
	start := time.Now()
	if c.base == nil {
		c.base = BaseMap(c.cat, c.opts)
	}
	dst := clone(c.base)

	photos := assignment.Clone()
	drawable, stamped := c.partition(photos)
	images, err := c.fetch(ctx, gen, drawable)
	if err != nil {
		return nil, err
	}

	for _, code := range drawable.Codes() {
		if err := c.check(ctx, gen); err != nil {
			return nil, err
		}
		if c.stamp(dst, drawable[code], images[code]) {
			stamped[code] = drawable[code]
		}
	}

	atlas := c.publish(dst, stamped, ModeFull, start)
	c.opts.logger().Info("atlas_full_regeneration",
		"version", atlas.version,
		"photos", len(photos),
		"stamped", len(stamped),
		"duration", time.Since(start),
	)
	return atlas, nil
}

func (c *Compositor) incremental(ctx context.Context, gen uint64, cur *Atlas, changes change.ChangeSet) (*Atlas, error) {
	start := time.Now()

	drawable, skipped := c.partition(changes.AddedOrUpdated)
	// Full passes stamp in code order, so a new photo must not land on top
	// of an unchanged country that sorts after it and shares pixels with it.
	for code := range drawable {
		if c.coveredLater(cur.assignment, changes.AddedOrUpdated, code) {
			return nil, errEscalate
		}
	}

	images, err := c.fetch(ctx, gen, drawable)
	if err != nil {
		return nil, err
	}
	// A failed photo for a country that already shows one would leave the
	// old photo visible, which a full pass would not.
	for code := range drawable {
		img := images[code]
		if _, shown := cur.assignment[code]; shown && (img == nil || img.Bounds().Empty()) {
			return nil, errEscalate
		}
	}

	dst := clone(cur.img)
	stamped := cur.assignment.Clone()
	for code, p := range skipped {
		stamped[code] = p
	}
	for _, code := range drawable.Codes() {
		if err := c.check(ctx, gen); err != nil {
			return nil, err
		}
		p := drawable[code]
		if c.stamp(dst, p, images[code]) {
			stamped[code] = p
		}
	}

	atlas := c.publish(dst, stamped, ModeIncremental, start)
	c.opts.logger().Info("atlas_incremental_update",
		"version", atlas.version,
		"changed", len(changes.AddedOrUpdated),
		"duration", time.Since(start),
	)
	return atlas, nil
}

// partition splits photos into those that can be drawn and those applied as
// no-ops without fetching, because their country is unknown, has no geometry
// or lies outside the raster.
func (c *Compositor) partition(photos change.Assignment) (drawable, skipped change.Assignment) {
	drawable = make(change.Assignment, len(photos))
	skipped = make(change.Assignment)
	for code, p := range photos {
		country, ok := c.cat.Get(p.CountryCode)
		switch {
		case !ok:
			c.skip(p, "unknown_country")
		case !country.HasGeometry():
			c.skip(p, "geometry_missing")
		case clipRect(country, c.opts.Size).Empty():
			c.skip(p, "out_of_bounds")
		default:
			drawable[code] = p
			continue
		}
		skipped[code] = p
	}
	return drawable, skipped
}

// coveredLater reports whether a country shown in shown, left unchanged by
// changed and sorting after code overlaps code's country.
func (c *Compositor) coveredLater(shown, changed change.Assignment, code string) bool {
	country, ok := c.cat.Get(code)
	if !ok {
		return false
	}
	for other := range shown {
		if other <= code {
			continue
		}
		if _, ok := changed[other]; ok {
			continue
		}
		if o, ok := c.cat.Get(other); ok && overlaps(country, o, c.opts) {
			return true
		}
	}
	return false
}

func (c *Compositor) skip(p change.Photo, reason string) {
	metrics.StampsSkippedTotal.WithLabelValues(reason).Inc()
	c.opts.logger().Debug("stamp_skipped", "code", p.CountryCode, "photo", p.ID, "reason", reason)
}

// stamp draws p into dst and reports whether p counts as applied. Photos that
// cannot be drawn for geometric reasons are applied as no-ops; a missing
// image is not applied so a later update retries it.
func (c *Compositor) stamp(dst *image.RGBA, p change.Photo, img image.Image) bool {
	if img == nil {
		return false
	}
	country, ok := c.cat.Get(p.CountryCode)
	if !ok {
		c.skip(p, "unknown_country")
		return true
	}

	err := stampInto(dst, c.opts.Size, img, country, c.opts)
	switch {
	case err == nil:
		metrics.StampsTotal.Inc()
	case errors.Is(err, ErrOutOfBounds):
		c.skip(p, "out_of_bounds")
	case errors.Is(err, catalog.ErrGeometryMissing):
		c.skip(p, "geometry_missing")
	default:
		metrics.StampsSkippedTotal.WithLabelValues("invalid_image").Inc()
		c.opts.logger().Warn("stamp_skipped", "code", p.CountryCode, "photo", p.ID, "reason", "invalid_image", "error", err)
		return false
	}
	return true
}

// fetch loads every photo's image with bounded parallelism. Failed photos
// have no entry in the result.
func (c *Compositor) fetch(ctx context.Context, gen uint64, photos change.Assignment) (map[string]image.Image, error) {
	images := make(map[string]image.Image, len(photos))
	if len(photos) == 0 || c.src == nil {
		return images, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, c.opts.FetchConcurrency)
	)
	for code, p := range photos {
		wg.Add(1)
		go func(code string, p change.Photo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil || c.latest.Load() != gen {
				return
			}
			img, err := c.src.Image(ctx, p)
			if err != nil {
				metrics.StampsSkippedTotal.WithLabelValues("fetch_failure").Inc()
				c.opts.logger().Warn("photo_fetch_failed", "code", code, "photo", p.ID, "url", p.URL, "error", err)
				return
			}
			mu.Lock()
			images[code] = img
			mu.Unlock()
		}(code, p)
	}
	wg.Wait()

	if err := c.check(ctx, gen); err != nil {
		return nil, err
	}
	return images, nil
}

// check reports whether work for generation gen should stop.
func (c *Compositor) check(ctx context.Context, gen uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.latest.Load() != gen {
		metrics.AtlasSupersededTotal.Inc()
		return ErrSuperseded
	}
	return nil
}

func (c *Compositor) publish(img *image.RGBA, stamped change.Assignment, mode Mode, start time.Time) *Atlas {
	var version uint64 = 1
	if cur := c.current.Load(); cur != nil {
		version = cur.version + 1
	}
	atlas := &Atlas{img: img, assignment: stamped, version: version, mode: mode}
	c.current.Store(atlas)

	metrics.AtlasUpdatesTotal.WithLabelValues(mode.String()).Inc()
	metrics.AtlasUpdateDurationMs.WithLabelValues(mode.String()).Observe(float64(time.Since(start).Milliseconds()))
	return atlas
}
