// Package compositor renders photo atlases: an equirectangular world map
// with every country filled and outlined, and each country's photo stamped
// into its exact boundary.
//
// A Compositor owns one published atlas. Updates are serialized; each one
// works on a private copy and publishes it atomically, so readers never see
// a half-drawn raster. Small change sets are stamped onto the published
// atlas, anything else is redrawn from the base map.
package compositor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"

	"github.com/tingold/geoatlas/change"
	"github.com/tingold/geoatlas/mask"
	"github.com/tingold/geoatlas/projection"
	"golang.org/x/image/draw"
)

// Common errors returned by this package.
var (
	// ErrOutOfBounds is returned by Stamp when the country's rectangle does
	// not intersect the raster. The base is returned unchanged.
	ErrOutOfBounds = errors.New("compositor: rectangle outside raster")
	// ErrSuperseded is returned by Update when a newer request arrived
	// before this one finished. The published atlas is untouched.
	ErrSuperseded = errors.New("compositor: update superseded")
	// ErrNoImage is returned by StaticImages for unknown photos.
	ErrNoImage = errors.New("compositor: no image for photo")
)

// Options configures rendering.
type Options struct {
	Size projection.Size

	Ocean  color.Color
	Land   color.Color
	Border color.Color
	// BorderWidth is the border stroke width in pixels. Zero disables borders.
	BorderWidth float64

	// IncrementalLimit is the number of added or updated countries at which
	// an update switches from stamping to a full redraw.
	IncrementalLimit int

	// Interpolator resizes photos to their country rectangle.
	Interpolator draw.Interpolator
	// Mask controls coverage masks for land fill and photo clipping.
	Mask *mask.Options

	// FetchConcurrency bounds parallel ImageSource calls during one update.
	FetchConcurrency int

	Logger *slog.Logger
}

// DefaultOptions returns a 2048x1024 atlas with binary masks.
func DefaultOptions() *Options {
	return &Options{
		Size:             projection.DefaultSize,
		Ocean:            color.RGBA{R: 51, G: 102, B: 204, A: 0xff},
		Land:             color.White,
		Border:           color.RGBA{A: 153},
		BorderWidth:      0.5,
		IncrementalLimit: 3,
		Interpolator:     draw.CatmullRom,
		Mask:             mask.DefaultOptions(),
		FetchConcurrency: 4,
	}
}

// withDefaults fills unset fields from DefaultOptions.
func (o *Options) withDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	out := *o
	if out.Size.Width <= 0 || out.Size.Height <= 0 {
		out.Size = d.Size
	}
	if out.Ocean == nil {
		out.Ocean = d.Ocean
	}
	if out.Land == nil {
		out.Land = d.Land
	}
	if out.Border == nil {
		out.Border = d.Border
	}
	if out.IncrementalLimit <= 0 {
		out.IncrementalLimit = d.IncrementalLimit
	}
	if out.Interpolator == nil {
		out.Interpolator = d.Interpolator
	}
	if out.Mask == nil {
		out.Mask = d.Mask
	}
	if out.FetchConcurrency <= 0 {
		out.FetchConcurrency = d.FetchConcurrency
	}
	return &out
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Options) antiAlias() bool {
	return o.Mask != nil && o.Mask.AntiAlias
}

// ImageSource delivers decoded photos. Errors make the compositor skip the
// photo; they never fail an update.
type ImageSource interface {
	Image(ctx context.Context, p change.Photo) (image.Image, error)
}

// StaticImages is an ImageSource keyed by photo ID.
type StaticImages map[string]image.Image

func (s StaticImages) Image(_ context.Context, p change.Photo) (image.Image, error) {
	img, ok := s[p.ID]
	if !ok {
		return nil, ErrNoImage
	}
	return img, nil
}

// Atlas is one published raster together with the photos visible in it.
// It is immutable.
type Atlas struct {
	img        *image.RGBA
	assignment change.Assignment
	version    uint64
	mode       Mode
}

// Image returns the raster. It is shared; callers must not modify it.
func (a *Atlas) Image() *image.RGBA { return a.img }

// Assignment returns a copy of the photos stamped into this atlas. Photos
// whose image could not be fetched are absent, so the next update retries
// them.
func (a *Atlas) Assignment() change.Assignment { return a.assignment.Clone() }

// Version increases by one with every published atlas.
func (a *Atlas) Version() uint64 { return a.version }

// Mode is how this atlas was produced.
func (a *Atlas) Mode() Mode { return a.mode }

// Mode is an update strategy.
type Mode int

const (
	// ModeNone leaves the published atlas as it is.
	ModeNone Mode = iota
	// ModeIncremental stamps changed photos onto the published atlas.
	ModeIncremental
	// ModeFull redraws the atlas from the base map.
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeIncremental:
		return "incremental"
	case ModeFull:
		return "full"
	}
	return "unknown"
}

// Decide picks the strategy for applying changes to current, which is nil
// before the first update. Removals always redraw in full. With anti-aliased
// masks edge pixels depend on stamping order, so every change does.
func Decide(current *Atlas, changes change.ChangeSet, opts *Options) Mode {
	opts = opts.withDefaults()
	switch {
	case current == nil:
		return ModeFull
	case changes.Empty():
		return ModeNone
	case len(changes.Removed) > 0:
		return ModeFull
	case len(changes.AddedOrUpdated) >= opts.IncrementalLimit:
		return ModeFull
	case opts.antiAlias():
		return ModeFull
	}
	return ModeIncremental
}
