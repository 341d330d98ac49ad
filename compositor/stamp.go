package compositor

import (
	"image"
	"image/draw"

	"github.com/tingold/geoatlas/catalog"
	"github.com/tingold/geoatlas/mask"
	"github.com/tingold/geoatlas/projection"
	xdraw "golang.org/x/image/draw"
)

// BaseMap draws the atlas without photos: ocean, every country filled in one
// pass, then all borders stroked in a second pass.
func BaseMap(cat *catalog.Catalog, opts *Options) *image.RGBA {
	opts = opts.withDefaults()
	b := opts.Size.Bounds()
	dst := image.NewRGBA(b)

	draw.Draw(dst, b, image.NewUniform(opts.Ocean), image.Point{}, draw.Src)

	land, paths := mask.RasterizeAllBorders(cat, opts.Size, opts.Mask)
	draw.DrawMask(dst, b, image.NewUniform(opts.Land), image.Point{}, land, b.Min, draw.Over)
	mask.StrokeBorders(dst, paths, opts.BorderWidth, opts.Border)

	return dst
}

// Stamp returns a copy of base with photo drawn inside country's boundary.
// The photo is resized to the country's bounding rectangle clipped to the
// raster. ErrOutOfBounds and catalog.ErrGeometryMissing are no-ops: base is
// copied unchanged alongside the error.
func Stamp(base *image.RGBA, photo image.Image, country *catalog.Country, opts *Options) (*image.RGBA, error) {
	opts = opts.withDefaults()
	size := projection.Size{Width: base.Bounds().Dx(), Height: base.Bounds().Dy()}

	dst := clone(base)
	err := stampInto(dst, size, photo, country, opts)
	return dst, err
}

// stampInto draws photo into dst inside country's mask. dst is anchored at
// the origin and has the given size.
func stampInto(dst *image.RGBA, size projection.Size, photo image.Image, country *catalog.Country, opts *Options) error {
	if !country.HasGeometry() {
		return catalog.ErrGeometryMissing
	}
	r := clipRect(country, size)
	if r.Empty() {
		return ErrOutOfBounds
	}
	if photo == nil || photo.Bounds().Empty() {
		return ErrNoImage
	}

	// The mask is rasterized at exactly r so it lines up with the resized
	// photo pixel for pixel. The photo is flattened onto land color so that
	// covered pixels never depend on what was under them.
	m := mask.RasterizeRect(country.Geometry, size, r, opts.Mask)
	resized := image.NewRGBA(r)
	draw.Draw(resized, r, image.NewUniform(opts.Land), image.Point{}, draw.Src)
	opts.Interpolator.Scale(resized, r, photo, photo.Bounds(), xdraw.Over, nil)

	draw.DrawMask(dst, r, resized, r.Min, m, r.Min, draw.Over)
	return nil
}

// clipRect returns the raster pixels country's photo is resized to.
func clipRect(country *catalog.Country, size projection.Size) image.Rectangle {
	return projection.BBoxToRect(country.BBox(), size).Clip(size)
}

// overlaps reports whether the masks of a and b share a covered pixel.
func overlaps(a, b *catalog.Country, opts *Options) bool {
	if !a.HasGeometry() || !b.HasGeometry() {
		return false
	}
	r := clipRect(a, opts.Size).Intersect(clipRect(b, opts.Size))
	if r.Empty() {
		return false
	}
	ma := mask.RasterizeRect(a.Geometry, opts.Size, r, opts.Mask)
	mb := mask.RasterizeRect(b.Geometry, opts.Size, r, opts.Mask)
	for i, v := range ma.Pix {
		if v != 0 && mb.Pix[i] != 0 {
			return true
		}
	}
	return false
}

func clone(src *image.RGBA) *image.RGBA {
	dst := &image.RGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}
