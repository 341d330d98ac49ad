// Package projection maps latitude/longitude onto an equirectangular raster.
//
// Pixel (0, 0) is the top-left corner at (lat 90, lon -180); x grows east and
// y grows south. Coordinates are continuous: the center of pixel (i, j) is at
// (i+0.5, j+0.5). Inputs outside lat [-90, 90] or lon [-180, 180] map outside
// the raster and are left for callers to clip.
package projection

import (
	"image"
	"math"

	"github.com/tingold/geoatlas/catalog"
)

// Size is the raster size in pixels.
type Size struct {
	Width, Height int
}

// DefaultSize is the standard atlas size.
var DefaultSize = Size{Width: 2048, Height: 1024}

// Bounds returns the raster as an image.Rectangle anchored at the origin.
func (s Size) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// ToPixel applies x = (lon+180)/360*width, y = (90-lat)/180*height.
func ToPixel(lat, lon float64, size Size) (x, y float64) {
	x = (lon + 180) / 360 * float64(size.Width)
	y = (90 - lat) / 180 * float64(size.Height)
	return x, y
}

// FromPixel is the inverse of ToPixel.
func FromPixel(x, y float64, size Size) (lat, lon float64) {
	lon = x/float64(size.Width)*360 - 180
	lat = 90 - y/float64(size.Height)*180
	return lat, lon
}

// PixelCenter returns the coordinate at the center of pixel (px, py).
func PixelCenter(px, py int, size Size) (lat, lon float64) {
	return FromPixel(float64(px)+0.5, float64(py)+0.5, size)
}

// Rect is a rectangle in continuous pixel coordinates. It may extend past the
// raster or have zero size.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Dx and Dy are the rectangle's width and height, never negative.
func (r Rect) Dx() float64 { return math.Max(0, r.MaxX-r.MinX) }
func (r Rect) Dy() float64 { return math.Max(0, r.MaxY-r.MinY) }

// BBoxToRect projects the box's top-left (maxLat, minLon) and bottom-right
// (minLat, maxLon) corners.
func BBoxToRect(b catalog.BoundingBox, size Size) Rect {
	x0, y0 := ToPixel(b.MaxLat, b.MinLon, size)
	x1, y1 := ToPixel(b.MinLat, b.MaxLon, size)
	return Rect{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}
}

// Clip returns the whole pixels the rectangle touches, limited to the raster.
// The result is empty, never negative, when nothing is left; NaN edges clip to
// empty as well.
func (r Rect) Clip(size Size) image.Rectangle {
	if math.IsNaN(r.MinX + r.MinY + r.MaxX + r.MaxY) {
		return image.Rectangle{}
	}

	w, h := float64(size.Width), float64(size.Height)
	x0 := math.Floor(clamp(r.MinX, 0, w))
	y0 := math.Floor(clamp(r.MinY, 0, h))
	x1 := math.Ceil(clamp(r.MaxX, 0, w))
	y1 := math.Ceil(clamp(r.MaxY, 0, h))

	out := image.Rect(int(x0), int(y0), int(x1), int(y1))
	if r.MaxX <= r.MinX || r.MaxY <= r.MinY || out.Empty() {
		return image.Rectangle{}
	}
	return out.Intersect(size.Bounds())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
