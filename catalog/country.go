package catalog

import (
	"github.com/paulmach/orb"
)

// Country is one entry of the catalog.
//
// Countries handed out by a Catalog are shared and read-only: the catalog
// copies its input in New, and callers must not reassign Geometry on a
// country obtained from Get or All.
type Country struct {
	Code      string // ISO 3166-1 alpha-2, unique within a catalog
	Name      string
	LocalName string // optional localized name
	Geometry  Geometry

	bbox BoundingBox

	index int
}

// Index is the position of the country in catalog order.
func (c *Country) Index() int {
	return c.index
}

// BBox is computed by the catalog from Geometry when the country is added.
// It is the zero value when the country has no geometry.
func (c *Country) BBox() BoundingBox {
	return c.bbox
}

// HasGeometry reports whether the country carries any usable ring.
func (c *Country) HasGeometry() bool {
	return !c.Geometry.Empty()
}

// DisplayName returns the localized name when asked for and available.
func (c *Country) DisplayName(localized bool) string {
	if localized && c.LocalName != "" {
		return c.LocalName
	}
	if c.Name != "" {
		return c.Name
	}
	return c.Code
}

// Contains reports whether (lat, lon) lies inside the country. The bounding
// box is checked first; it never decides a hit on its own.
func (c *Country) Contains(lat, lon float64) bool {
	if !c.HasGeometry() || !c.bbox.Contains(lat, lon) {
		return false
	}
	return c.Geometry.Contains(lat, lon)
}

// BoundingBox is the axis-aligned extent of a country in degrees.
// Min is never greater than Max on either axis.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundingBoxFromBound converts an orb.Bound, whose points are (lon, lat).
func BoundingBoxFromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		MinLat: b.Min[1], MaxLat: b.Max[1],
		MinLon: b.Min[0], MaxLon: b.Max[0],
	}
}

// Bound returns the box as an orb.Bound in (lon, lat) order.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Contains is inclusive on every edge.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Center is the midpoint of the box. It is a locality hint only: the
// country's shape may not contain it.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// SpansAntimeridian flags boxes wider than half the globe, which is what a
// naive min/max scan produces for rings crossing longitude ±180.
func (b BoundingBox) SpansAntimeridian() bool {
	return b.MaxLon-b.MinLon > 180
}
