package catalog

import (
	"github.com/paulmach/orb"
)

// Geometry is a country's boundary. It keeps the polygon structure of the
// source (outer ring first, then holes) and a flattened ring list in the same
// order, which is what point tests and masks iterate.
//
// Inside-ness uses the even-odd rule across all rings of the country: a point
// is inside when a ray cast towards increasing longitude crosses an odd
// number of edges. Holes therefore read as holes whatever their winding.
type Geometry struct {
	polygons orb.MultiPolygon
	rings    []orb.Ring
}

// NewGeometry accepts Polygon, MultiPolygon and Ring values in (lon, lat)
// order. Other types, and rings with fewer than three points, are dropped.
func NewGeometry(g orb.Geometry) Geometry {
	var mp orb.MultiPolygon
	switch v := g.(type) {
	case orb.MultiPolygon:
		mp = v
	case orb.Polygon:
		mp = orb.MultiPolygon{v}
	case orb.Ring:
		mp = orb.MultiPolygon{orb.Polygon{v}}
	}

	var out Geometry
	for _, poly := range mp {
		var kept orb.Polygon
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			kept = append(kept, ring)
		}
		if len(kept) == 0 {
			continue
		}
		out.polygons = append(out.polygons, kept)
		out.rings = append(out.rings, kept...)
	}

	return out
}

// Polygons returns the polygon structure. Callers must not modify it.
func (g Geometry) Polygons() orb.MultiPolygon {
	return g.polygons
}

// Rings returns every ring of every polygon, flattened in order.
func (g Geometry) Rings() []orb.Ring {
	return g.rings
}

// Empty reports whether there is nothing to draw or hit.
func (g Geometry) Empty() bool {
	return len(g.rings) == 0
}

// Bounds scans every ring point once. It returns the zero box when empty.
func (g Geometry) Bounds() BoundingBox {
	if g.Empty() {
		return BoundingBox{}
	}
	return BoundingBoxFromBound(g.polygons.Bound())
}

// Contains is the ray-casting point test.
func (g Geometry) Contains(lat, lon float64) bool {
	inside := false
	for _, ring := range g.rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := ring[i][0], ring[i][1]
			xj, yj := ring[j][0], ring[j][1]
			if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
	}
	return inside
}

// Crossings appends to dst the longitude of every edge the parallel at lat
// crosses, using the same edge rule and arithmetic as Contains. Contains(lat, lon)
// is true exactly when an odd number of the returned values is greater than lon.
// The result is unsorted.
func (g Geometry) Crossings(lat float64, dst []float64) []float64 {
	for _, ring := range g.rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := ring[i][0], ring[i][1]
			xj, yj := ring[j][0], ring[j][1]
			if (yi > lat) != (yj > lat) {
				dst = append(dst, (xj-xi)*(lat-yi)/(yj-yi)+xi)
			}
		}
	}
	return dst
}

func (g Geometry) merge(o Geometry) Geometry {
	if o.Empty() {
		return g
	}
	mp := append(g.polygons.Clone(), o.polygons.Clone()...)
	return NewGeometry(mp)
}

func (g Geometry) clone() Geometry {
	if g.Empty() {
		return Geometry{}
	}
	return NewGeometry(g.polygons.Clone())
}
