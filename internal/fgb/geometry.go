package fgb

import (
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
)

// geometryType reports the FlatGeobuf type for the areal geometries we store.
func geometryType(geom orb.Geometry) flattypes.GeometryType {
	switch geom.(type) {
	case orb.Polygon:
		return flattypes.GeometryTypePolygon
	case orb.MultiPolygon:
		return flattypes.GeometryTypeMultiPolygon
	default:
		return flattypes.GeometryTypeUnknown
	}
}

// encodeGeometry converts a Polygon or MultiPolygon into a writer.Geometry.
// Anything else yields nil.
func encodeGeometry(geom orb.Geometry, builder *flatbuffers.Builder) *writer.Geometry {
	switch v := geom.(type) {
	case orb.Polygon:
		return encodePolygon(v, builder)

	case orb.MultiPolygon:
		g := writer.NewGeometry(builder)
		g.SetType(flattypes.GeometryTypeMultiPolygon)
		parts := make([]writer.Geometry, 0, len(v))
		for _, poly := range v {
			parts = append(parts, *encodePolygon(poly, builder))
		}
		g.SetParts(parts)
		return g
	}

	return nil
}

func encodePolygon(poly orb.Polygon, builder *flatbuffers.Builder) *writer.Geometry {
	total := 0
	for _, ring := range poly {
		total += len(ring)
	}

	xy := make([]float64, 0, total*2)
	ends := make([]uint32, 0, len(poly))
	var n uint32
	for _, ring := range poly {
		for _, p := range ring {
			xy = append(xy, p[0], p[1])
		}
		n += uint32(len(ring))
		ends = append(ends, n)
	}

	g := writer.NewGeometry(builder)
	g.SetType(flattypes.GeometryTypePolygon)
	g.SetXY(xy)
	g.SetEnds(ends)
	return g
}

// decodeGeometry converts a FlatGeobuf geometry back into orb form.
// The header geometry type is used when the feature geometry leaves its own
// type unset, which is how single-type files are commonly written.
func decodeGeometry(g *flattypes.Geometry, headerType flattypes.GeometryType) orb.Geometry {
	if g == nil {
		return nil
	}

	t := g.Type()
	if t == flattypes.GeometryTypeUnknown {
		t = headerType
	}

	switch t {
	case flattypes.GeometryTypePolygon:
		if poly := decodePolygon(g); len(poly) > 0 {
			return poly
		}
	case flattypes.GeometryTypeMultiPolygon:
		if mp := decodeMultiPolygon(g); len(mp) > 0 {
			return mp
		}
	}

	return nil
}

func decodePolygon(g *flattypes.Geometry) orb.Polygon {
	xyLen := g.XyLength()
	if xyLen < 2 {
		return nil
	}

	endsLen := g.EndsLength()
	if endsLen == 0 {
		// a single ring spanning every coordinate
		ring := make(orb.Ring, 0, xyLen/2)
		for i := 0; i+1 < xyLen; i += 2 {
			ring = append(ring, orb.Point{g.Xy(i), g.Xy(i + 1)})
		}
		return orb.Polygon{ring}
	}

	poly := make(orb.Polygon, 0, endsLen)
	var start uint32
	for i := 0; i < endsLen; i++ {
		end := g.Ends(i)
		if end < start {
			return nil
		}
		ring := make(orb.Ring, 0, end-start)
		for j := start; j < end; j++ {
			idx := int(j) * 2
			if idx+1 >= xyLen {
				break
			}
			ring = append(ring, orb.Point{g.Xy(idx), g.Xy(idx + 1)})
		}
		poly = append(poly, ring)
		start = end
	}

	return poly
}

func decodeMultiPolygon(g *flattypes.Geometry) orb.MultiPolygon {
	partsLen := g.PartsLength()
	if partsLen == 0 {
		if poly := decodePolygon(g); len(poly) > 0 {
			return orb.MultiPolygon{poly}
		}
		return nil
	}

	mp := make(orb.MultiPolygon, 0, partsLen)
	for i := 0; i < partsLen; i++ {
		var part flattypes.Geometry
		if !g.Parts(&part, i) {
			continue
		}
		if poly := decodePolygon(&part); len(poly) > 0 {
			mp = append(mp, poly)
		}
	}

	return mp
}
