package fgb

import (
	"io"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb/geojson"
)

// Write encodes the areal features of fc as FlatGeobuf. Features without a
// Polygon or MultiPolygon geometry are skipped.
func Write(w io.Writer, fc *geojson.FeatureCollection, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	features := make([]*geojson.Feature, 0)
	if fc != nil {
		for _, f := range fc.Features {
			if f != nil && geometryType(f.Geometry) != flattypes.GeometryTypeUnknown {
				features = append(features, f)
			}
		}
	}
	if len(features) == 0 {
		return ErrNoFeatures
	}

	geomType := geometryType(features[0].Geometry)
	for _, f := range features[1:] {
		if geometryType(f.Geometry) != geomType {
			geomType = flattypes.GeometryTypeUnknown
			break
		}
	}

	builder := flatbuffers.NewBuilder(4096)
	header := writer.NewHeader(builder)
	header.SetGeometryType(geomType)
	if opts.Name != "" {
		header.SetName(opts.Name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}

	cols := schema(features)
	if len(cols) > 0 {
		header.SetColumns(writerColumns(cols, builder))
	}

	gen := &featureGenerator{features: features, columns: cols}
	_, err := writer.NewWriter(header, opts.IncludeIndex, gen, nil).Write(w)
	return err
}

// featureGenerator feeds features to the upstream writer one at a time.
type featureGenerator struct {
	features []*geojson.Feature
	columns  []column
	index    int
}

func (g *featureGenerator) Generate() *writer.Feature {
	if g.index >= len(g.features) {
		return nil
	}

	f := g.features[g.index]
	g.index++

	builder := flatbuffers.NewBuilder(1024)
	feature := writer.NewFeature(builder)
	feature.SetGeometry(encodeGeometry(f.Geometry, builder))
	if props := encodeProperties(f.Properties, g.columns); len(props) > 0 {
		feature.SetProperties(props)
	}

	return feature
}
