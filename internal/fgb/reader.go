package fgb

import (
	"fmt"

	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb/geojson"
)

// Header summarizes a FlatGeobuf file.
type Header struct {
	Name          string
	GeometryType  string
	FeaturesCount uint64
	Envelope      [4]float64 // minX, minY, maxX, maxY
	HasIndex      bool
}

// ReadHeader returns the header of a FlatGeobuf buffer without decoding features.
func ReadHeader(data []byte) (*Header, error) {
	fgb, err := flatgeobuf.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	h := fgb.Header()
	if h == nil {
		return nil, ErrInvalidData
	}

	header := &Header{
		Name:          string(h.Name()),
		GeometryType:  flattypes.EnumNamesGeometryType[h.GeometryType()],
		FeaturesCount: h.FeaturesCount(),
		HasIndex:      h.IndexNodeSize() > 0,
	}
	if h.EnvelopeLength() >= 4 {
		header.Envelope = [4]float64{h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3)}
	}

	return header, nil
}

// Read decodes every feature in a FlatGeobuf buffer.
//
// The upstream Go reader only iterates features through its spatial index, so
// the file must have been written with one. Features whose geometry is not
// areal keep their properties and carry a nil geometry.
func Read(data []byte) (*geojson.FeatureCollection, error) {
	fgb, err := flatgeobuf.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	h := fgb.Header()
	if h == nil {
		return nil, ErrInvalidData
	}

	fc := geojson.NewFeatureCollection()
	if h.FeaturesCount() == 0 {
		return fc, nil
	}
	if h.IndexNodeSize() == 0 || h.EnvelopeLength() < 4 {
		return nil, ErrNoIndex
	}

	features, err := fgb.Search(h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	headerType := h.GeometryType()
	for _, f := range features {
		feature, err := decodeFeature(f, h, headerType)
		if err != nil {
			return nil, err
		}
		if feature != nil {
			fc.Append(feature)
		}
	}

	return fc, nil
}

func decodeFeature(f *flattypes.Feature, h *flattypes.Header, headerType flattypes.GeometryType) (*geojson.Feature, error) {
	if f == nil {
		return nil, nil
	}

	var g flattypes.Geometry
	feature := geojson.NewFeature(decodeGeometry(f.Geometry(&g), headerType))

	if n := f.PropertiesLength(); n > 0 && h.ColumnsLength() > 0 {
		raw := make([]byte, n)
		for i := 0; i < n; i++ {
			raw[i] = byte(f.Properties(i))
		}
		props, err := decodeProperties(raw, h)
		if err != nil {
			return nil, err
		}
		feature.Properties = props
	}

	return feature, nil
}
