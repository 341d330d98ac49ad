package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tingold/geoatlas/internal/fgb"
)

// Load parses a GeoJSON FeatureCollection of countries. Each feature carries
// a Polygon or MultiPolygon geometry in [longitude, latitude] pairs; the
// multipolygon parts of one country end up in one Geometry.
//
// Features without a usable code, or with the sentinel unknown code, are
// dropped. Features without areal geometry are kept with an empty Geometry.
// Malformed input returns an error wrapping ErrParseFailure.
func Load(data []byte, opts *Options) (*Catalog, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%w: expected FeatureCollection, got %q", ErrParseFailure, fc.Type)
	}

	return fromFeatures(fc.Features, opts), nil
}

// LoadFlatGeobuf parses the same records from a FlatGeobuf buffer written
// with a spatial index, such as one produced by WriteFlatGeobuf.
func LoadFlatGeobuf(data []byte, opts *Options) (*Catalog, error) {
	fc, err := fgb.Read(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	return fromFeatures(fc.Features, opts), nil
}

// WriteFlatGeobuf stores the catalog as FlatGeobuf with ISO_A2, NAME and
// NAME_JA properties. Countries without geometry have nothing to store and
// are left out.
func (c *Catalog) WriteFlatGeobuf(w io.Writer) error {
	fc := geojson.NewFeatureCollection()
	for _, country := range c.countries {
		if !country.HasGeometry() {
			continue
		}

		var g orb.Geometry = country.Geometry.Polygons()
		if polys := country.Geometry.Polygons(); len(polys) == 1 {
			g = polys[0]
		}

		f := geojson.NewFeature(g)
		f.Properties = geojson.Properties{
			"ISO_A2": country.Code,
			"NAME":   country.Name,
		}
		if country.LocalName != "" {
			f.Properties["NAME_JA"] = country.LocalName
		}
		fc.Append(f)
	}

	return fgb.Write(w, fc, &fgb.Options{
		Name:         "countries",
		Description:  "admin-0 country boundaries",
		IncludeIndex: true,
	})
}

func fromFeatures(features []*geojson.Feature, opts *Options) *Catalog {
	if opts == nil {
		opts = DefaultOptions()
	}
	log := opts.logger()

	countries := make([]*Country, 0, len(features))
	for i, f := range features {
		if f == nil {
			continue
		}

		code := firstString(f.Properties, opts.CodeKeys, opts.UnknownCode)
		if code == "" {
			log.Debug("country_dropped", "feature", i, "reason", "no_code")
			continue
		}

		country := &Country{
			Code:      code,
			Name:      firstString(f.Properties, opts.NameKeys, ""),
			LocalName: firstString(f.Properties, opts.LocalNameKeys, ""),
			Geometry:  NewGeometry(f.Geometry),
		}
		if country.Name == "" {
			country.Name = code
		}
		if country.Geometry.Empty() {
			log.Debug("country_geometry_missing", "code", code)
		}
		countries = append(countries, country)
	}

	c := New(countries)
	for _, country := range c.countries {
		if country.BBox().SpansAntimeridian() {
			log.Debug("country_spans_antimeridian", "code", country.Code,
				"min_lon", country.BBox().MinLon, "max_lon", country.BBox().MaxLon)
		}
	}
	log.Info("catalog_loaded", "countries", c.Len(), "features", len(features))

	return c
}

// firstString returns the first non-empty string under keys, skipping the
// unknown sentinel.
func firstString(props geojson.Properties, keys []string, unknown string) string {
	for _, k := range keys {
		s, ok := props[k].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || (unknown != "" && s == unknown) {
			continue
		}
		return s
	}
	return ""
}
