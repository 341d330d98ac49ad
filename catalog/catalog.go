// Package catalog holds the world country dataset: every country's code,
// names, boundary rings and cached bounding box.
//
// A Catalog is built once, at startup, and is read-only afterwards. It is
// safe to share a *Catalog and the *Country values it returns between
// goroutines; nothing in this package mutates them after construction.
package catalog

import (
	"errors"
	"log/slog"
)

// Common errors returned by this package.
var (
	ErrParseFailure    = errors.New("catalog: parse failure")
	ErrGeometryMissing = errors.New("catalog: country has no geometry")
)

// Options configures how dataset records are mapped onto countries.
type Options struct {
	// CodeKeys are the property names tried, in order, for the ISO alpha-2
	// code. The first usable value wins.
	CodeKeys []string
	// NameKeys and LocalNameKeys are tried the same way for display names.
	NameKeys      []string
	LocalNameKeys []string
	// UnknownCode marks a record as not assigned to any country.
	UnknownCode string

	Logger *slog.Logger
}

// DefaultOptions returns options matching the Natural Earth admin-0 datasets.
func DefaultOptions() *Options {
	return &Options{
		CodeKeys:      []string{"ISO_A2", "ISO_A2_EH", "iso_a2"},
		NameKeys:      []string{"NAME", "NAME_LONG", "name"},
		LocalNameKeys: []string{"NAME_JA"},
		UnknownCode:   "-99",
	}
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Catalog is an immutable, ordered set of countries indexed by code.
type Catalog struct {
	countries []*Country
	byCode    map[string]*Country
}

// New builds a catalog from countries, in the given order. Each country gets
// its catalog index and bounding box computed here. Countries sharing a code
// are merged: the first keeps its names, later geometries are appended.
// Countries with an empty code are ignored.
func New(countries []*Country) *Catalog {
	c := &Catalog{
		countries: make([]*Country, 0, len(countries)),
		byCode:    make(map[string]*Country, len(countries)),
	}

	for _, in := range countries {
		if in == nil || in.Code == "" {
			continue
		}
		if prev, ok := c.byCode[in.Code]; ok {
			prev.Geometry = prev.Geometry.merge(in.Geometry)
			prev.bbox = prev.Geometry.Bounds()
			continue
		}
		country := *in
		country.Geometry = country.Geometry.clone()
		country.bbox = country.Geometry.Bounds()
		country.index = len(c.countries)
		c.countries = append(c.countries, &country)
		c.byCode[country.Code] = &country
	}

	return c
}

// Get returns the country with the given ISO alpha-2 code.
func (c *Catalog) Get(code string) (*Country, bool) {
	country, ok := c.byCode[code]
	return country, ok
}

// All returns every country in catalog order. The slice is shared; callers
// must not modify it.
func (c *Catalog) All() []*Country {
	return c.countries
}

// Len returns the number of countries.
func (c *Catalog) Len() int {
	return len(c.countries)
}
