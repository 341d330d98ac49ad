// Package fgb reads and writes polygon feature datasets in the FlatGeobuf
// binary format. It covers the subset a country boundary dataset needs:
// Polygon and MultiPolygon geometries with scalar property columns.
package fgb

import (
	"errors"
)

// Common errors returned by this package.
var (
	ErrInvalidData = errors.New("fgb: invalid data")
	ErrNoIndex     = errors.New("fgb: file has no spatial index")
	ErrNoFeatures  = errors.New("fgb: no features")
	ErrUnsupported = errors.New("fgb: unsupported geometry type")
)

// Options configures FlatGeobuf writing.
type Options struct {
	Name        string // Layer name
	Description string // Layer description

	// IncludeIndex writes the packed R-tree. Files without one cannot be
	// iterated by Read.
	IncludeIndex bool
}

// DefaultOptions returns default options for writing FlatGeobuf files.
func DefaultOptions() *Options {
	return &Options{
		IncludeIndex: true,
	}
}
