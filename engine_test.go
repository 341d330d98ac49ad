package geoatlas

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/tingold/geoatlas/catalog"
	"github.com/tingold/geoatlas/change"
	"github.com/tingold/geoatlas/compositor"
	"github.com/tingold/geoatlas/locate"
	"github.com/tingold/geoatlas/projection"
)

const dataset = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"NAME": "Alpha", "ISO_A2": "AA"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
    {"type": "Feature",
     "properties": {"NAME": "Bravo", "ISO_A2": "BB"},
     "geometry": {"type": "Polygon", "coordinates": [[[20,20],[30,20],[30,30],[20,30],[20,20]]]}},
    {"type": "Feature",
     "properties": {"NAME": "Charlie", "ISO_A2": "CC"},
     "geometry": null}
  ]
}`

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.Load([]byte(dataset), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts := DefaultOptions()
	opts.Compositor.Size = projection.Size{Width: 360, Height: 180}
	src := compositor.StaticImages{
		"old": solid(color.RGBA{R: 0xff, A: 0xff}),
		"new": solid(color.RGBA{B: 0xff, A: 0xff}),
		"c":   solid(color.RGBA{G: 0xff, A: 0xff}),
	}
	return New(cat, src, opts)
}

func TestEngine_CountryFor(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"A", 5, 5, "AA"},
		{"B", 25, 25, "BB"},
		{"ocean", 50, 50, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if c := e.CountryFor(tt.lat, tt.lon); c != nil {
				got = c.Code
			}
			if got != tt.want {
				t.Errorf("CountryFor(%v, %v) = %q, want %q", tt.lat, tt.lon, got, tt.want)
			}

			got = ""
			x, y, z := locate.LatLonToUnitSphere(tt.lat, tt.lon)
			if c := e.CountryForPoint(x, y, z); c != nil {
				got = c.Code
			}
			if got != tt.want {
				t.Errorf("CountryForPoint = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Update(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	if e.CurrentAtlas() != nil {
		t.Fatal("expected no atlas before the first update")
	}

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	photos := []change.Photo{
		{ID: "new", CountryCode: "AA", URL: "u2", CreatedAt: t0.Add(time.Hour)},
		{ID: "old", CountryCode: "AA", URL: "u1", CreatedAt: t0},
		{ID: "c", CountryCode: "CC", URL: "u3", CreatedAt: t0},
	}

	atlas, err := e.Update(ctx, photos)
	if err != nil {
		t.Fatal(err)
	}
	if e.CurrentAtlas() != atlas {
		t.Error("CurrentAtlas does not return the published atlas")
	}
	if got := atlas.Image().RGBAAt(185, 85); got.B != 0xff || got.R != 0 {
		t.Errorf("A center = %v, want the later blue photo", got)
	}

	// dropping C's photo is a removal
	again, err := e.Update(ctx, photos[:2])
	if err != nil {
		t.Fatal(err)
	}
	if again.Mode() != compositor.ModeFull {
		t.Errorf("removal mode = %v, want full", again.Mode())
	}
}
