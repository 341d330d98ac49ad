// Package mask rasterizes country boundaries into coverage masks on the
// equirectangular raster defined by package projection.
//
// A pixel is covered when its center is inside the geometry under the same
// ray-casting rule catalog.Geometry.Contains uses, so what is drawn and what
// a tap selects agree at every coastline pixel.
package mask

import (
	"image"
	"sort"

	"github.com/tingold/geoatlas/catalog"
	"github.com/tingold/geoatlas/projection"
)

// Options controls mask rasterization.
type Options struct {
	// AntiAlias gives edge pixels fractional coverage by sampling a
	// Samples x Samples grid inside each pixel instead of its center.
	AntiAlias bool
	Samples   int
}

// DefaultOptions returns binary masks.
func DefaultOptions() *Options {
	return &Options{Samples: 4}
}

func (o *Options) samples() int {
	if o == nil || !o.AntiAlias {
		return 1
	}
	if o.Samples < 2 {
		return 4
	}
	return o.Samples
}

// Rasterize returns a mask covering the whole raster.
func Rasterize(g catalog.Geometry, size projection.Size, opts *Options) *image.Alpha {
	return RasterizeRect(g, size, size.Bounds(), opts)
}

// RasterizeRect returns a mask whose bounds are exactly r, in raster pixel
// coordinates. Pixels of r outside the raster stay uncovered.
func RasterizeRect(g catalog.Geometry, size projection.Size, r image.Rectangle, opts *Options) *image.Alpha {
	dst := image.NewAlpha(r)
	fill(dst, []region{{g: g, r: r.Intersect(size.Bounds())}}, size, opts.samples())
	return dst
}

// region is one geometry restricted to the pixels it may cover.
type region struct {
	g catalog.Geometry
	r image.Rectangle
}

// fill raises dst's coverage to the coverage of the union of regions. A
// sample counts once however many regions contain it, so regions sharing an
// edge leave no partially covered seam. Existing coverage is never lowered.
func fill(dst *image.Alpha, regions []region, size projection.Size, samples int) {
	var bounds image.Rectangle
	live := regions[:0:0]
	for _, rg := range regions {
		rg.r = rg.r.Intersect(dst.Rect)
		if rg.g.Empty() || rg.r.Empty() {
			continue
		}
		live = append(live, rg)
		bounds = bounds.Union(rg.r)
	}
	if len(live) == 0 {
		return
	}

	var xs []float64
	counts := make([]int, bounds.Dx())
	inside := make([]bool, bounds.Dx()*samples)
	total := samples * samples
	step := 1 / float64(samples)

	for py := bounds.Min.Y; py < bounds.Max.Y; py++ {
		lo, hi := bounds.Max.X, bounds.Min.X
		for sy := 0; sy < samples; sy++ {
			lat, _ := projection.FromPixel(0, float64(py)+(float64(sy)+0.5)*step, size)
			marked := false
			for _, rg := range live {
				if py < rg.r.Min.Y || py >= rg.r.Max.Y {
					continue
				}
				xs = rg.g.Crossings(lat, xs[:0])
				if len(xs) == 0 {
					continue
				}
				sort.Float64s(xs)

				k := 0
				for px := rg.r.Min.X; px < rg.r.Max.X; px++ {
					for sx := 0; sx < samples; sx++ {
						_, lon := projection.FromPixel(float64(px)+(float64(sx)+0.5)*step, 0, size)
						for k < len(xs) && xs[k] <= lon {
							k++
						}
						if (len(xs)-k)%2 == 1 {
							inside[(px-bounds.Min.X)*samples+sx] = true
							marked = true
						}
					}
				}
				lo, hi = min(lo, rg.r.Min.X), max(hi, rg.r.Max.X)
			}
			if !marked {
				continue
			}

			for px := lo; px < hi; px++ {
				cell := inside[(px-bounds.Min.X)*samples : (px-bounds.Min.X+1)*samples]
				for j, in := range cell {
					if in {
						counts[px-bounds.Min.X]++
						cell[j] = false
					}
				}
			}
		}
		if lo >= hi {
			continue
		}

		row := dst.Pix[dst.PixOffset(dst.Rect.Min.X, py):]
		for px := lo; px < hi; px++ {
			n := counts[px-bounds.Min.X]
			if n == 0 {
				continue
			}
			counts[px-bounds.Min.X] = 0
			if a := uint8(n * 0xff / total); a > row[px-dst.Rect.Min.X] {
				row[px-dst.Rect.Min.X] = a
			}
		}
	}
}
