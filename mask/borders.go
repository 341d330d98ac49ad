package mask

import (
	"image"
	"image/color"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/tingold/geoatlas/catalog"
	"github.com/tingold/geoatlas/projection"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// BorderPath is one country ring projected into raster pixel coordinates.
type BorderPath struct {
	Code   string
	Points orb.Ring
}

// RasterizeAllBorders fills the union of every country into one land mask and
// returns the projected rings separately. With anti-aliasing a sample is
// covered once whichever country holds it, so shared edges come out fully
// opaque. Countries without geometry are skipped.
func RasterizeAllBorders(cat *catalog.Catalog, size projection.Size, opts *Options) (*image.Alpha, []BorderPath) {
	land := image.NewAlpha(size.Bounds())
	var paths []BorderPath
	var regions []region

	for _, c := range cat.All() {
		if !c.HasGeometry() {
			continue
		}

		regions = append(regions, region{g: c.Geometry, r: projection.BBoxToRect(c.BBox(), size).Clip(size)})

		for _, ring := range c.Geometry.Rings() {
			pts := make(orb.Ring, 0, len(ring)+1)
			for _, p := range ring {
				x, y := projection.ToPixel(p[1], p[0], size)
				pts = append(pts, orb.Point{x, y})
			}
			if !pts.Closed() {
				pts = append(pts, pts[0])
			}
			paths = append(paths, BorderPath{Code: c.Code, Points: pts})
		}
	}

	fill(land, regions, size, opts.samples())
	return land, paths
}

// StrokeBorders draws paths onto dst with the given line width in pixels,
// compositing col over what is already there. Lines are anti-aliased.
func StrokeBorders(dst draw.Image, paths []BorderPath, width float64, col color.Color) {
	b := dst.Bounds()
	if b.Empty() || width <= 0 || len(paths) == 0 {
		return
	}

	half := width / 2
	view := orb.Bound{
		Min: orb.Point{float64(b.Min.X) - width, float64(b.Min.Y) - width},
		Max: orb.Point{float64(b.Max.X) + width, float64(b.Max.Y) + width},
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(b.Min.X), float64(b.Min.Y)

	for _, path := range paths {
		for _, ls := range clip.LineString(view, orb.LineString(path.Points)) {
			for i := 1; i < len(ls); i++ {
				segment(z, ls[i-1][0]-ox, ls[i-1][1]-oy, ls[i][0]-ox, ls[i][1]-oy, half)
			}
		}
	}

	z.Draw(dst, b, image.NewUniform(col), image.Point{})
}

// segment adds the quad of half-width h around a line segment. Every quad is
// wound the same way so overlapping quads add up instead of cancelling.
func segment(z *vector.Rasterizer, x0, y0, x1, y1, h float64) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*h, dx/l*h

	z.MoveTo(float32(x0+nx), float32(y0+ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x0-nx), float32(y0-ny))
	z.ClosePath()
}
