// Package locate answers which country contains a coordinate.
//
// Country bounding boxes are held in an R-tree. The tree only narrows the
// search: every candidate is re-checked against its inclusive bounding box
// and then against its exact geometry, and candidates are tried in catalog
// order so overlapping data always resolves the same way.
package locate

import (
	"log/slog"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/tingold/geoatlas/catalog"
)

// pad widens degenerate boxes and query points so that rtreego, which treats
// touching rectangles as disjoint, still reports boxes that contain the
// point on an edge.
const pad = 1e-9

// Locator resolves coordinates against one catalog. It is read-only after New
// and safe for concurrent use.
type Locator struct {
	cat  *catalog.Catalog
	tree *rtreego.Rtree
}

type entry struct {
	country *catalog.Country
	rect    rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Options configures a Locator.
type Options struct {
	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// New indexes every country of cat that has geometry. opts may be nil.
func New(cat *catalog.Catalog, opts *Options) *Locator {
	logger := opts.logger()
	var objs []rtreego.Spatial
	for _, c := range cat.All() {
		if !c.HasGeometry() {
			continue
		}
		b := c.BBox()
		rect, err := rtreego.NewRect(
			rtreego.Point{b.MinLon - pad, b.MinLat - pad},
			[]float64{b.MaxLon - b.MinLon + 2*pad, b.MaxLat - b.MinLat + 2*pad},
		)
		if err != nil {
			logger.Debug("locate_index_skipped", "code", c.Code, "error", err)
			continue
		}
		objs = append(objs, &entry{country: c, rect: rect})
	}
	logger.Debug("locator_built", "countries", cat.Len(), "indexed", len(objs))

	return &Locator{
		cat:  cat,
		tree: rtreego.NewTree(2, 25, 50, objs...),
	}
}

// Locate returns the country containing (lat, lon), or nil for ocean or
// missing data.
func (l *Locator) Locate(lat, lon float64) *catalog.Country {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return nil
	}

	found := l.tree.SearchIntersect(rtreego.Point{lon, lat}.ToRect(pad))
	if len(found) == 0 {
		return nil
	}

	candidates := make([]*catalog.Country, 0, len(found))
	for _, s := range found {
		c := s.(*entry).country
		if c.BBox().Contains(lat, lon) {
			candidates = append(candidates, c)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Index() < candidates[j].Index()
	})

	for _, c := range candidates {
		if c.Geometry.Contains(lat, lon) {
			return c
		}
	}
	return nil
}

// LocateUnitSphere converts a point on (or off) the unit sphere with
// UnitSphereToLatLon and locates it. The zero vector has no direction and
// returns nil.
func (l *Locator) LocateUnitSphere(x, y, z float64) *catalog.Country {
	lat, lon, ok := UnitSphereToLatLon(x, y, z)
	if !ok {
		return nil
	}
	return l.Locate(lat, lon)
}

// Catalog returns the catalog the locator was built from.
func (l *Locator) Catalog() *catalog.Catalog {
	return l.cat
}
