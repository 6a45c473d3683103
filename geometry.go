/*
Copyright © 2025 the Seamap authors.
This file is part of Seamap.

Seamap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Seamap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Seamap.  If not, see <http://www.gnu.org/licenses/>.
*/

package seamap

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// WaterGeometry is an immutable set of polygons, in longitude/latitude
// coordinates, that defines navigable water. Polygon holes are honored.
type WaterGeometry struct {
	polygons []geom.Polygon
	index    *rtree.Rtree
	bounds   *geom.Bounds
}

// waterPolygon wraps a polygon so it can be stored in the spatial index.
type waterPolygon struct {
	geom.Polygon
}

// NewWaterGeometry indexes the polygons in g. Multi-polygons are split
// into their member polygons and polygons without a usable outer ring
// are dropped.
func NewWaterGeometry(g ...geom.Polygonal) *WaterGeometry {
	w := &WaterGeometry{index: rtree.NewTree(25, 50)}
	for _, pg := range g {
		if pg == nil {
			continue
		}
		for _, p := range pg.Polygons() {
			if len(p) == 0 || len(p[0]) < 3 {
				continue
			}
			w.polygons = append(w.polygons, p)
			w.index.Insert(&waterPolygon{Polygon: p})
			if w.bounds == nil {
				w.bounds = p.Bounds().Copy()
			} else {
				w.bounds.Extend(p.Bounds())
			}
		}
	}
	return w
}

// IsWater reports whether the point (lon, lat) lies inside, or on the
// boundary of, at least one water polygon. It always returns false for
// an empty geometry.
func (w *WaterGeometry) IsWater(lon, lat float64) bool {
	if w == nil || len(w.polygons) == 0 {
		return false
	}
	pt := geom.Point{X: lon, Y: lat}
	for _, item := range w.index.SearchIntersect(pt.Bounds()) {
		p := item.(*waterPolygon)
		if pt.Within(p.Polygon) != geom.Outside {
			return true
		}
	}
	return false
}

// Len returns the number of indexed polygons.
func (w *WaterGeometry) Len() int {
	if w == nil {
		return 0
	}
	return len(w.polygons)
}

// Empty reports whether the geometry holds no polygons.
func (w *WaterGeometry) Empty() bool { return w.Len() == 0 }

// Polygons returns the indexed polygons.
func (w *WaterGeometry) Polygons() []geom.Polygon {
	if w == nil {
		return nil
	}
	return w.polygons
}

// BBox returns the extent of the geometry. When the geometry is empty
// it returns FallbackBBox and false.
func (w *WaterGeometry) BBox() (BoundingBox, bool) {
	if w.Empty() || w.bounds == nil {
		return FallbackBBox, false
	}
	return bboxFromBounds(w.bounds), true
}
