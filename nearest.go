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

// valuePoint is a scattered data point stored in a nearest-neighbor index.
type valuePoint struct {
	geom.Point
	value float64
}

// pointIndex answers nearest-neighbor queries over a set of scattered
// points, using Euclidean distance in longitude/latitude space.
type pointIndex struct {
	tree *rtree.Rtree
	n    int
}

func newPointIndex(lons, lats, values []float64) *pointIndex {
	ix := &pointIndex{tree: rtree.NewTree(25, 50)}
	for i, v := range values {
		ix.tree.Insert(&valuePoint{Point: geom.Point{X: lons[i], Y: lats[i]}, value: v})
		ix.n++
	}
	return ix
}

// nearest returns the value of the point closest to (lon, lat). It
// returns false if the index is empty.
func (ix *pointIndex) nearest(lon, lat float64) (float64, bool) {
	if ix == nil || ix.n == 0 {
		return 0, false
	}
	vp, ok := ix.tree.NearestNeighbor(geom.Point{X: lon, Y: lat}).(*valuePoint)
	if !ok {
		return 0, false
	}
	return vp.value, true
}

// fillNearest sets every unresolved cell of g to the value of the
// nearest point in ix and returns the number of cells it set.
func (ix *pointIndex) fillNearest(g *Grid) int {
	lons, lats := g.Lons(), g.Lats()
	n := 0
	for row, lat := range lats {
		for col, lon := range lons {
			i := g.Index(row, col)
			if isResolved(g.Values[i]) {
				continue
			}
			if v, ok := ix.nearest(lon, lat); ok {
				g.Values[i] = v
				n++
			}
		}
	}
	return n
}
