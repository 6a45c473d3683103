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
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// BoundingBox is a rectangular geographic extent in decimal degrees.
type BoundingBox struct {
	LonMin, LonMax, LatMin, LatMax float64
}

// FallbackBBox is used when no water geometry is available to derive
// an extent from.
var FallbackBBox = BoundingBox{LonMin: 7.5, LonMax: 13.5, LatMin: 54.5, LatMax: 58.0}

// NewBoundingBox creates a bounding box from a
// [lon_min, lon_max, lat_min, lat_max] slice.
func NewBoundingBox(v []float64) (BoundingBox, error) {
	if len(v) != 4 {
		return BoundingBox{}, &ConfigurationError{Field: "BBox",
			Msg: fmt.Sprintf("need 4 values (lon_min, lon_max, lat_min, lat_max), got %d", len(v))}
	}
	b := BoundingBox{LonMin: v[0], LonMax: v[1], LatMin: v[2], LatMax: v[3]}
	return b, b.Validate()
}

// Validate returns a *ConfigurationError if b is degenerate on either axis.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.LonMin, b.LonMax, b.LatMin, b.LatMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Field: "BBox", Msg: "coordinates must be finite"}
		}
	}
	if b.LonMin >= b.LonMax {
		return &ConfigurationError{Field: "BBox",
			Msg: fmt.Sprintf("lon_min (%g) must be less than lon_max (%g)", b.LonMin, b.LonMax)}
	}
	if b.LatMin >= b.LatMax {
		return &ConfigurationError{Field: "BBox",
			Msg: fmt.Sprintf("lat_min (%g) must be less than lat_max (%g)", b.LatMin, b.LatMax)}
	}
	return nil
}

// Slice returns b as [lon_min, lon_max, lat_min, lat_max].
func (b BoundingBox) Slice() []float64 {
	return []float64{b.LonMin, b.LonMax, b.LatMin, b.LatMax}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%g, %g, %g, %g]", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
}

// bboxFromBounds converts geometry bounds to a BoundingBox.
func bboxFromBounds(g *geom.Bounds) BoundingBox {
	return BoundingBox{LonMin: g.Min.X, LonMax: g.Max.X, LatMin: g.Min.Y, LatMax: g.Max.Y}
}

// GridSpec describes a square Resolution×Resolution grid spanning BBox.
// Cell positions are evenly spaced and include the bbox edges, so
// row 0 lies on LatMax, the last row on LatMin, column 0 on LonMin and
// the last column on LonMax.
type GridSpec struct {
	BBox       BoundingBox
	Resolution int
}

// Validate returns a *ConfigurationError if the grid cannot be built.
func (g GridSpec) Validate() error {
	if g.Resolution <= 0 {
		return &ConfigurationError{Field: "Resolution",
			Msg: fmt.Sprintf("must be positive, got %d", g.Resolution)}
	}
	return g.BBox.Validate()
}

// Len is the number of cells in the grid.
func (g GridSpec) Len() int { return g.Resolution * g.Resolution }

// Lons returns the longitude of each grid column, west to east.
func (g GridSpec) Lons() []float64 {
	return linspace(g.BBox.LonMin, g.BBox.LonMax, g.Resolution)
}

// Lats returns the latitude of each grid row, north to south.
func (g GridSpec) Lats() []float64 {
	return linspace(g.BBox.LatMax, g.BBox.LatMin, g.Resolution)
}

// Index returns the flat index of the cell at (row, col).
func (g GridSpec) Index(row, col int) int { return row*g.Resolution + col }

// linspace returns n evenly spaced values from a to b inclusive.
// A single value is placed halfway between a and b.
func linspace(a, b float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{(a + b) / 2}
	}
	return floats.Span(make([]float64, n), a, b)
}

// Grid is a scalar field over a GridSpec. Values are stored row-major,
// and unresolved cells hold NaN.
type Grid struct {
	GridSpec
	Values []float64
}

// NewGrid returns a grid with every cell unresolved.
func NewGrid(spec GridSpec) *Grid {
	v := make([]float64, spec.Len())
	for i := range v {
		v[i] = math.NaN()
	}
	return &Grid{GridSpec: spec, Values: v}
}

// At returns the value at (row, col).
func (g *Grid) At(row, col int) float64 { return g.Values[g.Index(row, col)] }

// Unresolved returns the number of cells that do not hold a finite value.
func (g *Grid) Unresolved() int {
	n := 0
	for _, v := range g.Values {
		if !isResolved(v) {
			n++
		}
	}
	return n
}

func isResolved(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
