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
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultOpacity is the alpha given to water pixels.
const DefaultOpacity = 0.8

// Raster is a colored, masked grid ready for encoding. Pixel (0, 0) is
// the north-west corner of BBox.
type Raster struct {
	Image      *image.NRGBA
	BBox       BoundingBox
	Resolution int
}

// Composite colors g with scale and applies mask: land cells are fully
// transparent whatever their value, and water cells get the given
// opacity. g and mask must share the same grid.
func Composite(g *Grid, mask *MaskGrid, scale *ColorScale, opacity float64) (*Raster, error) {
	if g.GridSpec != mask.GridSpec {
		return nil, fmt.Errorf("seamap: grid %v×%d does not match mask %v×%d",
			g.BBox, g.Resolution, mask.BBox, mask.Resolution)
	}
	if opacity < 0 || opacity > 1 || math.IsNaN(opacity) {
		return nil, &ConfigurationError{Field: "Opacity", Msg: fmt.Sprintf("must be within [0, 1], got %g", opacity)}
	}
	alpha := uint8(math.Round(opacity * 255))
	r := g.Resolution
	img := image.NewNRGBA(image.Rect(0, 0, r, r))
	for row := 0; row < r; row++ {
		for col := 0; col < r; col++ {
			i := g.Index(row, col)
			if !mask.Water[i] || !isResolved(g.Values[i]) {
				// NewNRGBA starts fully transparent.
				continue
			}
			c := scale.Color(g.Values[i])
			c.A = alpha
			img.SetNRGBA(col, row, c)
		}
	}
	return &Raster{Image: img, BBox: g.BBox, Resolution: r}, nil
}

// FieldStats summarizes the grid values at water cells.
type FieldStats struct {
	Min, Max, Mean float64
	Count          int
}

// WaterStats returns statistics of g over the water cells of mask.
func WaterStats(g *Grid, mask *MaskGrid) FieldStats {
	vals := make([]float64, 0, mask.WaterCount())
	for i, w := range mask.Water {
		if w && isResolved(g.Values[i]) {
			vals = append(vals, g.Values[i])
		}
	}
	if len(vals) == 0 {
		return FieldStats{}
	}
	return FieldStats{
		Min:   floats.Min(vals),
		Max:   floats.Max(vals),
		Mean:  floats.Sum(vals) / float64(len(vals)),
		Count: len(vals),
	}
}
