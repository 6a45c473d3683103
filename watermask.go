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
	"context"
	"fmt"
	"runtime"

	"github.com/spatialmodel/seamap/internal/hash"
	"golang.org/x/sync/errgroup"
)

// PointKey quantizes a sample coordinate to 4 decimal places (about 11 m),
// which merges repeated reports of the same station without merging
// neighboring stations.
func PointKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// PointCache records, for every distinct sample coordinate, whether the
// coordinate is water. It is a fast filter for sample extraction only;
// the MaskGrid decides which raster cells are visible.
type PointCache struct {
	water       map[string]bool
	fingerprint string
}

// BuildPointCache classifies every distinct sample coordinate in samples
// against g. An empty geometry gives an empty cache.
func BuildPointCache(samples []GeoSample, g *WaterGeometry) *PointCache {
	c := &PointCache{
		water:       make(map[string]bool),
		fingerprint: pointCacheFingerprint(samples, g),
	}
	if g.Empty() {
		return c
	}
	for _, s := range samples {
		k := PointKey(s.Lat, s.Lon)
		if _, ok := c.water[k]; ok {
			continue
		}
		c.water[k] = g.IsWater(s.Lon, s.Lat)
	}
	return c
}

func pointCacheFingerprint(samples []GeoSample, g *WaterGeometry) string {
	coords := make([][2]float64, len(samples))
	for i, s := range samples {
		coords[i] = [2]float64{s.Lat, s.Lon}
	}
	return hash.Fingerprint(g.Polygons(), coords)
}

// Contains reports whether the coordinate is known to be water.
// Coordinates that were never classified are treated as land.
func (c *PointCache) Contains(lat, lon float64) bool {
	if c == nil {
		return false
	}
	return c.water[PointKey(lat, lon)]
}

// Len returns the number of distinct coordinates in the cache.
func (c *PointCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.water)
}

// WaterCount returns the number of distinct coordinates classified as water.
func (c *PointCache) WaterCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, w := range c.water {
		if w {
			n++
		}
	}
	return n
}

// Valid reports whether the cache was built from the same sample
// coordinates and geometry. A cache that is not valid must be rebuilt.
func (c *PointCache) Valid(samples []GeoSample, g *WaterGeometry) bool {
	return c != nil && c.fingerprint == pointCacheFingerprint(samples, g)
}

// MaskGrid classifies every cell of a grid as water or land. It is the
// only source of truth for raster cell visibility.
type MaskGrid struct {
	GridSpec
	Water []bool
}

// BuildMaskGrid evaluates g at every cell position of spec. Rows are
// classified concurrently. The result depends only on its inputs, so
// repeated calls give identical grids. An empty geometry gives a grid
// with no water.
func BuildMaskGrid(ctx context.Context, g *WaterGeometry, spec GridSpec) (*MaskGrid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	m := &MaskGrid{GridSpec: spec, Water: make([]bool, spec.Len())}
	if g.Empty() {
		return m, nil
	}
	lons, lats := spec.Lons(), spec.Lats()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(-1))
	for row := range lats {
		row := row
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for col, lon := range lons {
				m.Water[spec.Index(row, col)] = g.IsWater(lon, lats[row])
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("seamap: building water mask: %w", err)
	}
	return m, nil
}

// At reports whether the cell at (row, col) is water.
func (m *MaskGrid) At(row, col int) bool { return m.Water[m.Index(row, col)] }

// WaterCount returns the number of water cells.
func (m *MaskGrid) WaterCount() int {
	n := 0
	for _, w := range m.Water {
		if w {
			n++
		}
	}
	return n
}
