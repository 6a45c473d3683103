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
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrEmptyField is returned when a scattered field with no points is
// interpolated.
var ErrEmptyField = errors.New("seamap: scattered field has no points")

// These are the default interpolation settings.
const (
	DefaultEdgePoints     = 25
	DefaultFillIterations = 20
)

// Interpolator grids scattered fields in stages, each stage only
// touching cells the previous stages left unresolved:
//
//  1. Synthetic points are added along the grid edges, taking the value
//     of the nearest original point.
//  2. A piecewise cubic surface is evaluated inside the convex hull of
//     the points. Cells outside the hull stay unresolved; they are never
//     given a default value.
//  3. Remaining cells take the value of the nearest point.
//  4. Anything still unresolved is filled diffusively from its
//     neighbors, and finally from the nearest original point.
//  5. Negative values are clamped to zero for parameters that cannot
//     be negative.
type Interpolator struct {
	// EdgePoints is the number of synthetic points per grid edge.
	// Zero disables edge synthesis.
	EdgePoints int

	// FillIterations caps the diffusive fill.
	FillIterations int

	Log logrus.FieldLogger
}

// NewInterpolator returns an interpolator with the default settings.
func NewInterpolator() *Interpolator {
	return &Interpolator{
		EdgePoints:     DefaultEdgePoints,
		FillIterations: DefaultFillIterations,
		Log:            logrus.StandardLogger(),
	}
}

// InterpolationReport counts the cells resolved by each stage.
type InterpolationReport struct {
	Points, EdgePoints int

	Cubic, Nearest, Diffused, Backstop, Clamped int

	FillIterations int

	// Exhausted is set when the diffusive fill hit its iteration cap
	// with cells still unresolved.
	Exhausted *InterpolationExhaustionError
}

// Interpolate grids f onto spec for parameter p. The returned grid has
// no unresolved cells. Points with a non-finite coordinate or value are
// ignored, and ErrEmptyField is returned if no points remain.
func (ip *Interpolator) Interpolate(f *ScatteredField, spec GridSpec, p Parameter) (*Grid, *InterpolationReport, error) {
	if f.Empty() {
		return nil, nil, ErrEmptyField
	}
	if f = f.finite(); f.Empty() {
		return nil, nil, ErrEmptyField
	}
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	log := ip.logger()
	rep := &InterpolationReport{Points: f.Len()}
	g := NewGrid(spec)

	original := newPointIndex(f.Lons, f.Lats, f.Values)
	lons, lats, values := dedupePoints(f.Lons, f.Lats, f.Values)
	if ip.EdgePoints > 0 {
		var added int
		lons, lats, values, added = synthesizeEdges(lons, lats, values, spec.BBox, ip.EdgePoints, original)
		rep.EdgePoints = added
	}

	if s, err := newCubicSurface(lons, lats, values); err != nil {
		log.WithFields(logrus.Fields{
			"parameter": p,
			"points":    len(values),
		}).WithError(err).Debug("cubic stage skipped")
	} else {
		rep.Cubic = s.rasterize(g)
	}

	if g.Unresolved() > 0 {
		rep.Nearest = newPointIndex(lons, lats, values).fillNearest(g)
	}

	if remaining := g.Unresolved(); remaining > 0 {
		rep.FillIterations, rep.Diffused = diffusiveFill(g, ip.FillIterations)
		if remaining = g.Unresolved(); remaining > 0 {
			rep.Exhausted = &InterpolationExhaustionError{
				Iterations: rep.FillIterations,
				Remaining:  remaining,
			}
			log.WithField("parameter", p).WithError(rep.Exhausted).Warn("falling back to nearest original sample")
			rep.Backstop = original.fillNearest(g)
		}
	}

	if p.NonNegative() {
		rep.Clamped = ClampNonNegative(g)
	}
	return g, rep, nil
}

func (ip *Interpolator) logger() logrus.FieldLogger {
	if ip.Log == nil {
		return logrus.StandardLogger()
	}
	return ip.Log
}

// ClampNonNegative replaces negative values in g with zero and returns
// the number of cells changed.
func ClampNonNegative(g *Grid) int {
	n := 0
	for i, v := range g.Values {
		if v < 0 {
			g.Values[i] = 0
			n++
		}
	}
	return n
}

// dedupePoints drops points that repeat an earlier coordinate.
func dedupePoints(lons, lats, values []float64) ([]float64, []float64, []float64) {
	seen := make(map[[2]float64]struct{}, len(values))
	x := make([]float64, 0, len(values))
	y := make([]float64, 0, len(values))
	v := make([]float64, 0, len(values))
	for i := range values {
		k := [2]float64{lons[i], lats[i]}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		x = append(x, lons[i])
		y = append(y, lats[i])
		v = append(v, values[i])
	}
	return x, y, v
}

// synthesizeEdges appends n evenly spaced points along each edge of bbox,
// each taking the value of the nearest point in original. Positions that
// coincide with an existing point are skipped.
func synthesizeEdges(lons, lats, values []float64, bbox BoundingBox, n int, original *pointIndex) ([]float64, []float64, []float64, int) {
	seen := make(map[[2]float64]struct{}, len(values)+4*n)
	for i := range values {
		seen[[2]float64{lons[i], lats[i]}] = struct{}{}
	}
	added := 0
	add := func(lon, lat float64) {
		k := [2]float64{lon, lat}
		if _, ok := seen[k]; ok {
			return
		}
		v, ok := original.nearest(lon, lat)
		if !ok {
			return
		}
		seen[k] = struct{}{}
		lons = append(lons, lon)
		lats = append(lats, lat)
		values = append(values, v)
		added++
	}
	edgeLons := linspace(bbox.LonMin, bbox.LonMax, n)
	edgeLats := linspace(bbox.LatMin, bbox.LatMax, n)
	for _, lon := range edgeLons {
		add(lon, bbox.LatMin)
		add(lon, bbox.LatMax)
	}
	for _, lat := range edgeLats {
		add(bbox.LonMin, lat)
		add(bbox.LonMax, lat)
	}
	return lons, lats, values, added
}
