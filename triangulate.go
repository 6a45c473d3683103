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
	"sort"

	"github.com/fogleman/delaunay"
	"gonum.org/v1/gonum/mat"
)

// cubicSurface is a piecewise cubic interpolant over the Delaunay
// triangulation of a set of scattered points. Each triangle carries a
// cubic Bézier patch built from the vertex values and estimated vertex
// gradients, so the surface is continuous across triangle edges and is
// undefined outside the convex hull of the points.
type cubicSurface struct {
	x, y, f   []float64
	gx, gy    []float64
	triangles []int
}

// newCubicSurface triangulates the points. It fails when the points do
// not span a two-dimensional region, for example when there are fewer
// than three of them or they are all collinear.
func newCubicSurface(x, y, f []float64) (*cubicSurface, error) {
	pts := make([]delaunay.Point, len(x))
	for i := range x {
		pts[i] = delaunay.Point{X: x[i], Y: y[i]}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("seamap: triangulating %d points: %w", len(pts), err)
	}
	if len(tri.Triangles) == 0 {
		return nil, fmt.Errorf("seamap: triangulating %d points: no triangles", len(pts))
	}
	s := &cubicSurface{x: x, y: y, f: f, triangles: tri.Triangles}
	s.estimateGradients()
	return s, nil
}

// estimateGradients sets the gradient at each vertex to the weighted
// least-squares fit of the differences to its Delaunay neighbors, with
// weights of inverse squared distance. Vertices whose fit is singular
// get a zero gradient.
func (s *cubicSurface) estimateGradients() {
	n := len(s.x)
	neighbors := make([][]int, n)
	link := func(a, b int) {
		for _, c := range neighbors[a] {
			if c == b {
				return
			}
		}
		neighbors[a] = append(neighbors[a], b)
	}
	for t := 0; t+2 < len(s.triangles); t += 3 {
		a, b, c := s.triangles[t], s.triangles[t+1], s.triangles[t+2]
		link(a, b)
		link(a, c)
		link(b, a)
		link(b, c)
		link(c, a)
		link(c, b)
	}

	s.gx = make([]float64, n)
	s.gy = make([]float64, n)
	for i, nb := range neighbors {
		var sxx, sxy, syy, bx, by float64
		for _, j := range nb {
			dx, dy := s.x[j]-s.x[i], s.y[j]-s.y[i]
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				continue
			}
			w := 1 / d2
			df := s.f[j] - s.f[i]
			sxx += w * dx * dx
			sxy += w * dx * dy
			syy += w * dy * dy
			bx += w * dx * df
			by += w * dy * df
		}
		if bx == 0 && by == 0 {
			continue
		}
		a := mat.NewSymDense(2, []float64{sxx, sxy, sxy, syy})
		var g mat.VecDense
		if err := g.SolveVec(a, mat.NewVecDense(2, []float64{bx, by})); err != nil {
			continue
		}
		if gx, gy := g.AtVec(0), g.AtVec(1); isResolved(gx) && isResolved(gy) {
			s.gx[i], s.gy[i] = gx, gy
		}
	}
}

// patch holds the control net of one triangle's cubic Bézier patch.
// Control values are stored as offsets from the value at vertex a so
// that a constant field is reproduced exactly.
type patch struct {
	a, b, c                            int
	base                               float64
	c300, c030, c003                   float64
	c210, c201, c120, c021, c102, c012 float64
	c111                               float64
}

func (s *cubicSurface) patch(a, b, c int) patch {
	base := s.f[a]
	edge := func(i, j int) float64 {
		return s.f[i] - base + (s.gx[i]*(s.x[j]-s.x[i])+s.gy[i]*(s.y[j]-s.y[i]))/3
	}
	p := patch{
		a: a, b: b, c: c, base: base,
		c300: 0, c030: s.f[b] - base, c003: s.f[c] - base,
		c210: edge(a, b), c201: edge(a, c),
		c120: edge(b, a), c021: edge(b, c),
		c102: edge(c, a), c012: edge(c, b),
	}
	e := (p.c210 + p.c201 + p.c120 + p.c021 + p.c102 + p.c012) / 6
	v := (p.c300 + p.c030 + p.c003) / 3
	p.c111 = e + (e-v)/2
	return p
}

// eval returns the patch value at barycentric coordinates (u, v, w)
// relative to vertices a, b and c.
func (p patch) eval(u, v, w float64) float64 {
	d := u*u*u*p.c300 + v*v*v*p.c030 + w*w*w*p.c003 +
		3*u*u*v*p.c210 + 3*u*u*w*p.c201 +
		3*u*v*v*p.c120 + 3*v*v*w*p.c021 +
		3*u*w*w*p.c102 + 3*v*w*w*p.c012 +
		6*u*v*w*p.c111
	return p.base + d
}

// baryEps admits cells that lie on a triangle edge up to rounding.
const baryEps = 1e-10

// rasterize evaluates the surface at every unresolved cell of g that
// lies inside the convex hull of the points and returns the number of
// cells it set. Cells outside the hull are left unresolved. A cell on a
// shared edge takes its value from the first triangle that covers it.
func (s *cubicSurface) rasterize(g *Grid) int {
	lons := g.Lons()
	latsAsc := g.Lats()
	sort.Float64s(latsAsc)
	last := g.Resolution - 1
	n := 0
	for t := 0; t+2 < len(s.triangles); t += 3 {
		a, b, c := s.triangles[t], s.triangles[t+1], s.triangles[t+2]
		xa, ya := s.x[a], s.y[a]
		xb, yb := s.x[b], s.y[b]
		xc, yc := s.x[c], s.y[c]
		det := (yb-yc)*(xa-xc) + (xc-xb)*(ya-yc)
		if det == 0 || !isResolved(det) {
			continue
		}
		c0, c1 := indexSpan(lons, math.Min(xa, math.Min(xb, xc)), math.Max(xa, math.Max(xb, xc)))
		k0, k1 := indexSpan(latsAsc, math.Min(ya, math.Min(yb, yc)), math.Max(ya, math.Max(yb, yc)))
		if c0 > c1 || k0 > k1 {
			continue
		}
		p := s.patch(a, b, c)
		for k := k0; k <= k1; k++ {
			row := last - k
			lat := latsAsc[k]
			for col := c0; col <= c1; col++ {
				i := g.Index(row, col)
				if isResolved(g.Values[i]) {
					continue
				}
				lon := lons[col]
				u := ((yb-yc)*(lon-xc) + (xc-xb)*(lat-yc)) / det
				v := ((yc-ya)*(lon-xc) + (xa-xc)*(lat-yc)) / det
				w := 1 - u - v
				if u < -baryEps || v < -baryEps || w < -baryEps {
					continue
				}
				if val := p.eval(u, v, w); isResolved(val) {
					g.Values[i] = val
					n++
				}
			}
		}
	}
	return n
}

// indexSpan returns the first and last indices of the ascending values
// that fall within [lo, hi], widened by a small tolerance.
func indexSpan(values []float64, lo, hi float64) (int, int) {
	tol := baryEps * math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))
	first := sort.SearchFloat64s(values, lo-tol)
	last := sort.Search(len(values), func(i int) bool { return values[i] > hi+tol }) - 1
	return first, last
}
