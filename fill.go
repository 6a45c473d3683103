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

// diffusiveFill resolves unresolved cells of g by averaging their
// resolved 8-connected neighbors, one frontier at a time. Each
// iteration reads only cells that were resolved before it started, and
// neighbors are always summed in the same order, so the result is
// deterministic. It stops when no unresolved cells remain, when no
// further progress is possible, or after maxIter iterations, and
// returns the number of iterations performed and the number of cells set.
func diffusiveFill(g *Grid, maxIter int) (iterations, filled int) {
	r := g.Resolution
	queued := make([]bool, len(g.Values))

	// The first frontier holds every unresolved cell that touches a
	// resolved one.
	var frontier []int
	for i, v := range g.Values {
		if isResolved(v) {
			continue
		}
		row, col := i/r, i%r
		if hasResolvedNeighbor(g, row, col) {
			frontier = append(frontier, i)
			queued[i] = true
		}
	}

	values := make([]float64, 0, len(frontier))
	for iterations < maxIter && len(frontier) > 0 {
		iterations++
		values = values[:0]
		for _, i := range frontier {
			values = append(values, neighborMean(g, i/r, i%r))
		}
		for k, i := range frontier {
			g.Values[i] = values[k]
			filled++
		}

		var next []int
		for _, i := range frontier {
			row, col := i/r, i%r
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					nr, nc := row+di, col+dj
					if nr < 0 || nr >= r || nc < 0 || nc >= r {
						continue
					}
					j := nr*r + nc
					if queued[j] || isResolved(g.Values[j]) {
						continue
					}
					queued[j] = true
					next = append(next, j)
				}
			}
		}
		frontier = next
	}
	return iterations, filled
}

// neighborMean returns the mean of the resolved 8-connected neighbors of
// the cell at (row, col), scanning rows then columns from the north-west.
func neighborMean(g *Grid, row, col int) float64 {
	r := g.Resolution
	var sum float64
	var n int
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			nr, nc := row+di, col+dj
			if nr < 0 || nr >= r || nc < 0 || nc >= r {
				continue
			}
			if v := g.Values[nr*r+nc]; isResolved(v) {
				sum += v
				n++
			}
		}
	}
	return sum / float64(n)
}

func hasResolvedNeighbor(g *Grid, row, col int) bool {
	r := g.Resolution
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			nr, nc := row+di, col+dj
			if (di == 0 && dj == 0) || nr < 0 || nr >= r || nc < 0 || nc >= r {
				continue
			}
			if isResolved(g.Values[nr*r+nc]) {
				return true
			}
		}
	}
	return false
}
