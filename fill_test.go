package seamap

import (
	"math"
	"testing"
)

func TestDiffusiveFill(t *testing.T) {
	nan := math.NaN()
	spec := GridSpec{BBox: unitSquare.BBox, Resolution: 3}

	t.Run("center", func(t *testing.T) {
		g := &Grid{GridSpec: spec, Values: []float64{
			nan, nan, nan,
			nan, 4, nan,
			nan, nan, nan,
		}}
		iter, filled := diffusiveFill(g, 20)
		if iter != 1 || filled != 8 {
			t.Errorf("want 1 iteration filling 8 cells, have %d and %d", iter, filled)
		}
		for i, v := range g.Values {
			if v != 4 {
				t.Errorf("cell %d: want 4, have %g", i, v)
			}
		}
	})

	t.Run("frontier", func(t *testing.T) {
		g := &Grid{GridSpec: spec, Values: []float64{
			2, 6, nan,
			nan, nan, nan,
			nan, nan, nan,
		}}
		iter, _ := diffusiveFill(g, 20)
		if iter != 2 {
			t.Errorf("want 2 iterations, have %d", iter)
		}
		// First frontier only sees the two seeds.
		want := []float64{
			2, 6, 6,
			4, 4, 6,
			4, 14. / 3, 5,
		}
		for i, v := range g.Values {
			if different(v, want[i], testTolerance) {
				t.Errorf("cell %d: want %g, have %g", i, want[i], v)
			}
		}
	})

	t.Run("cap", func(t *testing.T) {
		g := &Grid{GridSpec: GridSpec{BBox: unitSquare.BBox, Resolution: 5}, Values: make([]float64, 25)}
		for i := range g.Values {
			g.Values[i] = nan
		}
		g.Values[0] = 1
		iter, filled := diffusiveFill(g, 2)
		if iter != 2 {
			t.Errorf("want 2 iterations, have %d", iter)
		}
		if filled != 8 || g.Unresolved() != 16 {
			t.Errorf("want 8 filled and 16 unresolved, have %d and %d", filled, g.Unresolved())
		}

		// The nearest original sample resolves whatever the cap left.
		backstop := newPointIndex([]float64{0}, []float64{1}, []float64{1})
		if n := backstop.fillNearest(g); n != 16 {
			t.Errorf("backstop should fill 16 cells, filled %d", n)
		}
		for i, v := range g.Values {
			if v != 1 {
				t.Errorf("cell %d: want 1, have %g", i, v)
			}
		}
	})

	t.Run("no seeds", func(t *testing.T) {
		g := NewGrid(spec)
		iter, filled := diffusiveFill(g, 20)
		if iter != 0 || filled != 0 {
			t.Errorf("nothing should be filled, have %d iterations and %d cells", iter, filled)
		}
	})
}
