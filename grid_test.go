package seamap

import (
	"math"
	"reflect"
	"testing"
)

func TestGridSpecPositions(t *testing.T) {
	spec := GridSpec{BBox: BoundingBox{LonMin: 10, LonMax: 11, LatMin: 55, LatMax: 56}, Resolution: 5}
	if have, want := spec.Lons(), []float64{10, 10.25, 10.5, 10.75, 11}; !reflect.DeepEqual(have, want) {
		t.Errorf("lons: want %v, have %v", want, have)
	}
	if have, want := spec.Lats(), []float64{56, 55.75, 55.5, 55.25, 55}; !reflect.DeepEqual(have, want) {
		t.Errorf("lats: want %v, have %v", want, have)
	}
	if i := spec.Index(2, 3); i != 13 {
		t.Errorf("index: want 13, have %d", i)
	}

	one := GridSpec{BBox: spec.BBox, Resolution: 1}
	if have := one.Lons(); len(have) != 1 || have[0] != 10.5 {
		t.Errorf("single cell should be centered, have %v", have)
	}
}

func TestBoundingBoxValidate(t *testing.T) {
	tests := []struct {
		v     []float64
		valid bool
	}{
		{v: []float64{10.3, 16.6, 54.9, 59.6}, valid: true},
		{v: []float64{10, 10, 54, 55}},
		{v: []float64{10, 11, 56, 55}},
		{v: []float64{10, 11, 54}},
		{v: []float64{math.NaN(), 11, 54, 55}},
	}
	for _, test := range tests {
		_, err := NewBoundingBox(test.v)
		if test.valid && err != nil {
			t.Errorf("%v: unexpected error %v", test.v, err)
		}
		if !test.valid && !IsConfigurationError(err) {
			t.Errorf("%v: want configuration error, have %v", test.v, err)
		}
	}
}

func TestNewGrid(t *testing.T) {
	g := NewGrid(GridSpec{BBox: FallbackBBox, Resolution: 3})
	if g.Unresolved() != 9 {
		t.Errorf("new grid should be unresolved, have %d unresolved cells", g.Unresolved())
	}
	g.Values[4] = 1
	g.Values[5] = math.Inf(1)
	if g.Unresolved() != 8 {
		t.Errorf("want 8 unresolved, have %d", g.Unresolved())
	}
	if g.At(1, 1) != 1 {
		t.Errorf("At(1, 1) = %g", g.At(1, 1))
	}
}
