package seamap

import (
	"testing"

	"github.com/ctessum/geom"
)

// square returns a closed square ring with the given lower left corner.
func square(x, y, size float64) geom.Path {
	return geom.Path{
		{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size},
		{X: x, Y: y + size}, {X: x, Y: y},
	}
}

func TestIsWater(t *testing.T) {
	donut := geom.Polygon{square(0, 0, 4), square(1, 1, 2)}
	islands := geom.MultiPolygon{
		{square(10, 10, 1)},
		{square(20, 20, 1)},
	}
	g := NewWaterGeometry(donut, islands)
	if g.Len() != 3 {
		t.Fatalf("polygons: want 3, have %d", g.Len())
	}

	tests := []struct {
		name     string
		lon, lat float64
		want     bool
	}{
		{name: "ring", lon: 0.5, lat: 0.5, want: true},
		{name: "hole", lon: 2, lat: 2, want: false},
		{name: "outside", lon: 5, lat: 5, want: false},
		{name: "first island", lon: 10.5, lat: 10.5, want: true},
		{name: "second island", lon: 20.5, lat: 20.5, want: true},
		{name: "between islands", lon: 15, lat: 15, want: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if have := g.IsWater(test.lon, test.lat); have != test.want {
				t.Errorf("IsWater(%g, %g) = %v, want %v", test.lon, test.lat, have, test.want)
			}
		})
	}
}

func TestWaterGeometryEmpty(t *testing.T) {
	g := NewWaterGeometry()
	if !g.Empty() {
		t.Error("geometry should be empty")
	}
	if g.IsWater(0, 0) {
		t.Error("empty geometry should have no water")
	}
	bbox, ok := g.BBox()
	if ok || bbox != FallbackBBox {
		t.Errorf("bbox: want fallback, have %v (%v)", bbox, ok)
	}

	// Degenerate polygons are dropped.
	g = NewWaterGeometry(geom.Polygon{geom.Path{{X: 0, Y: 0}, {X: 1, Y: 1}}}, nil)
	if !g.Empty() {
		t.Errorf("degenerate polygon should be dropped, have %d polygons", g.Len())
	}
}

func TestWaterGeometryBBox(t *testing.T) {
	g := NewWaterGeometry(geom.Polygon{square(10, 54, 1)}, geom.Polygon{square(12, 56, 2)})
	bbox, ok := g.BBox()
	if !ok {
		t.Fatal("bbox should be derived from geometry")
	}
	want := BoundingBox{LonMin: 10, LonMax: 14, LatMin: 54, LatMax: 58}
	if bbox != want {
		t.Errorf("want %v, have %v", want, bbox)
	}
}
