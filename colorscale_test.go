package seamap

import (
	"encoding/json"
	"image/color"
	"math"
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func TestParseColorScale(t *testing.T) {
	s, err := ParseColorScale("0:#000080, 0.5:#00FF80 ,1:red")
	if err != nil {
		t.Fatal(err)
	}
	want := []Breakpoint{
		{Value: 0, Color: color.NRGBA{R: 0, G: 0, B: 0x80, A: 255}},
		{Value: 0.5, Color: color.NRGBA{R: 0, G: 0xFF, B: 0x80, A: 255}},
		{Value: 1, Color: color.NRGBA{R: 0xFF, G: 0, B: 0, A: 255}},
	}
	if have := s.Breakpoints(); !reflect.DeepEqual(have, want) {
		t.Errorf("breakpoints differ: %v", pretty.Diff(have, want))
	}
	if s.String() != "0:#000080,0.5:#00FF80,1:#FF0000" {
		t.Errorf("string: have %q", s.String())
	}
}

func TestParseColorScaleInvalid(t *testing.T) {
	for _, table := range []string{
		"",
		"1:#000000,1:#FFFFFF",
		"2:#000000,1:#FFFFFF",
		"0:#00000",
		"0:#GG0000",
		"0:notacolor",
		"0",
		"x:#000000",
	} {
		if _, err := ParseColorScale(table); !IsConfigurationError(err) {
			t.Errorf("%q: want configuration error, have %v", table, err)
		}
	}
}

func TestDefaultColorScales(t *testing.T) {
	for p, table := range DefaultColorScales {
		s, err := ParseColorScale(table)
		if err != nil {
			t.Errorf("%s: %v", p, err)
			continue
		}
		min, max := s.Domain()
		t.Logf("%s: %g to %g", p, min, max)
	}
}

func TestColorScaleColor(t *testing.T) {
	s, err := NewColorScale([]Breakpoint{
		{Value: 0, Color: color.NRGBA{R: 0, G: 100, B: 200, A: 255}},
		{Value: 10, Color: color.NRGBA{R: 200, G: 100, B: 0, A: 255}},
		{Value: 20, Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		v    float64
		want color.NRGBA
	}{
		{v: -5, want: color.NRGBA{R: 0, G: 100, B: 200, A: 255}},
		{v: 0, want: color.NRGBA{R: 0, G: 100, B: 200, A: 255}},
		{v: 5, want: color.NRGBA{R: 100, G: 100, B: 100, A: 255}},
		{v: 10, want: color.NRGBA{R: 200, G: 100, B: 0, A: 255}},
		{v: 25, want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{v: math.Inf(1), want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{v: math.NaN(), want: color.NRGBA{}},
	}
	for _, test := range tests {
		if have := s.Color(test.v); have != test.want {
			t.Errorf("Color(%g) = %v, want %v", test.v, have, test.want)
		}
	}
}

// Channels move monotonically from one breakpoint color to the next.
func TestColorScaleMonotonic(t *testing.T) {
	s, err := ParseColorScale(DefaultColorScales[Current])
	if err != nil {
		t.Fatal(err)
	}
	bps := s.Breakpoints()
	for k := 1; k < len(bps); k++ {
		lo, hi := bps[k-1], bps[k]
		prev := s.Color(lo.Value)
		for _, v := range linspace(lo.Value, hi.Value, 50)[1:] {
			c := s.Color(v)
			for ch, pair := range [][3]uint8{
				{prev.R, c.R, hi.Color.R},
				{prev.G, c.G, hi.Color.G},
				{prev.B, c.B, hi.Color.B},
			} {
				p, cur, target := int(pair[0]), int(pair[1]), int(pair[2])
				if abs(target-cur) > abs(target-p) {
					t.Errorf("value %g channel %d moved away from the next breakpoint: %d -> %d (target %d)", v, ch, p, cur, target)
				}
			}
			prev = c
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestColorScaleJSON(t *testing.T) {
	s, err := ParseColorScale("-1:#000040,25:#FF0000")
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if want := `[[-1,"#000040"],[25,"#FF0000"]]`; string(b) != want {
		t.Errorf("want %s, have %s", want, b)
	}
}
