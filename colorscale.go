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
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Breakpoint anchors a color to a value in a ColorScale.
type Breakpoint struct {
	Value float64
	Color color.NRGBA
}

// ColorScale maps values to colors by linear interpolation between
// breakpoints. Values outside the breakpoint range take the color of
// the nearest end.
type ColorScale struct {
	breakpoints []Breakpoint
}

// NewColorScale validates that bps is non-empty and strictly increasing
// in value.
func NewColorScale(bps []Breakpoint) (*ColorScale, error) {
	if len(bps) == 0 {
		return nil, &ConfigurationError{Field: "ColorScales", Msg: "color scale has no breakpoints"}
	}
	for i, bp := range bps {
		if math.IsNaN(bp.Value) || math.IsInf(bp.Value, 0) {
			return nil, &ConfigurationError{Field: "ColorScales",
				Msg: fmt.Sprintf("breakpoint %d has non-finite value", i)}
		}
		if i > 0 && bp.Value <= bps[i-1].Value {
			return nil, &ConfigurationError{Field: "ColorScales",
				Msg: fmt.Sprintf("breakpoint values must be strictly increasing: %g follows %g", bp.Value, bps[i-1].Value)}
		}
	}
	s := &ColorScale{breakpoints: make([]Breakpoint, len(bps))}
	copy(s.breakpoints, bps)
	return s, nil
}

// ParseColorScale parses a breakpoint table written as comma-separated
// value:color pairs, for example "0:#000080, 0.5:#00FF80, 1:red".
// Colors are #RRGGBB hex triplets or SVG color names.
func ParseColorScale(table string) (*ColorScale, error) {
	var bps []Breakpoint
	for _, item := range strings.Split(table, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, ":", 2)
		if len(parts) != 2 {
			return nil, &ConfigurationError{Field: "ColorScales",
				Msg: fmt.Sprintf("breakpoint %q is not of the form value:color", item)}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, &ConfigurationError{Field: "ColorScales",
				Msg: fmt.Sprintf("breakpoint %q: %v", item, err)}
		}
		c, err := ParseColor(parts[1])
		if err != nil {
			return nil, err
		}
		bps = append(bps, Breakpoint{Value: v, Color: c})
	}
	return NewColorScale(bps)
}

// ParseColor parses a #RRGGBB hex triplet or an SVG color name.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 {
			return color.NRGBA{}, &ConfigurationError{Field: "ColorScales",
				Msg: fmt.Sprintf("color %q is not #RRGGBB", s)}
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, &ConfigurationError{Field: "ColorScales",
				Msg: fmt.Sprintf("color %q: %v", s, err)}
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}
	c, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return color.NRGBA{}, &ConfigurationError{Field: "ColorScales",
			Msg: fmt.Sprintf("unknown color %q", s)}
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}, nil
}

// Domain returns the values of the first and last breakpoints.
func (s *ColorScale) Domain() (min, max float64) {
	return s.breakpoints[0].Value, s.breakpoints[len(s.breakpoints)-1].Value
}

// Breakpoints returns a copy of the breakpoints.
func (s *ColorScale) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(s.breakpoints))
	copy(out, s.breakpoints)
	return out
}

// Color returns the opaque color for v. NaN maps to transparent.
func (s *ColorScale) Color(v float64) color.NRGBA {
	if math.IsNaN(v) {
		return color.NRGBA{}
	}
	bps := s.breakpoints
	if v <= bps[0].Value {
		return bps[0].Color
	}
	last := len(bps) - 1
	if v >= bps[last].Value {
		return bps[last].Color
	}
	// Index of the first breakpoint above v; it is at least 1.
	i := sort.Search(len(bps), func(i int) bool { return bps[i].Value > v })
	lo, hi := bps[i-1], bps[i]
	t := (v - lo.Value) / (hi.Value - lo.Value)
	return color.NRGBA{
		R: lerpChannel(lo.Color.R, hi.Color.R, t),
		G: lerpChannel(lo.Color.G, hi.Color.G, t),
		B: lerpChannel(lo.Color.B, hi.Color.B, t),
		A: 255,
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
}

// String formats the scale in the form accepted by ParseColorScale.
func (s *ColorScale) String() string {
	parts := make([]string, len(s.breakpoints))
	for i, bp := range s.breakpoints {
		parts[i] = strconv.FormatFloat(bp.Value, 'g', -1, 64) + ":" + hexColor(bp.Color)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the scale as a list of [value, "#RRGGBB"] pairs.
func (s *ColorScale) MarshalJSON() ([]byte, error) {
	pairs := make([][2]interface{}, len(s.breakpoints))
	for i, bp := range s.breakpoints {
		pairs[i] = [2]interface{}{bp.Value, hexColor(bp.Color)}
	}
	return json.Marshal(pairs)
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// DefaultColorScales are the breakpoint tables used when none are configured.
var DefaultColorScales = map[Parameter]string{
	Current: "0.0:#000080,0.1:#0080FF,0.2:#00FF80,0.4:#80FF00,0.6:#FFFF00," +
		"0.8:#FF8000,1.0:#FF4000,1.1:#FF0000,1.2:#800000,1.3:#400000",
	Temperature: "-1:#000040,-0.5:#000060,0:#000080,1:#0000A0,2:#0000FF,3:#0040FF," +
		"4:#0080FF,5:#00A0FF,6:#00C0FF,7:#00E0FF,8:#00FFFF,9:#00FFE0,10:#00FFC0," +
		"11:#00FFA0,12:#40FF80,13:#80FF60,14:#A0FF40,15:#C0FF20,16:#E0FF00," +
		"17:#FFFF00,18:#FFE000,19:#FFC000,20:#FFA000,21:#FF8000,22:#FF6000," +
		"23:#FF4000,24:#FF2000,25:#FF0000",
	Salinity: "0:#004000,2:#006400,4:#008000,6:#228B22,8:#32CD32,10:#7CFC00," +
		"12:#90EE90,14:#98FB98,16:#F0E68C,18:#FFFF00,20:#FFD700,22:#FFA500," +
		"24:#FF8C00,26:#87CEEB,28:#4169E1,30:#0000FF,32:#0000CD,34:#000080,36:#191970",
}
