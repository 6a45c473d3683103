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

// ScatteredField holds the values of one parameter at one timestep,
// at irregularly located water samples. The three slices are parallel.
type ScatteredField struct {
	Lons, Lats, Values []float64
}

// Len returns the number of points in the field.
func (f *ScatteredField) Len() int { return len(f.Values) }

// Empty reports whether the field has no points.
func (f *ScatteredField) Empty() bool { return f == nil || len(f.Values) == 0 }

func (f *ScatteredField) add(lon, lat, v float64) {
	f.Lons = append(f.Lons, lon)
	f.Lats = append(f.Lats, lat)
	f.Values = append(f.Values, v)
}

// finite returns the points of f whose coordinates and value are all
// finite.
func (f *ScatteredField) finite() *ScatteredField {
	out := new(ScatteredField)
	for i, v := range f.Values {
		if isResolved(v) && isResolved(f.Lons[i]) && isResolved(f.Lats[i]) {
			out.add(f.Lons[i], f.Lats[i], v)
		}
	}
	return out
}

// Extract collects the values of parameter p for the hour bucket
// hourPrefix from every sample that cache marks as water. For each
// sample only the first record in the hour is used, and samples
// without a value for p are skipped. Points keep the sample order.
// An empty field is a valid result.
func Extract(samples []GeoSample, hourPrefix string, cache *PointCache, p Parameter) *ScatteredField {
	f := new(ScatteredField)
	for i := range samples {
		s := &samples[i]
		if !cache.Contains(s.Lat, s.Lon) {
			continue
		}
		r, ok := s.FindRecord(hourPrefix)
		if !ok {
			continue
		}
		if v, ok := r.Value(p); ok && isResolved(v) {
			f.add(s.Lon, s.Lat, v)
		}
	}
	return f
}
