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
	"strings"
)

// Parameter is a forecast quantity that can be rendered.
type Parameter string

// These are the supported parameters.
const (
	Current     Parameter = "current"
	Temperature Parameter = "temperature"
	Salinity    Parameter = "salinity"
)

// Parameters lists every supported parameter in processing order.
var Parameters = []Parameter{Current, Temperature, Salinity}

// ParseParameter converts s to a Parameter. The value "all" is not
// accepted here; callers expand it themselves.
func ParseParameter(s string) (Parameter, error) {
	p := Parameter(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Parameters {
		if p == known {
			return p, nil
		}
	}
	return "", &ConfigurationError{Field: "Parameters", Msg: fmt.Sprintf("unknown parameter %q", s)}
}

// NonNegative reports whether the physical domain of p excludes
// negative values.
func (p Parameter) NonNegative() bool {
	return p == Current || p == Salinity
}

// CurrentVector holds the eastward (U) and northward (V) components of a
// surface current. Either component may be missing.
type CurrentVector struct {
	U *float64 `json:"u,omitempty"`
	V *float64 `json:"v,omitempty"`
}

// TimedRecord is the forecast at one sample location for one timestamp.
type TimedRecord struct {
	Time        string         `json:"time"`
	Current     *CurrentVector `json:"current,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	Salinity    *float64       `json:"salinity,omitempty"`
}

// Value returns the scalar value of p held by r. The current is reduced
// to its magnitude and is only available when both components are present.
func (r *TimedRecord) Value(p Parameter) (float64, bool) {
	switch p {
	case Current:
		if r.Current == nil || r.Current.U == nil || r.Current.V == nil {
			return 0, false
		}
		return math.Hypot(*r.Current.U, *r.Current.V), true
	case Temperature:
		if r.Temperature == nil {
			return 0, false
		}
		return *r.Temperature, true
	case Salinity:
		if r.Salinity == nil {
			return 0, false
		}
		return *r.Salinity, true
	}
	return 0, false
}

// GeoSample is a fixed location with a forecast time series.
type GeoSample struct {
	Lat    float64       `json:"lat"`
	Lon    float64       `json:"lon"`
	Series []TimedRecord `json:"data"`
}

// FindRecord returns the first record in the series whose timestamp
// starts with hourPrefix. Later records in the same hour are ignored.
func (s *GeoSample) FindRecord(hourPrefix string) (*TimedRecord, bool) {
	for i := range s.Series {
		if strings.HasPrefix(s.Series[i].Time, hourPrefix) {
			return &s.Series[i], true
		}
	}
	return nil, false
}

// SampleSet is the collection of samples for a run, along with the
// timestamps to render.
type SampleSet struct {
	Samples    []GeoSample
	Timestamps []string
}

// hourPrefixLen is the length of an ISO-8601 timestamp truncated to the hour,
// e.g. "2025-06-01T13".
const hourPrefixLen = 13

// HourPrefix returns the hour bucket key of an ISO-8601 timestamp.
// Timestamps shorter than an hour prefix are returned unchanged.
func HourPrefix(timestamp string) string {
	if len(timestamp) < hourPrefixLen {
		return timestamp
	}
	return timestamp[:hourPrefixLen]
}

// RecordTimes returns the sorted distinct record timestamps in the set.
func (s *SampleSet) RecordTimes() []string {
	seen := make(map[string]struct{})
	for _, smp := range s.Samples {
		for _, r := range smp.Series {
			seen[r.Time] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
