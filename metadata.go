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
	"strings"
	"time"
)

// ParameterInfo holds the presentation settings of a parameter.
type ParameterInfo struct {
	Parameter  Parameter
	Name       string // human readable name
	Unit       string
	Dir        string // output directory, relative to the output root
	FilePrefix string
}

// DefaultParameterInfo holds the presentation settings of each parameter.
var DefaultParameterInfo = map[Parameter]ParameterInfo{
	Current: {
		Parameter:  Current,
		Name:       "current magnitude",
		Unit:       "m/s",
		Dir:        "current-magnitude-images",
		FilePrefix: "current_magnitude",
	},
	Temperature: {
		Parameter:  Temperature,
		Name:       "water temperature",
		Unit:       "°C",
		Dir:        "temperature-images",
		FilePrefix: "temperature",
	},
	Salinity: {
		Parameter:  Salinity,
		Name:       "salinity",
		Unit:       "PSU",
		Dir:        "salinity-images",
		FilePrefix: "salinity",
	},
}

var timestampReplacer = strings.NewReplacer(":", "-", "+", "plus")

// FileName returns the raster file name for timestamp, e.g.
// "temperature_2025-06-01T12-00-00plus00-00.png".
func (pi ParameterInfo) FileName(timestamp string) string {
	return pi.FilePrefix + "_" + timestampReplacer.Replace(timestamp) + ".png"
}

// RasterKey returns the output store key of the raster for timestamp.
func (pi ParameterInfo) RasterKey(timestamp string) string {
	return pi.Dir + "/" + pi.FileName(timestamp)
}

// MetadataKey returns the output store key of the parameter metadata.
func (pi ParameterInfo) MetadataKey() string {
	return pi.Dir + "/metadata.json"
}

// Metadata describes a finished parameter batch for map front ends.
type Metadata struct {
	Parameter     Parameter   `json:"parameter"`
	ParameterName string      `json:"parameter_name"`
	Unit          string      `json:"unit"`
	BBox          []float64   `json:"bbox"`
	TotalImages   int         `json:"total_images"`
	Timestamps    []string    `json:"timestamps"`
	ColorMap      *ColorScale `json:"colormap"`
	Resolution    int         `json:"resolution"`
	GeneratedAt   time.Time   `json:"generated_at"`
}

// NewMetadata builds the metadata record of a parameter batch.
// produced is the number of rasters available, including ones that
// already existed, and timestamps lists the timestamps processed.
func NewMetadata(pi ParameterInfo, spec GridSpec, scale *ColorScale, timestamps []string, produced int, now time.Time) *Metadata {
	ts := make([]string, len(timestamps))
	copy(ts, timestamps)
	return &Metadata{
		Parameter:     pi.Parameter,
		ParameterName: pi.Name,
		Unit:          pi.Unit,
		BBox:          spec.BBox.Slice(),
		TotalImages:   produced,
		Timestamps:    ts,
		ColorMap:      scale,
		Resolution:    spec.Resolution,
		GeneratedAt:   now,
	}
}
