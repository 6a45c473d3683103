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
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// sampleFile is the on-disk layout of a sample collection.
type sampleFile struct {
	Points   []GeoSample `json:"points"`
	Metadata struct {
		Timestamps []string `json:"timestamps"`
	} `json:"metadata"`
}

// ReadSamples decodes a sample collection from r, which may be
// gzip-compressed. When the collection does not list its timestamps,
// the distinct record times are used.
func ReadSamples(r io.Reader) (*SampleSet, error) {
	rr, err := maybeGunzip(r)
	if err != nil {
		return nil, fmt.Errorf("seamap: reading samples: %w", err)
	}
	var f sampleFile
	if err := json.NewDecoder(rr).Decode(&f); err != nil {
		return nil, fmt.Errorf("seamap: decoding samples: %w", err)
	}
	s := &SampleSet{Samples: f.Points, Timestamps: f.Metadata.Timestamps}
	if len(s.Timestamps) == 0 {
		s.Timestamps = s.RecordTimes()
	}
	return s, nil
}

// LoadSamples reads the sample collection in the named file.
func LoadSamples(filename string) (*SampleSet, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("seamap: opening sample file: %w", err)
	}
	defer f.Close()
	return ReadSamples(f)
}

// maybeGunzip returns a reader of the decompressed content of r if r
// starts with the gzip magic number, and a reader of r otherwise.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

// geoJSONObject holds the members of any GeoJSON object that are needed
// to find the polygons inside it.
type geoJSONObject struct {
	Type        string            `json:"type"`
	Features    []geoJSONObject   `json:"features"`
	Geometry    json.RawMessage   `json:"geometry"`
	Geometries  []json.RawMessage `json:"geometries"`
	Coordinates json.RawMessage   `json:"coordinates"`
}

// ReadGeoJSON decodes the polygons of a GeoJSON FeatureCollection,
// Feature or geometry, which may be gzip-compressed. Polygon and
// MultiPolygon geometries are kept and all other geometry types are
// ignored.
func ReadGeoJSON(r io.Reader) (*WaterGeometry, error) {
	rr, err := maybeGunzip(r)
	if err != nil {
		return nil, fmt.Errorf("seamap: reading water geometry: %w", err)
	}
	b, err := io.ReadAll(rr)
	if err != nil {
		return nil, fmt.Errorf("seamap: reading water geometry: %w", err)
	}
	var polys []geom.Polygonal
	if err := collectPolygons(b, &polys); err != nil {
		return nil, fmt.Errorf("seamap: decoding water geometry: %w", err)
	}
	return NewWaterGeometry(polys...), nil
}

func collectPolygons(raw []byte, polys *[]geom.Polygonal) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var o geoJSONObject
	if err := json.Unmarshal(raw, &o); err != nil {
		return err
	}
	switch o.Type {
	case "FeatureCollection":
		for _, f := range o.Features {
			if err := collectPolygons(f.Geometry, polys); err != nil {
				return err
			}
		}
	case "Feature":
		return collectPolygons(o.Geometry, polys)
	case "GeometryCollection":
		for _, g := range o.Geometries {
			if err := collectPolygons(g, polys); err != nil {
				return err
			}
		}
	case "Polygon":
		p, err := decodePolygon(raw)
		if err != nil {
			return err
		}
		*polys = append(*polys, p)
	case "MultiPolygon":
		// Each member is decoded as a Polygon of its own.
		var members []json.RawMessage
		if err := json.Unmarshal(o.Coordinates, &members); err != nil {
			return err
		}
		for _, m := range members {
			p, err := decodePolygon([]byte(`{"type":"Polygon","coordinates":` + string(m) + `}`))
			if err != nil {
				return err
			}
			*polys = append(*polys, p)
		}
	}
	return nil
}

func decodePolygon(raw []byte) (geom.Polygonal, error) {
	g, err := geojson.Decode(raw)
	if err != nil {
		return nil, err
	}
	p, ok := g.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("geometry of type %T is not polygonal", g)
	}
	return p, nil
}

// LoadShapefile reads the polygons in the named shapefile, reprojecting
// them to longitude/latitude when the shapefile has a projection file.
func LoadShapefile(filename string) (*WaterGeometry, error) {
	f, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("seamap: opening water shapefile '%s': %w", filename, err)
	}
	defer f.Close()

	var trans proj.Transformer
	if sr, err := f.SR(); err == nil {
		lonLat, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
		if err != nil {
			return nil, fmt.Errorf("seamap: %w", err)
		}
		if trans, err = sr.NewTransform(lonLat); err != nil {
			return nil, fmt.Errorf("seamap: creating reprojector for water shapefile '%s': %w", filename, err)
		}
	}

	var polys []geom.Polygonal
	for {
		g, _, more := f.DecodeRowFields()
		if !more {
			break
		}
		if g == nil {
			continue
		}
		if trans != nil {
			if g, err = g.Transform(trans); err != nil {
				return nil, fmt.Errorf("seamap: reprojecting water shapefile '%s': %w", filename, err)
			}
		}
		if p, ok := g.(geom.Polygonal); ok {
			polys = append(polys, p)
		}
	}
	if err := f.Error(); err != nil {
		return nil, fmt.Errorf("seamap: reading water shapefile '%s': %w", filename, err)
	}
	return NewWaterGeometry(polys...), nil
}

// LoadWaterGeometry reads the named water geometry file. Files ending
// in .shp are read as shapefiles and everything else as GeoJSON.
func LoadWaterGeometry(filename string) (*WaterGeometry, error) {
	if strings.EqualFold(filepath.Ext(filename), ".shp") {
		return LoadShapefile(filename)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("seamap: opening water geometry: %w", err)
	}
	defer f.Close()
	return ReadGeoJSON(f)
}
