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
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config holds the settings of a pipeline run.
type Config struct {
	// BBox is the rendered extent. If nil, the extent of the water
	// geometry is used.
	BBox *BoundingBox

	Resolution int

	// Parameters are rendered in this order.
	Parameters []Parameter

	ColorScales map[Parameter]*ColorScale
	Info        map[Parameter]ParameterInfo

	EdgePoints     int
	FillIterations int

	// Opacity is the alpha of water pixels, from 0 to 1.
	Opacity float64

	// Workers is the number of units rendered at once.
	Workers int

	// MaxImages limits the number of timesteps per parameter. Zero means
	// no limit.
	MaxImages int

	// Force overwrites rasters that already exist.
	Force bool
}

// DefaultConfig returns the default settings, with the default color
// scale and presentation of every parameter.
func DefaultConfig() *Config {
	c := &Config{
		Resolution:     1200,
		Parameters:     append([]Parameter(nil), Parameters...),
		ColorScales:    make(map[Parameter]*ColorScale),
		Info:           make(map[Parameter]ParameterInfo),
		EdgePoints:     DefaultEdgePoints,
		FillIterations: DefaultFillIterations,
		Opacity:        DefaultOpacity,
		Workers:        runtime.GOMAXPROCS(-1),
	}
	for p, table := range DefaultColorScales {
		s, err := ParseColorScale(table)
		if err != nil {
			panic(err)
		}
		c.ColorScales[p] = s
	}
	for p, pi := range DefaultParameterInfo {
		c.Info[p] = pi
	}
	return c
}

// Validate checks every setting that affects all units of a run and
// returns a *ConfigurationError for the first invalid one.
func (c *Config) Validate() error {
	if c.Resolution <= 0 {
		return &ConfigurationError{Field: "Resolution", Msg: fmt.Sprintf("must be positive, got %d", c.Resolution)}
	}
	if c.BBox != nil {
		if err := c.BBox.Validate(); err != nil {
			return err
		}
	}
	if len(c.Parameters) == 0 {
		return &ConfigurationError{Field: "Parameters", Msg: "no parameters selected"}
	}
	for _, p := range c.Parameters {
		if _, err := ParseParameter(string(p)); err != nil {
			return err
		}
		if c.ColorScales[p] == nil {
			return &ConfigurationError{Field: "ColorScales", Msg: fmt.Sprintf("no color scale for %s", p)}
		}
		if _, ok := c.Info[p]; !ok {
			return &ConfigurationError{Field: "Parameters", Msg: fmt.Sprintf("no presentation settings for %s", p)}
		}
	}
	if c.EdgePoints < 0 {
		return &ConfigurationError{Field: "EdgePoints", Msg: "must not be negative"}
	}
	if c.FillIterations < 0 {
		return &ConfigurationError{Field: "FillIterations", Msg: "must not be negative"}
	}
	if c.Opacity < 0 || c.Opacity > 1 || math.IsNaN(c.Opacity) {
		return &ConfigurationError{Field: "Opacity", Msg: fmt.Sprintf("must be within [0, 1], got %g", c.Opacity)}
	}
	if c.MaxImages < 0 {
		return &ConfigurationError{Field: "MaxImages", Msg: "must not be negative"}
	}
	return nil
}

// Pipeline renders the samples of a run into masked rasters.
type Pipeline struct {
	*Config

	Samples  *SampleSet
	Geometry *WaterGeometry
	Output   RasterWriter

	Log logrus.FieldLogger

	// Cache is the water point cache of the previous preparation. It is
	// reused while it is valid for Samples and Geometry and is rebuilt
	// otherwise.
	Cache *PointCache

	// Now returns the generation time recorded in metadata.
	Now func() time.Time
}

// Prepared holds the artifacts shared read-only by every unit of a run.
type Prepared struct {
	Spec  GridSpec
	Cache *PointCache
	Mask  *MaskGrid

	// Unavailable is set when the water geometry is empty, in which
	// case every raster is fully transparent.
	Unavailable *GeometryUnavailableError
}

// Prepare builds the water point cache and water mask grid. Both are
// built once, concurrently, and must be complete before any unit runs.
// The point cache of a previous preparation is kept if the sample
// coordinates and geometry are unchanged.
func (p *Pipeline) Prepare(ctx context.Context) (*Prepared, error) {
	log := p.logger()
	prep := new(Prepared)
	if p.Geometry.Empty() {
		prep.Unavailable = &GeometryUnavailableError{Reason: "no water polygons"}
		log.WithError(prep.Unavailable).Warn("all rasters will be transparent")
	}

	bbox, ok := p.Geometry.BBox()
	if p.BBox != nil {
		bbox = *p.BBox
	} else if !ok {
		log.WithField("bbox", bbox).Warn("no geometry extent; using fallback bounding box")
	}
	prep.Spec = GridSpec{BBox: bbox, Resolution: p.Resolution}
	if err := prep.Spec.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	var reused bool
	eg.Go(func() error {
		if p.Cache.Valid(p.Samples.Samples, p.Geometry) {
			prep.Cache, reused = p.Cache, true
			return nil
		}
		prep.Cache = BuildPointCache(p.Samples.Samples, p.Geometry)
		return nil
	})
	eg.Go(func() error {
		var err error
		prep.Mask, err = BuildMaskGrid(ctx, p.Geometry, prep.Spec)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	p.Cache = prep.Cache
	log.WithFields(logrus.Fields{
		"bbox":        prep.Spec.BBox,
		"resolution":  prep.Spec.Resolution,
		"samples":     prep.Cache.Len(),
		"water_pts":   prep.Cache.WaterCount(),
		"cache_reuse": reused,
		"water_cells": prep.Mask.WaterCount(),
		"elapsed":     time.Since(start),
	}).Info("water mask ready")
	return prep, nil
}

// UnitResult is the outcome of one (timestep, parameter) unit.
type UnitResult struct {
	Parameter Parameter
	Timestamp string
	Key       string

	// Existing is set when the raster was already stored and was kept.
	Existing bool

	// Written is set when a new raster was stored.
	Written bool

	Report *InterpolationReport
	Stats  FieldStats

	// Err holds the unit's failure, or a warning such as an
	// *EmptyFieldWarning when no raster was produced.
	Err error

	// Warnings holds soft failures that did not stop the unit.
	Warnings []error
}

// Produced reports whether a raster is available for the unit.
func (u *UnitResult) Produced() bool { return u.Existing || u.Written }

// ParameterSummary summarizes the units of one parameter.
type ParameterSummary struct {
	Parameter  Parameter
	Timestamps []string
	Units      []*UnitResult

	// MetadataErr holds the failure to write the metadata record.
	MetadataErr error
}

// Produced returns the number of units with a raster available.
func (s *ParameterSummary) Produced() int {
	n := 0
	for _, u := range s.Units {
		if u.Produced() {
			n++
		}
	}
	return n
}

// SoftFailures returns the units that were skipped or degraded by a warning.
func (s *ParameterSummary) SoftFailures() []*UnitResult {
	var out []*UnitResult
	for _, u := range s.Units {
		if (u.Err != nil && IsWarning(u.Err)) || (u.Err == nil && len(u.Warnings) > 0) {
			out = append(out, u)
		}
	}
	return out
}

// Failures returns the units that failed with an error.
func (s *ParameterSummary) Failures() []*UnitResult {
	var out []*UnitResult
	for _, u := range s.Units {
		if u.Err != nil && !IsWarning(u.Err) {
			out = append(out, u)
		}
	}
	return out
}

// Summary is the outcome of a run.
type Summary struct {
	Parameters []*ParameterSummary
	Warnings   []error
}

// Totals returns the number of rasters available and the number of
// units across all parameters.
func (s *Summary) Totals() (produced, total int) {
	for _, ps := range s.Parameters {
		produced += ps.Produced()
		total += len(ps.Units)
	}
	return produced, total
}

// Run validates the configuration, prepares the shared artifacts and
// renders every (timestep, parameter) unit on a pool of workers. A unit
// that fails is recorded in the summary and does not stop the others.
// Metadata for a parameter is written as soon as its last unit
// finishes. Run only returns an error for invalid configuration,
// failed preparation or cancellation.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	prep, err := p.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	sum := new(Summary)
	if prep.Unavailable != nil {
		sum.Warnings = append(sum.Warnings, prep.Unavailable)
	}

	timestamps := p.Samples.Timestamps
	if p.MaxImages > 0 && len(timestamps) > p.MaxImages {
		timestamps = timestamps[:p.MaxImages]
	}

	remaining := make([]int64, len(p.Parameters))
	for i, param := range p.Parameters {
		ps := &ParameterSummary{
			Parameter:  param,
			Timestamps: timestamps,
			Units:      make([]*UnitResult, len(timestamps)),
		}
		sum.Parameters = append(sum.Parameters, ps)
		remaining[i] = int64(len(timestamps))
		if len(timestamps) == 0 {
			p.writeMetadata(ctx, prep, ps)
		}
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, ps := range sum.Parameters {
		i, ps := i, ps
		for j, ts := range timestamps {
			j, ts := j, ts
			eg.Go(func() error {
				ps.Units[j] = p.RenderUnit(ctx, prep, ps.Parameter, ts)
				if atomic.AddInt64(&remaining[i], -1) == 0 {
					p.writeMetadata(ctx, prep, ps)
				}
				return nil
			})
		}
	}
	// Units record their own failures, so the group never returns one.
	_ = eg.Wait()

	produced, total := sum.Totals()
	p.logger().WithFields(logrus.Fields{
		"produced": produced,
		"total":    total,
	}).Info("all parameters finished")
	return sum, ctx.Err()
}

// RenderUnit renders and stores the raster of one parameter at one
// timestep. It never panics on bad data and reports every outcome in
// the returned result.
func (p *Pipeline) RenderUnit(ctx context.Context, prep *Prepared, param Parameter, timestamp string) *UnitResult {
	info := p.Info[param]
	u := &UnitResult{Parameter: param, Timestamp: timestamp, Key: info.RasterKey(timestamp)}
	log := p.logger().WithFields(logrus.Fields{
		"parameter": param,
		"timestamp": timestamp,
	})
	if u.Err = ctx.Err(); u.Err != nil {
		return u
	}

	if !p.Force {
		exists, err := p.Output.Exists(ctx, u.Key)
		if err != nil {
			u.Err = fmt.Errorf("seamap: checking %s: %w", u.Key, err)
			log.WithError(u.Err).Error("unit failed")
			return u
		}
		if exists {
			u.Existing = true
			log.Debug("raster exists; skipping")
			return u
		}
	}

	var g *Grid
	if prep.Unavailable != nil {
		// No geometry means no water, so the raster is blank.
		g = NewGrid(prep.Spec)
		u.Warnings = append(u.Warnings, prep.Unavailable)
	} else {
		f := Extract(p.Samples.Samples, HourPrefix(timestamp), prep.Cache, param)
		if f.Empty() {
			u.Err = &EmptyFieldWarning{Parameter: param, Timestamp: timestamp}
			log.WithError(u.Err).Warn("unit skipped")
			return u
		}
		ip := &Interpolator{EdgePoints: p.EdgePoints, FillIterations: p.FillIterations, Log: log}
		var err error
		g, u.Report, err = ip.Interpolate(f, prep.Spec, param)
		if err != nil {
			u.Err = err
			if errors.Is(err, ErrEmptyField) {
				u.Err = &EmptyFieldWarning{Parameter: param, Timestamp: timestamp}
			}
			log.WithError(u.Err).Error("unit failed")
			return u
		}
		if u.Report.Exhausted != nil {
			u.Warnings = append(u.Warnings, u.Report.Exhausted)
		}
		u.Stats = WaterStats(g, prep.Mask)
		log.WithFields(logrus.Fields{
			"points":  u.Report.Points,
			"edge":    u.Report.EdgePoints,
			"cubic":   u.Report.Cubic,
			"nearest": u.Report.Nearest,
			"fill":    u.Report.Diffused,
			"clamped": u.Report.Clamped,
			"min":     u.Stats.Min,
			"max":     u.Stats.Max,
			"mean":    u.Stats.Mean,
			"water":   u.Stats.Count,
		}).Debug("field interpolated")
	}

	r, err := Composite(g, prep.Mask, p.ColorScales[param], p.Opacity)
	if err != nil {
		u.Err = err
		log.WithError(err).Error("unit failed")
		return u
	}
	if err := p.Output.WriteRaster(ctx, u.Key, r); err != nil {
		u.Err = fmt.Errorf("seamap: writing %s: %w", u.Key, err)
		log.WithError(u.Err).Error("unit failed")
		return u
	}
	u.Written = true
	log.WithField("key", u.Key).Info("raster written")
	return u
}

func (p *Pipeline) writeMetadata(ctx context.Context, prep *Prepared, ps *ParameterSummary) {
	info := p.Info[ps.Parameter]
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	m := NewMetadata(info, prep.Spec, p.ColorScales[ps.Parameter], ps.Timestamps, ps.Produced(), now())
	ps.MetadataErr = p.Output.WriteMetadata(ctx, info.MetadataKey(), m)
	log := p.logger().WithFields(logrus.Fields{
		"parameter": ps.Parameter,
		"produced":  m.TotalImages,
		"total":     len(ps.Units),
	})
	if ps.MetadataErr != nil {
		log.WithError(ps.MetadataErr).Error("writing metadata")
		return
	}
	log.Info("parameter finished")
}

func (p *Pipeline) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}
