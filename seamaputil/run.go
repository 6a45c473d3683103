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

package seamaputil

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/seamap"
	"github.com/spf13/cobra"
)

// Run renders the forecast overlays described by o. Log messages go to
// the output of cmd and to o.LogFile. Timesteps that cannot be rendered
// are logged in the summary; Run returns an error if the configuration
// or the inputs are invalid, if the run is cancelled, or if any raster
// or metadata record could not be written.
func Run(cmd *cobra.Command, o *Options) error {
	startTime := time.Now()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := seamap.OpenStore(ctx, o.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	logfile, err := os.Create(o.LogFile)
	if err != nil {
		return fmt.Errorf("seamap: problem creating log file: %w", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(cmd.OutOrStdout(), logfile), o.LogLevel)

	log.Infof("Seamap v%s", seamap.Version)

	log.WithField("file", o.SampleFile).Info("loading samples")
	samples, err := seamap.LoadSamples(o.SampleFile)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"points":     len(samples.Samples),
		"timestamps": len(samples.Timestamps),
	}).Info("samples loaded")

	geometry := seamap.NewWaterGeometry()
	if o.WaterMask == "" {
		log.Warn("no water mask specified")
	} else if g, err := seamap.LoadWaterGeometry(o.WaterMask); err != nil {
		// Without water every raster is blank, which the pipeline
		// reports per unit.
		log.WithError(err).WithField("file", o.WaterMask).Warn("water mask could not be loaded")
	} else {
		geometry = g
		log.WithFields(logrus.Fields{
			"file":     o.WaterMask,
			"polygons": g.Len(),
		}).Info("water mask loaded")
	}

	store.MaxRetries = uint64(o.MaxRetries)
	store.Log = log
	if o.Clean {
		for _, p := range o.Pipeline.Parameters {
			dir := o.Pipeline.Info[p].Dir + "/"
			n, err := store.Clean(ctx, dir)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"dir": dir, "deleted": n}).Info("old rasters removed")
		}
	}

	p := &seamap.Pipeline{
		Config:   o.Pipeline,
		Samples:  samples,
		Geometry: geometry,
		Output:   store,
		Log:      log,
	}
	sum, err := p.Run(ctx)
	if sum != nil {
		logSummary(log, sum)
	}
	if err != nil {
		return err
	}
	log.WithField("duration", time.Since(startTime).Round(time.Millisecond)).Info("run complete")
	return summaryError(sum)
}

// newLogger returns a logger writing text records to w.
func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	return log
}

// logSummary logs the outcome of every parameter and the run totals.
func logSummary(log logrus.FieldLogger, sum *seamap.Summary) {
	for _, w := range sum.Warnings {
		log.WithError(w).Warn("run warning")
	}
	for _, ps := range sum.Parameters {
		soft, hard := ps.SoftFailures(), ps.Failures()
		plog := log.WithFields(logrus.Fields{
			"parameter": ps.Parameter,
			"produced":  ps.Produced(),
			"total":     len(ps.Units),
			"skipped":   len(soft),
			"failed":    len(hard),
		})
		for _, u := range soft {
			if u.Err != nil {
				plog.WithField("timestamp", u.Timestamp).WithError(u.Err).Warn("timestep skipped")
				continue
			}
			for _, w := range u.Warnings {
				plog.WithField("timestamp", u.Timestamp).WithError(w).Warn("timestep degraded")
			}
		}
		for _, u := range hard {
			plog.WithField("timestamp", u.Timestamp).WithError(u.Err).Error("timestep failed")
		}
		if ps.MetadataErr != nil {
			plog.WithError(ps.MetadataErr).Error("metadata not written")
		}
		plog.Info("parameter summary")
	}
	produced, total := sum.Totals()
	log.WithFields(logrus.Fields{"produced": produced, "total": total}).Info("batch summary")
}

// summaryError returns an error if any unit or metadata record failed
// for a reason other than a warning.
func summaryError(sum *seamap.Summary) error {
	var failed, metadata int
	for _, ps := range sum.Parameters {
		failed += len(ps.Failures())
		if ps.MetadataErr != nil {
			metadata++
		}
	}
	if failed == 0 && metadata == 0 {
		return nil
	}
	_, total := sum.Totals()
	return fmt.Errorf("seamap: %d of %d rasters and %d metadata records failed", failed, total, metadata)
}
