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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/seamap"
	"github.com/spf13/cast"
)

// Options holds the settings of the run command.
type Options struct {
	SampleFile string
	WaterMask  string
	OutputDir  string
	LogFile    string
	LogLevel   logrus.Level

	// Clean deletes the existing rasters of the selected parameters
	// before rendering.
	Clean      bool
	MaxRetries int

	Pipeline *seamap.Config
}

// RunOptions reads the settings of the run command from cfg. Invalid
// pipeline settings are reported as a *seamap.ConfigurationError.
func RunOptions(cfg *viper.Viper) (*Options, error) {
	o := &Options{
		WaterMask: os.ExpandEnv(cfg.GetString("WaterMask")),
		Clean:     cfg.GetBool("Clean"),
	}
	var err error
	if o.SampleFile, err = checkInputFile(cfg.GetString("SampleFile")); err != nil {
		return nil, err
	}
	if o.OutputDir, err = checkOutputDir(cfg.GetString("OutputDir")); err != nil {
		return nil, err
	}
	o.LogFile = checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), o.OutputDir)
	if o.LogLevel, err = logrus.ParseLevel(cfg.GetString("LogLevel")); err != nil {
		return nil, &seamap.ConfigurationError{Field: "LogLevel", Msg: err.Error()}
	}
	if o.MaxRetries, err = cast.ToIntE(cfg.Get("MaxRetries")); err != nil || o.MaxRetries < 0 {
		return nil, &seamap.ConfigurationError{Field: "MaxRetries", Msg: fmt.Sprintf("must be a non-negative integer, got %v", cfg.Get("MaxRetries"))}
	}
	if o.Pipeline, err = PipelineConfig(cfg); err != nil {
		return nil, err
	}
	return o, nil
}

// PipelineConfig creates a new pipeline configuration from the
// information in cfg and validates it.
func PipelineConfig(cfg *viper.Viper) (*seamap.Config, error) {
	c := seamap.DefaultConfig()

	var err error
	if c.Parameters, err = parseParameters(cfg.GetStringSlice("Parameters")); err != nil {
		return nil, err
	}
	if c.BBox, err = parseBBox(cfg.GetStringSlice("BBox")); err != nil {
		return nil, err
	}
	if c.ColorScales, err = colorScales(cfg); err != nil {
		return nil, err
	}
	units, err := getStringMapString("Units", cfg)
	if err != nil {
		return nil, &seamap.ConfigurationError{Field: "Units", Msg: err.Error()}
	}
	for name, unit := range units {
		p, err := seamap.ParseParameter(name)
		if err != nil {
			return nil, err
		}
		pi := c.Info[p]
		pi.Unit = unit
		c.Info[p] = pi
	}

	for _, v := range []struct {
		name string
		dst  *int
	}{
		{"Resolution", &c.Resolution},
		{"EdgePoints", &c.EdgePoints},
		{"FillIterations", &c.FillIterations},
		{"Workers", &c.Workers},
		{"MaxImages", &c.MaxImages},
	} {
		if *v.dst, err = cast.ToIntE(cfg.Get(v.name)); err != nil {
			return nil, &seamap.ConfigurationError{Field: v.name, Msg: err.Error()}
		}
	}
	if c.Opacity, err = cast.ToFloat64E(cfg.Get("Opacity")); err != nil {
		return nil, &seamap.ConfigurationError{Field: "Opacity", Msg: err.Error()}
	}
	c.Force = cfg.GetBool("Force")

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseParameters converts parameter names into parameters, expanding
// "all" and dropping duplicates.
func parseParameters(names []string) ([]seamap.Parameter, error) {
	var o []seamap.Parameter
	seen := make(map[seamap.Parameter]bool)
	add := func(p seamap.Parameter) {
		if !seen[p] {
			seen[p] = true
			o = append(o, p)
		}
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if strings.EqualFold(name, "all") {
			for _, p := range seamap.Parameters {
				add(p)
			}
			continue
		}
		p, err := seamap.ParseParameter(name)
		if err != nil {
			return nil, err
		}
		add(p)
	}
	if len(o) == 0 {
		return nil, &seamap.ConfigurationError{Field: "Parameters", Msg: "no parameters selected"}
	}
	return o, nil
}

// parseBBox returns nil for an empty extent so that the extent of the
// water polygons is used.
func parseBBox(v []string) (*seamap.BoundingBox, error) {
	if len(v) == 0 {
		return nil, nil
	}
	f := make([]float64, len(v))
	for i, s := range v {
		var err error
		if f[i], err = cast.ToFloat64E(strings.TrimSpace(s)); err != nil {
			return nil, &seamap.ConfigurationError{Field: "BBox", Msg: fmt.Sprintf("invalid coordinate '%s'", s)}
		}
	}
	b, err := seamap.NewBoundingBox(f)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// colorScales returns the default color scale of every parameter with
// the overrides in the ColorScales option applied.
func colorScales(cfg *viper.Viper) (map[seamap.Parameter]*seamap.ColorScale, error) {
	tables := make(map[seamap.Parameter]string)
	for p, table := range seamap.DefaultColorScales {
		tables[p] = table
	}
	overrides, err := getStringMapString("ColorScales", cfg)
	if err != nil {
		return nil, &seamap.ConfigurationError{Field: "ColorScales", Msg: err.Error()}
	}
	for name, table := range overrides {
		p, err := seamap.ParseParameter(name)
		if err != nil {
			return nil, err
		}
		tables[p] = table
	}
	o := make(map[seamap.Parameter]*seamap.ColorScale, len(tables))
	for p, table := range tables {
		s, err := seamap.ParseColorScale(table)
		if err != nil {
			return nil, fmt.Errorf("seamap: color scale for %s: %w", p, err)
		}
		o[p] = s
	}
	return o, nil
}

// getStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return map[string]string{}, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("invalid JSON object for %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for %s: %#v", varName, i)
	}
}

// checkInputFile makes sure that the sample file is specified and
// expands any environment variables.
func checkInputFile(f string) (string, error) {
	if f == "" {
		return "", &seamap.ConfigurationError{Field: "SampleFile", Msg: `you need to specify a sample file (for example: SampleFile="forecast.json.gz")`}
	}
	return os.ExpandEnv(f), nil
}

// checkOutputDir makes sure that the output location is specified and
// expands any environment variables.
func checkOutputDir(f string) (string, error) {
	if f == "" {
		return "", &seamap.ConfigurationError{Field: "OutputDir", Msg: "you need to specify an output location"}
	}
	return os.ExpandEnv(f), nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputDir string) string {
	if logFile != "" {
		return logFile
	}
	if isBlob(outputDir) {
		return "seamap.log"
	}
	return filepath.Join(outputDir, "seamap.log")
}

// isBlob reports whether the output location is a bucket URL rather
// than a local directory.
func isBlob(location string) bool {
	return strings.Contains(location, "://")
}
