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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/seamap"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Seamap.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "EnvFile",
			usage: `
              EnvFile specifies a file of environment variables to load
              before the configuration is read, so that SEAMAP_ variables
              can be kept alongside the data. A missing file is ignored.`,
			defaultVal: ".env",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SampleFile",
			usage: `
              SampleFile is the path to the forecast sample file, a JSON
              document that may be gzip compressed. It can include
              environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "WaterMask",
			usage: `
              WaterMask is the path to the water polygons, either GeoJSON
              or an ESRI shapefile (.shp). If it is empty or cannot be read,
              every raster is fully transparent. It can include environment
              variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the location where rasters and metadata are
              written. It can be a local directory or a bucket URL such as
              gs://bucket/prefix or s3://bucket/prefix.`,
			shorthand:  "o",
			defaultVal: "images",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If it
              is empty, the log is written to seamap.log in the OutputDir,
              or in the working directory when OutputDir is a bucket URL.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of logged messages: debug,
              info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Parameters",
			usage: `
              Parameters is the list of forecast parameters to render, in
              order. Valid values are current, temperature, salinity and
              all.`,
			shorthand:  "p",
			defaultVal: []string{"current", "temperature", "salinity"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BBox",
			usage: `
              BBox is the rendered extent as lon_min,lon_max,lat_min,lat_max
              in degrees. If it is empty, the extent of the water polygons
              is used.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Resolution",
			usage: `
              Resolution is the width and height of each raster in pixels.`,
			shorthand:  "r",
			defaultVal: 1200,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "EdgePoints",
			usage: `
              EdgePoints is the number of synthetic points placed along
              each edge of the extent before interpolation. Zero disables
              edge synthesis.`,
			defaultVal: seamap.DefaultEdgePoints,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FillIterations",
			usage: `
              FillIterations is the maximum number of diffusive fill passes
              over cells that remain unresolved after interpolation.`,
			defaultVal: seamap.DefaultFillIterations,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Opacity",
			usage: `
              Opacity is the alpha of water pixels, between 0 and 1.`,
			defaultVal: seamap.DefaultOpacity,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of rasters rendered at once. Zero or
              less uses one worker per processor.`,
			shorthand:  "w",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MaxImages",
			usage: `
              MaxImages limits the number of timesteps rendered for each
              parameter. Zero renders every timestep.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MaxRetries",
			usage: `
              MaxRetries is the number of times a failed write to the
              output location is retried.`,
			defaultVal: 5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Force",
			usage: `
              Force specifies whether rasters that already exist should be
              rendered again and overwritten.`,
			shorthand:  "f",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Clean",
			usage: `
              Clean specifies whether existing rasters of the selected
              parameters should be deleted before rendering starts.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ColorScales",
			usage: `
              ColorScales overrides the color scale of a parameter. It maps
              parameter names to breakpoint tables in the form
              "value:color,value:color", where colors are #RRGGBB or
              SVG color names and values strictly increase.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), colorScalesCmd.Flags()},
		},
		{
			name: "Units",
			usage: `
              Units overrides the unit label recorded in the metadata of a
              parameter, for example {"temperature":"K"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SEAMAP")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(colorScalesCmd)
}

// setConfig loads the environment file and then finds and reads in the
// configuration file, if there is one.
func setConfig() error {
	if envFile := os.ExpandEnv(Cfg.GetString("EnvFile")); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("seamap: problem reading environment file: %w", err)
		}
	}
	if cfgpath := os.ExpandEnv(Cfg.GetString("config")); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("seamap: problem reading configuration file: %w", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "seamap",
	Short: "Render ocean forecasts into map overlays.",
	Long: `Seamap renders scattered ocean forecast samples (current speed, sea
temperature and salinity) into water-masked PNG overlays, one per parameter
and forecast hour, with a metadata record for each parameter.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SEAMAP_var' where 'var' is the
name of the variable to be set. Environment variables can also be kept in a
.env file in the working directory.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Seamap.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Seamap v%s\n", seamap.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render the forecast overlays.",
	Long: `run renders one raster for every combination of selected parameter and
forecast timestep in the SampleFile, masks it to the water polygons in
WaterMask, and writes the rasters and one metadata.json per parameter to
OutputDir. A timestep that cannot be rendered is reported in the summary
at the end of the run and does not stop the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := RunOptions(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, o)
	},
	DisableAutoGenTag: true,
}

var colorScalesCmd = &cobra.Command{
	Use:   "colorscales",
	Short: "Print the color scales.",
	Long: `colorscales prints the breakpoint table of each parameter, including
any overrides given in the ColorScales option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scales, err := colorScales(Cfg)
		if err != nil {
			return err
		}
		for _, p := range seamap.Parameters {
			min, max := scales[p].Domain()
			cmd.Printf("%s [%g, %g]: %s\n", p, min, max, scales[p])
		}
		return nil
	},
	DisableAutoGenTag: true,
}
