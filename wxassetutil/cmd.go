/*
Copyright © 2026 the wxasset authors.
This file is part of wxasset.

wxasset is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

wxasset is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with wxasset.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package wxassetutil contains the command-line interface and
// configuration for generating forecast map assets.
package wxassetutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/wxasset"
	"github.com/spatialmodel/wxasset/dataset"
	"github.com/spf13/cast"
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
	// Options are the configuration options available to wxasset.
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
			name: "Dataset.Path",
			usage: `
              Dataset.Path specifies the location of the NetCDF forecast
              file. It can be a local path, an http or https URL, or a
              blob URL (gs://, s3://, or file://). The wildcards [DATE]
              and [CYCLE] are replaced with the forecast date and cycle.`,
			defaultVal: "gfs.[DATE].t[CYCLE]z.pgrb2.0p25.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.Date",
			usage: `
              Dataset.Date specifies the forecast date in the format
              YYYYMMDD. If empty, the current UTC date is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.Cycle",
			usage: `
              Dataset.Cycle specifies the forecast cycle hour: 0, 6, 12, or 18.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.LatVar",
			usage: `
              Dataset.LatVar is the name of the latitude variable.`,
			defaultVal: dataset.GFSVars.Lat,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.LonVar",
			usage: `
              Dataset.LonVar is the name of the longitude variable.`,
			defaultVal: dataset.GFSVars.Lon,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.LevelVar",
			usage: `
              Dataset.LevelVar is the name of the vertical level variable.`,
			defaultVal: dataset.GFSVars.Level,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.TimeVar",
			usage: `
              Dataset.TimeVar is the name of the time dimension.`,
			defaultVal: dataset.GFSVars.Time,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.ScalarVar",
			usage: `
              Dataset.ScalarVar is the name of the variable rendered as a
              raster.`,
			defaultVal: dataset.GFSVars.Scalar,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.UVar",
			usage: `
              Dataset.UVar is the name of the eastward vector component.`,
			defaultVal: dataset.GFSVars.U,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Dataset.VVar",
			usage: `
              Dataset.VVar is the name of the northward vector component.`,
			defaultVal: dataset.GFSVars.V,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Levels",
			usage: `
              Levels specifies the vertical levels to process, in the units
              of the level variable.`,
			defaultVal: []int{850, 700, 500},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Times",
			usage: `
              Times specifies the indices of the forecast times to process.`,
			defaultVal: []int{0, 1, 2, 3, 4},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Stride",
			usage: `
              Stride is the spacing, in grid cells, between sampled
              vector points in both directions.`,
			defaultVal: 6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ScalarOffset",
			usage: `
              ScalarOffset is added to the scalar field after scaling and
              before rendering. The default converts Kelvin to Celsius.`,
			defaultVal: wxasset.KelvinToCelsius,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ScalarScale",
			usage: `
              ScalarScale multiplies the scalar field before rendering.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.FillLevels",
			usage: `
              Render.FillLevels specifies the boundaries of the raster color
              bands, either as min:max:step or as a comma-separated list.`,
			defaultVal: "-60:40:2",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.ContourLevels",
			usage: `
              Render.ContourLevels specifies the values of the isolines
              drawn over the raster, in the same format as
              Render.FillLevels. Empty means no isolines.`,
			defaultVal: "-60:40:10",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.Palette",
			usage: `
              Render.Palette is the name of the color map. Options are jet,
              bluered, purpleorange, greenpurple, blackbody, kindlmann, and
              the ColorBrewer names. Append _r to reverse a color map.`,
			defaultVal: "jet",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.WidthInches",
			usage: `
              Render.WidthInches is the raster width in inches. The height
              is half the width.`,
			defaultVal: 18.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.DPI",
			usage: `
              Render.DPI is the raster resolution in pixels per inch.`,
			defaultVal: 150,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.ContourWidth",
			usage: `
              Render.ContourWidth is the isoline width in points.`,
			defaultVal: 0.4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.Labels",
			usage: `
              Render.Labels specifies whether isolines are labeled with
              their values.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Render.Transparent",
			usage: `
              Render.Transparent specifies whether raster pixels with no
              value are left transparent. If false, they are white.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the local directory or blob URL the assets are
              written to.`,
			shorthand:  "o",
			defaultVal: "data",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ScalarName",
			usage: `
              ScalarName is the prefix of the raster file names, which are
              in the form ScalarName_level_time.png.`,
			defaultVal: "temp",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VectorName",
			usage: `
              VectorName is the prefix of the point file names, which are
              in the form VectorName_level_time.json.`,
			defaultVal: "wind",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PointFormat",
			usage: `
              PointFormat is the point file encoding: json or msgpack.zst.`,
			defaultVal: "json",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of slices processed at once. Zero or
              less means one per CPU.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Fetch.MaxElapsed",
			usage: `
              Fetch.MaxElapsed is the longest time to keep retrying a failed
              dataset download.`,
			defaultVal: "15m",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is an optional file to write log messages to in
              addition to the terminal.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Verbose",
			usage: `
              Verbose enables debug messages.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WXASSET")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
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
	Root.AddCommand(infoCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("wxasset: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "wxasset",
	Short: "Generate map assets from global forecast grids.",
	Long: `wxasset converts gridded global weather forecasts into map-ready assets:
a geo-registered PNG raster of a scalar field such as temperature, and a
list of sampled wind vectors for particle animation.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'WXASSET_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'. Many configuration
variables are additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of wxasset.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("wxasset v%s\n", wxasset.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate the assets.",
	Long: `run downloads the forecast dataset if necessary and writes a raster
and a vector point file for every requested level and forecast time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg, time.Now())
		if err != nil {
			return err
		}
		log := newLogger(c, os.Stderr)
		return Run(context.Background(), c, log)
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the dataset.",
	Long: `info downloads the forecast dataset if necessary and prints its
variables, dimensions, and coordinates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Info(context.Background(), Cfg, time.Now(), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

// Info writes a description of the dataset configured in cfg to w.
func Info(ctx context.Context, cfg *viper.Viper, now time.Time, w io.Writer) error {
	date, err := checkDate(cfg.GetString("Dataset.Date"), now)
	if err != nil {
		return err
	}
	cycle := cfg.GetInt("Dataset.Cycle")
	if err := checkCycle(cycle); err != nil {
		return err
	}
	c := &Config{
		Path:    dataset.ExpandPath(cfg.GetString("Dataset.Path"), date, cycle),
		LogFile: os.ExpandEnv(cfg.GetString("LogFile")),
		Verbose: cfg.GetBool("Verbose"),
	}
	f := &dataset.Fetcher{Log: newLogger(c, os.Stderr)}
	if d, err := cast.ToDurationE(cfg.Get("Fetch.MaxElapsed")); err == nil {
		f.MaxElapsed = d
	}
	local, cleanup, err := f.Fetch(ctx, c.Path)
	if err != nil {
		return err
	}
	defer cleanup()
	d, err := dataset.Open(local, varsConfig(cfg))
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Describe(w)
}
