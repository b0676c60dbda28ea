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

package wxassetutil

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/wxasset"
	"github.com/spatialmodel/wxasset/cloud"
	"github.com/spatialmodel/wxasset/dataset"
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the settings for one asset generation run.
type Config struct {
	// Path is the dataset location with the date and cycle wildcards
	// already filled in.
	Path string
	Vars dataset.Vars

	// Levels are vertical coordinate values and Times are forecast
	// time indices. Every combination of the two is processed.
	Levels, Times []int

	Stride                    int
	ScalarOffset, ScalarScale float64
	Raster                    wxasset.RasterConfig

	// OutputDir is a local directory or a blob URL.
	OutputDir              string
	ScalarName, VectorName string
	PointFormat            wxasset.PointFormat

	Workers    int
	LogFile    string
	Verbose    bool
	MaxElapsed time.Duration
}

// LoadConfig reads a Config from cfg. now is used in place of an unset
// Dataset.Date.
func LoadConfig(cfg *viper.Viper, now time.Time) (*Config, error) {
	date, err := checkDate(cfg.GetString("Dataset.Date"), now)
	if err != nil {
		return nil, err
	}
	cycle := cfg.GetInt("Dataset.Cycle")
	if err := checkCycle(cycle); err != nil {
		return nil, err
	}
	path := os.ExpandEnv(cfg.GetString("Dataset.Path"))
	if path == "" {
		return nil, fmt.Errorf("wxasset: you need to specify a dataset location (for example: Dataset.Path=\"gfs.[DATE].t[CYCLE]z.nc\")")
	}

	c := &Config{
		Path:         dataset.ExpandPath(path, date, cycle),
		Vars:         varsConfig(cfg),
		Stride:       cfg.GetInt("Stride"),
		ScalarOffset: cfg.GetFloat64("ScalarOffset"),
		ScalarScale:  cfg.GetFloat64("ScalarScale"),
		ScalarName:   os.ExpandEnv(cfg.GetString("ScalarName")),
		VectorName:   os.ExpandEnv(cfg.GetString("VectorName")),
		Workers:      cfg.GetInt("Workers"),
		LogFile:      os.ExpandEnv(cfg.GetString("LogFile")),
		Verbose:      cfg.GetBool("Verbose"),
	}
	if c.Levels, err = toIntSliceE(cfg.Get("Levels")); err != nil {
		return nil, fmt.Errorf("wxasset: parsing config variable Levels: %v", err)
	}
	if c.Times, err = toIntSliceE(cfg.Get("Times")); err != nil {
		return nil, fmt.Errorf("wxasset: parsing config variable Times: %v", err)
	}
	if len(c.Levels) == 0 || len(c.Times) == 0 {
		return nil, fmt.Errorf("wxasset: Levels and Times must each contain at least one value")
	}
	for _, t := range c.Times {
		if t < 0 {
			return nil, fmt.Errorf("wxasset: Times must not be negative but contains %d", t)
		}
	}
	if c.Stride <= 0 {
		return nil, fmt.Errorf("wxasset: Stride=%d but should be >0", c.Stride)
	}
	if c.ScalarScale == 0 || math.IsNaN(c.ScalarScale) {
		return nil, fmt.Errorf("wxasset: ScalarScale=%g but should be nonzero", c.ScalarScale)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if err = checkNames(c.ScalarName, c.VectorName); err != nil {
		return nil, err
	}
	if c.OutputDir, err = checkOutputDir(cfg.GetString("OutputDir")); err != nil {
		return nil, err
	}
	if c.PointFormat, err = wxasset.ParsePointFormat(cfg.GetString("PointFormat")); err != nil {
		return nil, err
	}
	if c.MaxElapsed, err = cast.ToDurationE(cfg.Get("Fetch.MaxElapsed")); err != nil {
		return nil, fmt.Errorf("wxasset: parsing config variable Fetch.MaxElapsed: %v", err)
	}
	if c.Raster, err = rasterConfig(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func varsConfig(cfg *viper.Viper) dataset.Vars {
	return dataset.Vars{
		Lat:    cfg.GetString("Dataset.LatVar"),
		Lon:    cfg.GetString("Dataset.LonVar"),
		Level:  cfg.GetString("Dataset.LevelVar"),
		Time:   cfg.GetString("Dataset.TimeVar"),
		Scalar: cfg.GetString("Dataset.ScalarVar"),
		U:      cfg.GetString("Dataset.UVar"),
		V:      cfg.GetString("Dataset.VVar"),
	}
}

func rasterConfig(cfg *viper.Viper) (wxasset.RasterConfig, error) {
	r := wxasset.DefaultRasterConfig()
	var err error
	if r.FillLevels, err = parseLevels(cfg.GetString("Render.FillLevels")); err != nil {
		return r, fmt.Errorf("wxasset: parsing config variable Render.FillLevels: %v", err)
	}
	if r.ContourLevels, err = parseLevels(cfg.GetString("Render.ContourLevels")); err != nil {
		return r, fmt.Errorf("wxasset: parsing config variable Render.ContourLevels: %v", err)
	}
	r.Palette = cfg.GetString("Render.Palette")
	if _, err := wxasset.ColorMap(r.Palette); err != nil {
		return r, err
	}
	r.WidthInches = cfg.GetFloat64("Render.WidthInches")
	r.DPI = cfg.GetInt("Render.DPI")
	r.ContourWidth = vg.Points(cfg.GetFloat64("Render.ContourWidth"))
	r.Labels = cfg.GetBool("Render.Labels")
	if !cfg.GetBool("Render.Transparent") {
		r.Background = color.White
	}
	return r, nil
}

// parseLevels parses either a range written as min:max:step or a
// comma-separated list of values. An empty string returns no levels.
func parseLevels(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("level range %q should be in the form min:max:step", s)
		}
		var v [3]float64
		for i, p := range parts {
			f, err := cast.ToFloat64E(strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			v[i] = f
		}
		l := wxasset.Levels(v[0], v[1], v[2])
		if l == nil {
			return nil, fmt.Errorf("level range %q is empty", s)
		}
		return l, nil
	}
	var l []float64
	for _, p := range strings.Split(s, ",") {
		f, err := cast.ToFloat64E(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		l = append(l, f)
	}
	return l, nil
}

// toIntSliceE converts a value that may have come from a configuration
// file, an environment variable, or a command-line flag to a slice of
// integers.
func toIntSliceE(v interface{}) ([]int, error) {
	if s, ok := v.(string); ok {
		s = strings.Trim(strings.TrimSpace(s), "[]")
		if s == "" {
			return nil, nil
		}
		var o []int
		for _, p := range strings.Split(s, ",") {
			i, err := cast.ToIntE(strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			o = append(o, i)
		}
		return o, nil
	}
	return cast.ToIntSliceE(v)
}

// checkDate parses a date in YYYYMMDD format, returning the UTC date of
// now if d is empty.
func checkDate(d string, now time.Time) (time.Time, error) {
	d = os.ExpandEnv(d)
	if d == "" {
		n := now.UTC()
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("20060102", d)
	if err != nil {
		return t, fmt.Errorf("wxasset: Dataset.Date should be in the form YYYYMMDD but is set to `%s`", d)
	}
	return t, nil
}

// checkCycle makes sure that c is one of the four daily forecast cycles.
func checkCycle(c int) error {
	switch c {
	case 0, 6, 12, 18:
		return nil
	}
	return fmt.Errorf("wxasset: Dataset.Cycle needs to be set to 0, 6, 12, or 18 but is currently set to %d", c)
}

func checkNames(names ...string) error {
	for _, n := range names {
		if n == "" || strings.ContainsAny(n, `/\`) {
			return fmt.Errorf("wxasset: invalid output file name prefix %q", n)
		}
	}
	return nil
}

// checkOutputDir expands environment variables in the output location
// and creates it if it is a local directory.
func checkOutputDir(d string) (string, error) {
	d = os.ExpandEnv(d)
	if d == "" {
		return "", fmt.Errorf(`wxasset: you need to specify an output directory configuration variable (for example: OutputDir="data")`)
	}
	if cloud.IsBlob(d) {
		return d, nil
	}
	if err := os.MkdirAll(d, 0755); err != nil {
		return d, fmt.Errorf("wxasset: creating OutputDir: %v", err)
	}
	return d, nil
}

// newLogger creates a logger that writes to w and, if c.LogFile is set,
// to a rotating log file.
func newLogger(c *Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	if c.LogFile != "" {
		os.MkdirAll(filepath.Dir(c.LogFile), 0755)
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    32, // MB
			MaxBackups: 3,
		})
	}
	log.SetOutput(w)
	if c.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
