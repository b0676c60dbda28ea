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
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/wxasset"
	"github.com/spatialmodel/wxasset/cloud"
	"github.com/spatialmodel/wxasset/dataset"
	"golang.org/x/sync/errgroup"
)

// job is a single level and forecast time to process.
type job struct {
	level, time int
}

// ScalarFile returns the name of the raster file for the given level and
// time.
func (c *Config) ScalarFile(level, t int) string {
	return fmt.Sprintf("%s_%d_%d.png", c.ScalarName, level, t)
}

// VectorFile returns the name of the point file for the given level and
// time.
func (c *Config) VectorFile(level, t int) string {
	return fmt.Sprintf("%s_%d_%d%s", c.VectorName, level, t, c.PointFormat.Ext())
}

// Run fetches the dataset described by c and writes a raster and a point
// file to c.OutputDir for every combination of c.Levels and c.Times.
func Run(ctx context.Context, c *Config, log logrus.FieldLogger) error {
	start := time.Now()
	f := &dataset.Fetcher{MaxElapsed: c.MaxElapsed, Log: log}
	local, cleanup, err := f.Fetch(ctx, c.Path)
	if err != nil {
		return err
	}
	defer cleanup()

	d, err := dataset.Open(local, c.Vars)
	if err != nil {
		return err
	}
	defer d.Close()

	var jobs []job
	for _, l := range c.Levels {
		if _, err := d.LevelIndex(float64(l)); err != nil {
			return err
		}
		for _, t := range c.Times {
			if t >= d.NumTimes {
				return fmt.Errorf("wxasset: time index %d is out of range; the dataset has %d times", t, d.NumTimes)
			}
			jobs = append(jobs, job{level: l, time: t})
		}
	}

	// The coordinates are the same for every slice.
	ax, err := wxasset.NewAxes(d.Lat, d.Lon)
	if err != nil {
		return err
	}
	p, err := wxasset.NewPipeline(c.Raster, c.Stride, c.ScalarOffset, c.ScalarScale)
	if err != nil {
		return err
	}
	sink, err := cloud.OpenSink(ctx, c.OutputDir)
	if err != nil {
		return err
	}
	defer sink.Close()

	w, h := p.Renderer.Size()
	nlat, nlon := ax.Shape()
	log.WithFields(logrus.Fields{
		"dataset": c.Path,
		"nlat":    nlat,
		"nlon":    nlon,
		"bounds":  ax.Bounds(),
		"jobs":    len(jobs),
		"raster":  fmt.Sprintf("%dx%d", w, h),
	}).Info("generating assets")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := c.process(ctx, d, ax, p, sink, j, log); err != nil {
				return fmt.Errorf("level %d time %d: %w", j.level, j.time, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"jobs": len(jobs), "elapsed": time.Since(start).Round(time.Millisecond)}).Info("done")
	return nil
}

func (c *Config) process(ctx context.Context, d *dataset.Dataset, ax *wxasset.Axes, p *wxasset.Pipeline, sink *cloud.Sink, j job, log logrus.FieldLogger) error {
	grid, err := d.Slice(float64(j.level), j.time)
	if err != nil {
		return err
	}
	r, err := p.Process(ax, grid.Scalar, grid.U, grid.V)
	if err != nil {
		return err
	}
	img := new(bytes.Buffer)
	if err := wxasset.EncodePNG(img, r.Image); err != nil {
		return err
	}
	pts := new(bytes.Buffer)
	if err := wxasset.WritePoints(pts, r.Points, c.PointFormat); err != nil {
		return err
	}
	scalarFile, vectorFile := c.ScalarFile(j.level, j.time), c.VectorFile(j.level, j.time)
	if err := sink.Write(ctx, scalarFile, img.Bytes()); err != nil {
		return err
	}
	if err := sink.Write(ctx, vectorFile, pts.Bytes()); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"lev":    j.level,
		"fcst":   j.time,
		"points": len(r.Points),
		"bytes":  img.Len() + pts.Len(),
	}).Debugf("wrote %s and %s", sink.Key(scalarFile), sink.Key(vectorFile))
	return nil
}
