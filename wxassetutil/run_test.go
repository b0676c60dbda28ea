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
	"image/png"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/wxasset"
	"github.com/spatialmodel/wxasset/cloud"
)

// writeTestDataset writes a GFS-style file with 2 forecast times, levels
// 850 and 500, 30 degree latitude cells stored from north to south, and 45
// degree longitude cells from 0 to 315. Temperatures are in Kelvin.
func writeTestDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gfs.20240305.t00z.nc")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	const nt, nk, nlat, nlon = 2, 2, 4, 8
	h := cdf.NewHeader([]string{"time", "lev", "lat", "lon"}, []int{0, nk, nlat, nlon})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddVariable("lev", []string{"lev"}, []float64{0})
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	for _, v := range []string{"tmpprs", "ugrdprs", "vgrdprs"} {
		h.AddVariable(v, []string{"time", "lev", "lat", "lon"}, []float32{0})
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(v string, data interface{}) {
		if _, err := f.Writer(v, nil, nil).Write(data); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", v, err)
		}
	}
	write("lev", []float64{850, 500})
	write("lat", []float64{45, 15, -15, -45})
	write("lon", []float64{0, 45, 90, 135, 180, 225, 270, 315})
	write("time", []float64{0, 3})
	temp := make([]float32, nt*nk*nlat*nlon)
	wind := make([]float32, nt*nk*nlat*nlon)
	for i := range temp {
		temp[i] = float32(273.15 + float64(i%(nlat*nlon)) + 0.5)
		wind[i] = float32(i % 7)
	}
	write("tmpprs", temp)
	write("ugrdprs", wind)
	write("vgrdprs", wind)
	if err := cdf.UpdateNumRecs(w); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRunConfig(t *testing.T, format string) *Config {
	t.Helper()
	v := testViper()
	v.Set("Dataset.Path", writeTestDataset(t))
	v.Set("Levels", []int{850, 500})
	v.Set("Times", []int{0, 1})
	v.Set("Stride", 2)
	v.Set("Render.WidthInches", 3.6)
	v.Set("Render.DPI", 10)
	v.Set("Render.Labels", true)
	v.Set("OutputDir", t.TempDir())
	v.Set("PointFormat", format)
	v.Set("Workers", 2)
	c, err := LoadConfig(v, testNow)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRun(t *testing.T) {
	c := testRunConfig(t, "json")
	if err := Run(context.Background(), c, discardLogger()); err != nil {
		t.Fatal(err)
	}
	for _, level := range c.Levels {
		for _, ti := range c.Times {
			f, err := os.Open(filepath.Join(c.OutputDir, c.ScalarFile(level, ti)))
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(f)
			f.Close()
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != 36 || b.Dy() != 18 {
				t.Errorf("image size: have %dx%d, want 36x18", b.Dx(), b.Dy())
			}
			// The grid covers 60S to 60N.
			if _, _, _, a := img.At(18, 9).RGBA(); a == 0 {
				t.Errorf("%s: equator pixel is unfilled", c.ScalarFile(level, ti))
			}
			if _, _, _, a := img.At(18, 0).RGBA(); a != 0 {
				t.Errorf("%s: polar pixel is filled", c.ScalarFile(level, ti))
			}

			f, err = os.Open(filepath.Join(c.OutputDir, c.VectorFile(level, ti)))
			if err != nil {
				t.Fatal(err)
			}
			pts, err := wxasset.ReadPoints(f, wxasset.PointsJSON)
			f.Close()
			if err != nil {
				t.Fatal(err)
			}
			if len(pts) != 8 {
				t.Errorf("%s: have %d points, want 8", c.VectorFile(level, ti), len(pts))
			}
			for _, p := range pts {
				if p.Lon < -180 || p.Lon >= 180 {
					t.Errorf("longitude %g out of range", p.Lon)
				}
			}
		}
	}
}

func TestRun_blob(t *testing.T) {
	c := testRunConfig(t, "msgpack.zst")
	c.OutputDir = "file://" + filepath.ToSlash(c.OutputDir) + "/assets"
	c.Levels = []int{500}
	c.Times = []int{1}
	log, hook := logtest.NewNullLogger()
	if err := Run(context.Background(), c, log); err != nil {
		t.Fatal(err)
	}
	var summary *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "generating assets" {
			summary = e
		}
	}
	if summary == nil {
		t.Fatal("no summary log entry")
	}
	want := &geom.Bounds{Min: geom.Point{X: -202.5, Y: -60}, Max: geom.Point{X: 157.5, Y: 60}}
	if b, ok := summary.Data["bounds"].(*geom.Bounds); !ok || !reflect.DeepEqual(b, want) {
		t.Errorf("bounds: have %v, want %v", summary.Data["bounds"], want)
	}
	if summary.Data["nlat"] != 4 || summary.Data["nlon"] != 8 {
		t.Errorf("shape: have [%v %v], want [4 8]", summary.Data["nlat"], summary.Data["nlon"])
	}
	ctx := context.Background()
	sink, err := cloud.OpenSink(ctx, c.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()
	buf := new(bytes.Buffer)
	if err := sink.Read(ctx, "wind_500_1.msgpack.zst", buf); err != nil {
		t.Fatal(err)
	}
	pts, err := wxasset.ReadPoints(buf, wxasset.PointsMsgpackZstd)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 8 {
		t.Errorf("have %d points, want 8", len(pts))
	}
	buf.Reset()
	if err := sink.Read(ctx, "temp_500_1.png", buf); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(buf); err != nil {
		t.Error(err)
	}
}

func TestRun_invalid(t *testing.T) {
	for _, test := range []struct {
		name          string
		levels, times []int
		err           string
	}{
		{name: "level", levels: []int{700}, times: []int{0}, err: "level 700 not found"},
		{name: "time", levels: []int{850}, times: []int{0, 2}, err: "time index 2 is out of range"},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := testRunConfig(t, "json")
			c.Levels, c.Times = test.levels, test.times
			err := Run(context.Background(), c, discardLogger())
			if err == nil || !strings.Contains(err.Error(), test.err) {
				t.Fatalf("have error %v, want %q", err, test.err)
			}
			files, err := os.ReadDir(c.OutputDir)
			if err != nil {
				t.Fatal(err)
			}
			if len(files) != 0 {
				t.Errorf("wrote %d files before failing", len(files))
			}
		})
	}
}

func TestInfo(t *testing.T) {
	v := testViper()
	v.Set("Dataset.Path", writeTestDataset(t))
	buf := new(bytes.Buffer)
	if err := Info(context.Background(), v, testNow, buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"tmpprs [time, lev, lat, lon]", "4 latitudes from -45 to 45", "2 times"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q does not contain %q", buf.String(), want)
		}
	}
}

func TestVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	Root.SetOut(buf)
	Root.SetArgs([]string{"version"})
	defer func() {
		Root.SetOut(nil)
		Root.SetArgs(nil)
	}()
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "wxasset v" + wxasset.Version + "\n"; buf.String() != want {
		t.Errorf("have %q, want %q", buf.String(), want)
	}
}
