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

// Package dataset reads global forecast grids from NetCDF-3 files such as
// those served by the NOAA NOMADS GFS archive.
package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/wxasset"
)

// Vars holds the names of the variables read from a dataset.
type Vars struct {
	Lat, Lon, Level, Time string

	// Scalar is the field rendered as a raster, and U and V are the
	// eastward and northward components of the sampled vector field.
	Scalar, U, V string
}

// GFSVars are the variable names used by the NOMADS GFS 0.25 degree
// pressure-level datasets.
var GFSVars = Vars{
	Lat:    "lat",
	Lon:    "lon",
	Level:  "lev",
	Time:   "time",
	Scalar: "tmpprs",
	U:      "ugrdprs",
	V:      "vgrdprs",
}

// Dataset is an open NetCDF file holding co-gridded scalar and vector
// fields. Slice may be called concurrently.
type Dataset struct {
	f    *cdf.File
	file *os.File
	vars Vars

	// Lat holds the latitude cell centers in ascending order. Lon holds
	// the longitude cell centers as stored in the file.
	Lat, Lon []float64

	// Levels holds the vertical coordinate values, or is nil if the
	// fields have no vertical dimension.
	Levels []float64

	// NumTimes is the number of forecast times in the file.
	NumTimes int

	flipLat bool
}

// Open opens the NetCDF file at path and reads its coordinates.
func Open(path string, vars Vars) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %v", err)
	}
	d, err := newDataset(file, vars)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("dataset: opening %s: %v", path, err)
	}
	return d, nil
}

func newDataset(file *os.File, vars Vars) (*Dataset, error) {
	f, err := cdf.Open(file)
	if err != nil {
		return nil, err
	}
	d := &Dataset{f: f, file: file, vars: vars}

	if d.Lat, err = d.readVar(vars.Lat, nil, nil); err != nil {
		return nil, err
	}
	if d.Lon, err = d.readVar(vars.Lon, nil, nil); err != nil {
		return nil, err
	}
	if len(d.Lat) < 2 || len(d.Lon) < 2 {
		return nil, fmt.Errorf("lat and lon variables must be length >= 2 but are %d and %d", len(d.Lat), len(d.Lon))
	}
	if d.Lat[0] > d.Lat[len(d.Lat)-1] {
		d.flipLat = true
		reverse(d.Lat)
	}
	if vars.Level != "" && d.has(vars.Level) {
		if d.Levels, err = d.readVar(vars.Level, nil, nil); err != nil {
			return nil, err
		}
	}

	d.NumTimes = 1
	for _, v := range []string{vars.Scalar, vars.U, vars.V} {
		if !d.has(v) {
			return nil, fmt.Errorf("missing variable %s; available variables are %v", v, f.Header.Variables())
		}
		dims := f.Header.Dimensions(v)
		n := len(dims)
		if n < 2 || dims[n-2] != f.Header.Dimensions(vars.Lat)[0] || dims[n-1] != f.Header.Dimensions(vars.Lon)[0] {
			return nil, fmt.Errorf("variable %s has dimensions %v but must end with [%s %s]", v, dims, vars.Lat, vars.Lon)
		}
		if _, _, err := d.corners(v, 0, 0); err != nil {
			return nil, err
		}
	}
	if t := d.timeLength(vars.Scalar); t > 0 {
		d.NumTimes = t
	}
	return d, nil
}

func (d *Dataset) has(v string) bool {
	return d.f.Header.Lengths(v) != nil
}

// timeLength returns the length of the time dimension of v, or 0 if it
// has none.
func (d *Dataset) timeLength(v string) int {
	for i, dim := range d.f.Header.Dimensions(v) {
		if dim != d.vars.Time {
			continue
		}
		l := d.f.Header.Lengths(v)[i]
		if i == 0 && d.f.Header.IsRecordVariable(v) {
			fi, err := d.file.Stat()
			if err != nil {
				return 0
			}
			l = int(d.f.Header.NumRecs(fi.Size()))
		}
		return l
	}
	return 0
}

// Close closes the underlying file.
func (d *Dataset) Close() error { return d.file.Close() }

// LevelIndex returns the index of the vertical level with value level.
func (d *Dataset) LevelIndex(level float64) (int, error) {
	if d.Levels == nil {
		return 0, nil
	}
	for i, l := range d.Levels {
		if math.Abs(l-level) <= 1e-6*math.Max(1, math.Abs(level)) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("dataset: level %g not found; available levels are %v", level, d.Levels)
}

// Slice reads the scalar and vector fields at the given level value and
// time index. Latitude rows are in ascending order to match d.Lat;
// longitude columns are as stored.
func (d *Dataset) Slice(level float64, t int) (*wxasset.Grid, error) {
	k, err := d.LevelIndex(level)
	if err != nil {
		return nil, err
	}
	if t < 0 || t >= d.NumTimes {
		return nil, fmt.Errorf("dataset: time index %d out of range [0, %d)", t, d.NumTimes)
	}
	g := &wxasset.Grid{Lat: d.Lat, Lon: d.Lon}
	for _, f := range []struct {
		name string
		dst  **sparse.DenseArray
	}{{d.vars.Scalar, &g.Scalar}, {d.vars.U, &g.U}, {d.vars.V, &g.V}} {
		if *f.dst, err = d.slab(f.name, k, t); err != nil {
			return nil, fmt.Errorf("dataset: reading %s at level %g time %d: %v", f.name, level, t, err)
		}
	}
	return g, nil
}

// corners returns the inclusive first and last indices of the [lat, lon]
// slab of variable v at level index k and time index t.
func (d *Dataset) corners(v string, k, t int) (begin, end []int, err error) {
	dims := d.f.Header.Dimensions(v)
	lengths := d.f.Header.Lengths(v)
	begin = make([]int, len(dims))
	end = make([]int, len(dims))
	for i, dim := range dims[:len(dims)-2] {
		switch {
		case dim == d.vars.Time:
			begin[i], end[i] = t, t
		case dim == d.vars.Level:
			begin[i], end[i] = k, k
		case lengths[i] == 1:
		default:
			return nil, nil, fmt.Errorf("variable %s has unsupported dimension %s of length %d", v, dim, lengths[i])
		}
	}
	end[len(dims)-2], end[len(dims)-1] = len(d.Lat)-1, len(d.Lon)-1
	return begin, end, nil
}

// slab reads the [lat, lon] slab of variable v at level index k and time
// index t.
func (d *Dataset) slab(v string, k, t int) (*sparse.DenseArray, error) {
	nlat, nlon := len(d.Lat), len(d.Lon)
	begin, end, err := d.corners(v, k, t)
	if err != nil {
		return nil, err
	}
	data, err := d.readVar(v, begin, end)
	if err != nil {
		return nil, err
	}
	if len(data) != nlat*nlon {
		return nil, fmt.Errorf("variable %s: read %d values but want %d", v, len(data), nlat*nlon)
	}
	a := sparse.ZerosDense(nlat, nlon)
	if d.flipLat {
		for r := 0; r < nlat; r++ {
			copy(a.Elements[r*nlon:(r+1)*nlon], data[(nlat-1-r)*nlon:(nlat-r)*nlon])
		}
	} else {
		copy(a.Elements, data)
	}
	return a, nil
}

// readVar reads the numeric variable v between the inclusive corners begin
// and end, applying any scale_factor and add_offset attributes and
// replacing _FillValue and missing_value entries with NaN.
func (d *Dataset) readVar(v string, begin, end []int) ([]float64, error) {
	if !d.has(v) {
		return nil, fmt.Errorf("missing variable %s", v)
	}
	r := d.f.Reader(v, begin, end)
	n := -1
	if end != nil {
		n = 1
		for i := range end {
			n *= end[i] - begin[i] + 1
		}
	}
	dataI := r.Zero(n)
	if _, err := r.Read(dataI); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading variable %s: %v", v, err)
	}
	var data []float64
	switch dd := dataI.(type) {
	case []float64:
		data = dd
	case []float32:
		data = make([]float64, len(dd))
		for i, x := range dd {
			data[i] = float64(x)
		}
	case []int16:
		data = make([]float64, len(dd))
		for i, x := range dd {
			data[i] = float64(x)
		}
	case []int32:
		data = make([]float64, len(dd))
		for i, x := range dd {
			data[i] = float64(x)
		}
	default:
		return nil, fmt.Errorf("variable %s has unsupported type %T", v, dataI)
	}

	for _, a := range []string{"_FillValue", "missing_value"} {
		noData, ok, err := d.attr(v, a)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for i, x := range data {
			if x == noData {
				data[i] = math.NaN()
			}
		}
	}
	scale, hasScale, err := d.attr(v, "scale_factor")
	if err != nil {
		return nil, err
	}
	offset, hasOffset, err := d.attr(v, "add_offset")
	if err != nil {
		return nil, err
	}
	if hasScale || hasOffset {
		if !hasScale {
			scale = 1
		}
		for i, x := range data {
			data[i] = x*scale + offset
		}
	}
	return data, nil
}

// attr returns the first value of the numeric attribute a of variable v.
func (d *Dataset) attr(v, a string) (float64, bool, error) {
	switch val := d.f.Header.GetAttribute(v, a).(type) {
	case nil:
		return 0, false, nil
	case []float32:
		return float64(val[0]), true, nil
	case []float64:
		return val[0], true, nil
	case []int16:
		return float64(val[0]), true, nil
	case []int32:
		return float64(val[0]), true, nil
	default:
		return 0, false, fmt.Errorf("invalid type for attribute %s of %s: %T", a, v, val)
	}
}

// Describe writes a summary of the variables in the dataset to w.
func (d *Dataset) Describe(w io.Writer) error {
	vars := d.f.Header.Variables()
	sort.Strings(vars)
	for _, v := range vars {
		if _, err := fmt.Fprintf(w, "%s [%s] %v\n", v, strings.Join(d.f.Header.Dimensions(v), ", "), d.f.Header.Lengths(v)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d latitudes from %g to %g, %d longitudes from %g to %g, levels %v, %d times\n",
		len(d.Lat), d.Lat[0], d.Lat[len(d.Lat)-1], len(d.Lon), d.Lon[0], d.Lon[len(d.Lon)-1], d.Levels, d.NumTimes)
	return err
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
