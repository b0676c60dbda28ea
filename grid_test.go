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

package wxasset

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

func TestNewAxes(t *testing.T) {
	lat := axis(181, -90, 1)
	lon := axis(360, 0, 1)
	ax, err := NewAxes(lat, lon)
	if err != nil {
		t.Fatal(err)
	}
	nlat, nlon := ax.Shape()
	if nlat != 181 || nlon != 360 {
		t.Errorf("shape: have [%d %d], want [181 360]", nlat, nlon)
	}
	if ax.Lon[0] != -180 || ax.Lon[359] != 179 {
		t.Errorf("longitude range: have [%g, %g]", ax.Lon[0], ax.Lon[359])
	}
	b := ax.Bounds()
	if b.Min.X != -180.5 || b.Max.X != 179.5 || b.Min.Y != -90.5 || b.Max.Y != 90.5 {
		t.Errorf("bounds: have %+v", b)
	}
	lat[0] = 1000
	if ax.Lat[0] != -90 {
		t.Error("axes share memory with the input")
	}
}

func TestNewAxesInvalid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon []float64
		want     error
	}{
		{name: "short lat", lat: []float64{0}, lon: axis(3, 0, 1), want: ErrInvalidGrid},
		{name: "short lon", lat: axis(3, 0, 1), lon: []float64{0}, want: ErrInvalidGrid},
		{name: "descending lat", lat: []float64{10, 0, -10}, lon: axis(3, 0, 1), want: ErrDegenerateGrid},
		{name: "duplicate lon", lat: axis(3, 0, 1), lon: []float64{0, 360, 10}, want: ErrDegenerateGrid},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewAxes(test.lat, test.lon); !errors.Is(err, test.want) {
				t.Errorf("have error %v, want %v", err, test.want)
			}
		})
	}
}

func TestReorderRoundTrip(t *testing.T) {
	lon := axis(8, 0, 45)
	lat := axis(4, -67.5, 45)
	ax, err := NewAxes(lat, lon)
	if err != nil {
		t.Fatal(err)
	}
	f := testField(4, 8, func(r, c int) float64 { return float64(100*r + c) })
	o, err := ax.Reorder(f)
	if err != nil {
		t.Fatal(err)
	}
	// Invert the permutation and check that the original is recovered.
	back := sparse.ZerosDense(4, 8)
	for r := 0; r < 4; r++ {
		for c, j := range ax.Perm {
			back.Elements[r*8+j] = o.Elements[r*8+c]
		}
	}
	if !reflect.DeepEqual(back.Elements, f.Elements) {
		t.Errorf("have %v, want %v", back.Elements, f.Elements)
	}
	for c, j := range ax.Perm {
		if WrapLongitude(lon[j]) != ax.Lon[c] {
			t.Errorf("column %d: raw longitude %g does not match %g", c, lon[j], ax.Lon[c])
		}
	}
	if _, err := ax.Reorder(sparse.ZerosDense(8, 4)); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("have error %v, want ErrInvalidGrid", err)
	}
}

func TestReorderIdentity(t *testing.T) {
	ax, err := NewAxes(axis(3, -10, 10), axis(4, -90, 45))
	if err != nil {
		t.Fatal(err)
	}
	if !ax.Perm.IsIdentity() {
		t.Fatalf("permutation %v should be the identity", ax.Perm)
	}
	f := testField(3, 4, func(r, c int) float64 { return float64(10*r + c) })
	o, err := ax.Reorder(f)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(o.Elements, f.Elements) || !reflect.DeepEqual(o.Shape, f.Shape) {
		t.Errorf("have %v, want %v", o.Elements, f.Elements)
	}
	o.Elements[0] = -1
	if f.Elements[0] != 0 {
		t.Error("reordered field shares memory with the input")
	}
}

func TestGridValidate(t *testing.T) {
	g := &Grid{
		Lat:    axis(3, 0, 1),
		Lon:    axis(4, 0, 1),
		Scalar: sparse.ZerosDense(3, 4),
		U:      sparse.ZerosDense(3, 4),
		V:      sparse.ZerosDense(3, 4),
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	g.V = sparse.ZerosDense(4, 3)
	if err := g.Validate(); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("have error %v, want ErrInvalidGrid", err)
	}
	g.V = nil
	if err := g.Validate(); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("have error %v, want ErrInvalidGrid", err)
	}
}
