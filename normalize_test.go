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
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		name     string
		in       []float64
		want     []float64
		wantPerm Permutation
	}{
		{
			name:     "wraparound",
			in:       []float64{350, 0, 10},
			want:     []float64{-10, 0, 10},
			wantPerm: Permutation{0, 1, 2},
		},
		{
			name:     "zero to 360",
			in:       []float64{0, 90, 180, 270},
			want:     []float64{-180, -90, 0, 90},
			wantPerm: Permutation{2, 3, 0, 1},
		},
		{
			name:     "negative",
			in:       []float64{-190, -180, 0},
			want:     []float64{-180, 0, 170},
			wantPerm: Permutation{1, 2, 0},
		},
		{
			name:     "large",
			in:       []float64{720, 725},
			want:     []float64{0, 5},
			wantPerm: Permutation{0, 1},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			in := append([]float64(nil), test.in...)
			have, perm, err := NormalizeLongitude(in)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
			if !reflect.DeepEqual(perm, test.wantPerm) {
				t.Errorf("permutation: have %v, want %v", perm, test.wantPerm)
			}
			if !reflect.DeepEqual(in, test.in) {
				t.Errorf("input was modified: %v", in)
			}
		})
	}
}

func TestNormalizeLongitudeIdempotent(t *testing.T) {
	lon := make([]float64, 1440)
	for i := range lon {
		lon[i] = float64(i) * 0.25
	}
	once, _, err := NormalizeLongitude(lon)
	if err != nil {
		t.Fatal(err)
	}
	twice, perm, err := NormalizeLongitude(once)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalizing twice changed the axis")
	}
	if !perm.IsIdentity() {
		t.Errorf("permutation of normalized axis is not the identity: %v", perm[0:5])
	}
	for i := 1; i < len(once); i++ {
		if once[i] <= once[i-1] {
			t.Fatalf("not strictly ascending at %d: %g, %g", i, once[i-1], once[i])
		}
	}
	if once[0] != -180 || once[len(once)-1] != 179.75 {
		t.Errorf("range: have [%g, %g], want [-180, 179.75]", once[0], once[len(once)-1])
	}
}

func TestNormalizeLongitudeStable(t *testing.T) {
	_, perm, err := NormalizeLongitude([]float64{10, 370, -350, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := Permutation{3, 0, 1, 2}
	if !reflect.DeepEqual(perm, want) {
		t.Errorf("have %v, want %v", perm, want)
	}
}

func TestNormalizeLongitudeInvalid(t *testing.T) {
	for _, in := range [][]float64{nil, {1}, {0, math.NaN()}, {0, math.Inf(1)}} {
		if _, _, err := NormalizeLongitude(in); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("%v: have error %v, want ErrInvalidGrid", in, err)
		}
	}
}

func TestWrapLongitude(t *testing.T) {
	for in, want := range map[float64]float64{
		180: -180, -180: -180, 359.75: -0.25, -181: 179, 540: -180, 0: 0, 179.5: 179.5,
	} {
		if have := WrapLongitude(in); have != want {
			t.Errorf("%g: have %g, want %g", in, have, want)
		}
	}
}

func TestApplyColumnsAlignment(t *testing.T) {
	lon := []float64{0, 60, 120, 180, 240, 300}
	const nrow = 3
	// Each value records the raw longitude of its column and its row.
	f := sparse.ZerosDense(nrow, len(lon))
	for r := 0; r < nrow; r++ {
		for c, l := range lon {
			f.Elements[r*len(lon)+c] = l + 1000*float64(r)
		}
	}
	orig := f.Copy()
	nlon, perm, err := NormalizeLongitude(lon)
	if err != nil {
		t.Fatal(err)
	}
	o, err := perm.ApplyColumns(f)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < nrow; r++ {
		for c := range nlon {
			v := o.Get(r, c) - 1000*float64(r)
			if WrapLongitude(v) != nlon[c] {
				t.Errorf("row %d column %d holds data for longitude %g but axis is %g", r, c, v, nlon[c])
			}
		}
	}
	if !reflect.DeepEqual(f.Elements, orig.Elements) {
		t.Error("input field was modified")
	}
	if _, err := perm.ApplyColumns(sparse.ZerosDense(2, 5)); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("have error %v, want ErrInvalidGrid", err)
	}
	if _, err := perm.Apply([]float64{1, 2}); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("have error %v, want ErrInvalidGrid", err)
	}
}
