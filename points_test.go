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
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestPointJSON(t *testing.T) {
	pts := []Point{{Lat: -90, Lon: -180, U: 1.5, V: -2}, {Lat: 0, Lon: 0.25, U: math.NaN(), V: 3}}
	b, err := json.Marshal(pts)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"lat":-90,"lon":-180,"u":1.5,"v":-2},{"lat":0,"lon":0.25,"u":null,"v":3}]`
	if string(b) != want {
		t.Errorf("have %s, want %s", b, want)
	}
	var back []Point
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || !math.IsNaN(back[1].U) || back[1].V != 3 {
		t.Errorf("have %+v", back)
	}
}

func TestWritePoints(t *testing.T) {
	pts := []Point{{Lat: 10, Lon: 20, U: 3, V: 4}, {Lat: 10, Lon: 21.5, U: -3, V: 0}}
	for _, f := range []PointFormat{PointsJSON, PointsMsgpackZstd} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePoints(&buf, pts, f); err != nil {
				t.Fatal(err)
			}
			have, err := ReadPoints(&buf, f)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, pts) {
				t.Errorf("have %v, want %v", have, pts)
			}
		})
	}
}

func TestWritePointsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePoints(&buf, nil, PointsJSON); err != nil {
		t.Fatal(err)
	}
	if s := buf.String(); s != "[]\n" {
		t.Errorf("have %q, want %q", s, "[]\n")
	}
}

func TestParsePointFormat(t *testing.T) {
	for in, want := range map[string]PointFormat{"": PointsJSON, "json": PointsJSON, "msgpack.zst": PointsMsgpackZstd} {
		have, err := ParsePointFormat(in)
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("%q: have %q, want %q", in, have, want)
		}
	}
	if _, err := ParsePointFormat("xml"); err == nil {
		t.Error("expected an error")
	}
	if ext := PointsMsgpackZstd.Ext(); ext != ".msgpack.zst" {
		t.Errorf("extension: have %s", ext)
	}
}
