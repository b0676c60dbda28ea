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
	"encoding/json"
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Point is one vector sample. Non-finite components are written to JSON
// as null.
type Point struct {
	Lat float64 `msgpack:"lat"`
	Lon float64 `msgpack:"lon"`
	U   float64 `msgpack:"u"`
	V   float64 `msgpack:"v"`
}

type jsonPoint struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
	U   *float64 `json:"u"`
	V   *float64 `json:"v"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonPoint{Lat: finite(p.Lat), Lon: finite(p.Lon), U: finite(p.U), V: finite(p.V)})
}

// UnmarshalJSON implements json.Unmarshaler. Null components become NaN.
func (p *Point) UnmarshalJSON(b []byte) error {
	var jp jsonPoint
	if err := json.Unmarshal(b, &jp); err != nil {
		return err
	}
	*p = Point{Lat: orNaN(jp.Lat), Lon: orNaN(jp.Lon), U: orNaN(jp.U), V: orNaN(jp.V)}
	return nil
}

// Sample subsamples the u and v fields at every stride-th latitude and
// longitude index, starting from zero, and returns the points in row-major
// (latitude, then longitude) order. The number of points returned is
// ceil(len(lat)/stride) * ceil(len(lon)/stride).
func Sample(u, v *sparse.DenseArray, lat, lon []float64, stride int) ([]Point, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("wxasset: sampling with stride %d: %w", stride, ErrInvalidStride)
	}
	nlat, nlon := len(lat), len(lon)
	if !hasShape(u, nlat, nlon) || !hasShape(v, nlat, nlon) {
		return nil, fmt.Errorf("wxasset: sampling: u %v and v %v must both be shaped [%d %d]: %w",
			shapeOf(u), shapeOf(v), nlat, nlon, ErrInvalidGrid)
	}
	pts := make([]Point, 0, ceilDiv(nlat, stride)*ceilDiv(nlon, stride))
	for i := 0; i < nlat; i += stride {
		for j := 0; j < nlon; j += stride {
			k := i*nlon + j
			pts = append(pts, Point{Lat: lat[i], Lon: lon[j], U: u.Elements[k], V: v.Elements[k]})
		}
	}
	return pts, nil
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
