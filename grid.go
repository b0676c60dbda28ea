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
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Grid is one time slice at one level of a global latitude/longitude
// forecast grid. Scalar, U, and V are shaped [len(Lat), len(Lon)] with
// latitude as the row index.
type Grid struct {
	Lat, Lon     []float64
	Scalar, U, V *sparse.DenseArray
}

// Validate checks that the grid has at least two points along each axis
// and that every field matches the axes.
func (g *Grid) Validate() error {
	if len(g.Lat) < 2 || len(g.Lon) < 2 {
		return fmt.Errorf("wxasset: grid has %d latitudes and %d longitudes but needs at least 2 of each: %w",
			len(g.Lat), len(g.Lon), ErrInvalidGrid)
	}
	for name, f := range map[string]*sparse.DenseArray{"scalar": g.Scalar, "u": g.U, "v": g.V} {
		if !hasShape(f, len(g.Lat), len(g.Lon)) {
			return fmt.Errorf("wxasset: %s field shape %v does not match grid [%d %d]: %w",
				name, shapeOf(f), len(g.Lat), len(g.Lon), ErrInvalidGrid)
		}
	}
	return nil
}

// GlobalExtent is the fixed geographic extent that rendered rasters cover.
var GlobalExtent = &geom.Bounds{
	Min: geom.Point{X: -180, Y: -90},
	Max: geom.Point{X: 180, Y: 90},
}

// Axes holds the normalized coordinate axes of a grid together with their
// cell edges and the longitude permutation needed to bring fields into the
// normalized order. Axes are read-only once created and may be shared by any
// number of concurrent pipeline invocations on the same raw grid.
type Axes struct {
	// Lat and Lon are the cell centers, ascending.
	Lat, Lon []float64

	// LatEdges and LonEdges are the cell boundaries, one longer than
	// the corresponding centers.
	LatEdges, LonEdges []float64

	// Perm reorders raw longitude-indexed data into the order of Lon.
	Perm Permutation
}

// NewAxes normalizes the raw longitude axis lon and derives cell edges for
// both axes. lat must already be ascending.
func NewAxes(lat, lon []float64) (*Axes, error) {
	if len(lat) < 2 {
		return nil, fmt.Errorf("wxasset: %d latitudes but need at least 2: %w", len(lat), ErrInvalidGrid)
	}
	for i, v := range lat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("wxasset: latitude %d is %g: %w", i, v, ErrInvalidGrid)
		}
	}
	nlon, perm, err := NormalizeLongitude(lon)
	if err != nil {
		return nil, err
	}
	latEdges, err := CellEdges(lat)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lonEdges, err := CellEdges(nlon)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	return &Axes{
		Lat:      append([]float64(nil), lat...),
		Lon:      nlon,
		LatEdges: latEdges,
		LonEdges: lonEdges,
		Perm:     perm,
	}, nil
}

// Shape returns the number of latitude and longitude cells.
func (ax *Axes) Shape() (nlat, nlon int) {
	return len(ax.Lat), len(ax.Lon)
}

// Reorder returns a copy of the raw field f with its longitude columns
// arranged to match ax.Lon.
func (ax *Axes) Reorder(f *sparse.DenseArray) (*sparse.DenseArray, error) {
	if !hasShape(f, len(ax.Lat), len(ax.Perm)) {
		return nil, fmt.Errorf("wxasset: field shape %v does not match grid [%d %d]: %w",
			shapeOf(f), len(ax.Lat), len(ax.Perm), ErrInvalidGrid)
	}
	if ax.Perm.IsIdentity() {
		o := sparse.ZerosDense(f.Shape...)
		copy(o.Elements, f.Elements)
		return o, nil
	}
	return ax.Perm.ApplyColumns(f)
}

// Bounds returns the area covered by the grid cells.
func (ax *Axes) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: ax.LonEdges[0], Y: ax.LatEdges[0]},
		Max: geom.Point{X: ax.LonEdges[len(ax.LonEdges)-1], Y: ax.LatEdges[len(ax.LatEdges)-1]},
	}
}

func hasShape(f *sparse.DenseArray, nrow, ncol int) bool {
	return f != nil && len(f.Shape) == 2 && f.Shape[0] == nrow && f.Shape[1] == ncol &&
		len(f.Elements) == nrow*ncol
}

func shapeOf(f *sparse.DenseArray) []int {
	if f == nil {
		return nil
	}
	return f.Shape
}
