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

	"gonum.org/v1/gonum/stat"
)

// CellEdges returns the N+1 cell boundaries for the N ascending cell
// centers, assuming uniform spacing equal to the mean difference between
// adjacent centers: the first edge is half a spacing below the first center
// and each remaining edge is half a spacing above its center.
// Non-uniform grids are accepted and rendered with the mean spacing.
func CellEdges(centers []float64) ([]float64, error) {
	n := len(centers)
	if n < 2 {
		return nil, fmt.Errorf("wxasset: cell edges: %d centers but need at least 2: %w", n, ErrInvalidGrid)
	}
	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		d := centers[i] - centers[i-1]
		if !(d > 0) {
			return nil, fmt.Errorf("wxasset: cell edges: centers %d and %d (%g, %g) are not strictly ascending: %w",
				i-1, i, centers[i-1], centers[i], ErrDegenerateGrid)
		}
		diffs[i-1] = d
	}
	d := stat.Mean(diffs, nil)
	if !(d > 0) || math.IsInf(d, 0) {
		return nil, fmt.Errorf("wxasset: cell edges: mean spacing is %g: %w", d, ErrDegenerateGrid)
	}
	edges := make([]float64, n+1)
	edges[0] = centers[0] - d/2
	for i, c := range centers {
		edges[i+1] = c + d/2
	}
	return edges, nil
}
