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
	"sort"

	"github.com/ctessum/sparse"
)

// Permutation holds, for each output position, the index of the input
// element that belongs there. It is computed once per longitude axis and
// applied to every array sharing that axis.
type Permutation []int

// NormalizeLongitude maps every value in lon into [-180, 180) and sorts the
// result into ascending order. The sort is stable, so ties keep their
// original order. It returns the sorted longitudes and the permutation
// that was used to sort them. lon is not modified.
func NormalizeLongitude(lon []float64) ([]float64, Permutation, error) {
	if len(lon) < 2 {
		return nil, nil, fmt.Errorf("wxasset: normalizing longitude: %d values but need at least 2: %w", len(lon), ErrInvalidGrid)
	}
	wrapped := make([]float64, len(lon))
	for i, v := range lon {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("wxasset: normalizing longitude: value %d is %g: %w", i, v, ErrInvalidGrid)
		}
		wrapped[i] = WrapLongitude(v)
	}
	perm := make(Permutation, len(lon))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return wrapped[perm[a]] < wrapped[perm[b]]
	})
	return perm.apply(wrapped), perm, nil
}

// WrapLongitude maps v into [-180, 180) using ((v + 180) mod 360) - 180
// with a floored modulus. Values already in range are returned unchanged.
func WrapLongitude(v float64) float64 {
	if v >= -180 && v < 180 {
		return v
	}
	m := math.Mod(v+180, 360)
	if m < 0 {
		m += 360
	}
	if m >= 360 {
		m -= 360
	}
	return m - 180
}

// Apply returns a copy of x reordered by p.
func (p Permutation) Apply(x []float64) ([]float64, error) {
	if len(x) != len(p) {
		return nil, fmt.Errorf("wxasset: permuting axis of length %d with permutation of length %d: %w", len(x), len(p), ErrInvalidGrid)
	}
	return p.apply(x), nil
}

func (p Permutation) apply(x []float64) []float64 {
	o := make([]float64, len(p))
	for i, j := range p {
		o[i] = x[j]
	}
	return o
}

// ApplyColumns returns a copy of the two-dimensional array a with its last
// (longitude) dimension reordered by p. a is not modified.
func (p Permutation) ApplyColumns(a *sparse.DenseArray) (*sparse.DenseArray, error) {
	if a == nil || len(a.Shape) != 2 {
		return nil, fmt.Errorf("wxasset: permuting columns: field must be two-dimensional: %w", ErrInvalidGrid)
	}
	nrow, ncol := a.Shape[0], a.Shape[1]
	if ncol != len(p) {
		return nil, fmt.Errorf("wxasset: permuting %d columns with permutation of length %d: %w", ncol, len(p), ErrInvalidGrid)
	}
	o := sparse.ZerosDense(nrow, ncol)
	for r := 0; r < nrow; r++ {
		row := r * ncol
		for c, j := range p {
			o.Elements[row+c] = a.Elements[row+j]
		}
	}
	return o, nil
}

// IsIdentity reports whether p leaves its input in place.
func (p Permutation) IsIdentity() bool {
	for i, j := range p {
		if i != j {
			return false
		}
	}
	return true
}
