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
)

// different returns true if a and b differ by more than tolerance
// relative to their mean, or if either is NaN.
func different(a, b, tolerance float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	if a == b {
		return false
	}
	return 2*math.Abs(a-b)/math.Abs(a+b) > tolerance
}

func TestCellEdges(t *testing.T) {
	have, err := CellEdges([]float64{0, 1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-0.5, 0.5, 1.5, 2.5, 3.5}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCellEdgesBracket(t *testing.T) {
	tests := []struct {
		name    string
		centers []float64
	}{
		{name: "gfs latitude", centers: Levels(-90, 90, 0.25)},
		{name: "coarse", centers: []float64{-87.5, -82.5, -77.5}},
		{name: "irregular", centers: []float64{0, 1, 3, 3.5, 7}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			edges, err := CellEdges(test.centers)
			if err != nil {
				t.Fatal(err)
			}
			if len(edges) != len(test.centers)+1 {
				t.Fatalf("length: have %d, want %d", len(edges), len(test.centers)+1)
			}
			for i := 1; i < len(edges); i++ {
				if edges[i] <= edges[i-1] {
					t.Errorf("edges not ascending at %d", i)
				}
			}
			for _, c := range test.centers {
				if !(edges[0] < c && c < edges[len(edges)-1]) {
					t.Errorf("center %g not within [%g, %g]", c, edges[0], edges[len(edges)-1])
				}
			}
		})
	}
}

func TestCellEdgesMeanSpacing(t *testing.T) {
	// Irregular grids use the mean spacing rather than per-cell spacing.
	edges, err := CellEdges([]float64{0, 1, 3, 3.5, 7})
	if err != nil {
		t.Fatal(err)
	}
	const d = 7.0 / 4
	want := []float64{-d / 2, d / 2, 1 + d/2, 3 + d/2, 3.5 + d/2, 7 + d/2}
	for i := range want {
		if different(edges[i], want[i], 1e-12) {
			t.Errorf("edge %d: have %g, want %g", i, edges[i], want[i])
		}
	}
}

func TestCellEdgesDegenerate(t *testing.T) {
	for _, c := range [][]float64{{1, 1, 1}, {3, 2, 1}, {0, 1, 1, 2}, {0, math.NaN()}, {0, math.Inf(1)}} {
		edges, err := CellEdges(c)
		if !errors.Is(err, ErrDegenerateGrid) {
			t.Errorf("%v: have error %v, want ErrDegenerateGrid", c, err)
		}
		if edges != nil {
			t.Errorf("%v: produced edges %v", c, edges)
		}
	}
	if _, err := CellEdges([]float64{1}); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("have error %v, want ErrInvalidGrid", err)
	}
}
