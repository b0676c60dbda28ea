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
	"math"
	"strconv"

	"github.com/ctessum/sparse"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// gridXYZ adapts a field and its axes to plotter.GridXYZ. Columns are
// longitudes and rows are latitudes.
type gridXYZ struct {
	field *sparse.DenseArray
	ax    *Axes
}

func (g *gridXYZ) Dims() (c, r int) { return len(g.ax.Lon), len(g.ax.Lat) }

func (g *gridXYZ) Z(c, r int) float64 { return g.field.Elements[r*len(g.ax.Lon)+c] }

func (g *gridXYZ) X(c int) float64 { return g.ax.Lon[c] }

func (g *gridXYZ) Y(r int) float64 { return g.ax.Lat[r] }

// hasData reports whether any value in the field is finite.
func (g *gridXYZ) hasData() bool {
	for _, v := range g.field.Elements {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// contourLabels is a plotter that writes the value of each contour level
// where the level crosses every few rows of the grid, skipping labels that
// would crowd earlier ones.
type contourLabels struct {
	grid   *gridXYZ
	levels []float64
	every  int
	sep    vg.Length
	style  draw.TextStyle
}

// Plot implements plot.Plotter.
func (l *contourLabels) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	nc, nr := l.grid.Dims()
	var placed []vg.Point
	for r := l.every / 2; r < nr; r += l.every {
		y := trY(l.grid.Y(r))
		for i := 0; i < nc-1; i++ {
			z0, z1 := l.grid.Z(i, r), l.grid.Z(i+1, r)
			if math.IsNaN(z0) || math.IsNaN(z1) || z0 == z1 {
				continue
			}
			for _, lev := range l.levels {
				if (z0-lev)*(z1-lev) > 0 || z1 == lev {
					continue
				}
				f := (lev - z0) / (z1 - z0)
				x0, x1 := l.grid.X(i), l.grid.X(i+1)
				pt := vg.Point{X: trX(x0 + f*(x1-x0)), Y: y}
				if crowded(placed, pt, l.sep) {
					continue
				}
				placed = append(placed, pt)
				c.FillText(l.style, pt, strconv.FormatFloat(lev, 'g', -1, 64))
			}
		}
	}
}

func crowded(placed []vg.Point, pt vg.Point, sep vg.Length) bool {
	for _, p := range placed {
		d := p.Sub(pt)
		if d.X*d.X+d.Y*d.Y < sep*sep {
			return true
		}
	}
	return false
}
