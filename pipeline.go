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
	"image"

	"github.com/ctessum/sparse"
)

// KelvinToCelsius is the offset that converts temperatures from kelvin to
// degrees Celsius.
const KelvinToCelsius = -273.15

// Pipeline turns one grid slice into a scalar raster and a set of vector
// sample points.
type Pipeline struct {
	Renderer *Renderer

	// Stride is the sampling interval for vector points, in grid cells.
	Stride int

	// The scalar field is converted to display units as
	// value*Scale + Offset before rendering.
	Offset, Scale float64
}

// NewPipeline creates a pipeline that renders with cfg, samples every
// stride cells and converts scalar values with offset and scale.
func NewPipeline(cfg RasterConfig, stride int, offset, scale float64) (*Pipeline, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("wxasset: creating pipeline with stride %d: %w", stride, ErrInvalidStride)
	}
	r, err := NewRenderer(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Renderer: r, Stride: stride, Offset: offset, Scale: scale}, nil
}

// Result holds the outputs for one grid slice.
type Result struct {
	Image  *image.RGBA
	Points []Point
}

// Process reorders the raw fields scalar, u, and v to match ax, converts
// the scalar field to display units, renders it, and samples u and v.
// The input fields are not modified.
func (p *Pipeline) Process(ax *Axes, scalar, u, v *sparse.DenseArray) (*Result, error) {
	if p.Stride <= 0 {
		return nil, fmt.Errorf("wxasset: sampling with stride %d: %w", p.Stride, ErrInvalidStride)
	}
	s, err := ax.Reorder(scalar)
	if err != nil {
		return nil, fmt.Errorf("scalar: %w", err)
	}
	for i, x := range s.Elements {
		s.Elements[i] = x*p.Scale + p.Offset
	}
	ru, err := ax.Reorder(u)
	if err != nil {
		return nil, fmt.Errorf("u: %w", err)
	}
	rv, err := ax.Reorder(v)
	if err != nil {
		return nil, fmt.Errorf("v: %w", err)
	}
	img, err := p.Renderer.Render(s, ax)
	if err != nil {
		return nil, err
	}
	pts, err := Sample(ru, rv, ax.Lat, ax.Lon, p.Stride)
	if err != nil {
		return nil, err
	}
	return &Result{Image: img, Points: pts}, nil
}

// ProcessGrid runs the whole pipeline on a single grid, including axis
// normalization. When processing many slices of the same grid, create the
// Axes once with NewAxes and call Process instead.
func (p *Pipeline) ProcessGrid(g *Grid) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	ax, err := NewAxes(g.Lat, g.Lon)
	if err != nil {
		return nil, err
	}
	return p.Process(ax, g.Scalar, g.U, g.V)
}
