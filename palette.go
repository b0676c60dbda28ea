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
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// ColorMap returns the named color map. Recognized names are "jet",
// "bluered", "purpleorange", "greenpurple", "blackbody", "kindlmann", and
// any ColorBrewer palette name such as "RdYlBu" or "Spectral". A "_r" suffix
// reverses the map.
func ColorMap(name string) (palette.ColorMap, error) {
	if strings.HasSuffix(name, "_r") {
		c, err := ColorMap(strings.TrimSuffix(name, "_r"))
		if err != nil {
			return nil, err
		}
		return palette.Reverse(c), nil
	}
	switch strings.ToLower(name) {
	case "jet", "":
		return Jet(), nil
	case "bluered":
		return moreland.SmoothBlueRed(), nil
	case "purpleorange":
		return moreland.SmoothPurpleOrange(), nil
	case "greenpurple":
		return moreland.SmoothGreenPurple(), nil
	case "blackbody":
		return moreland.ExtendedBlackBody(), nil
	case "kindlmann":
		return moreland.ExtendedKindlmann(), nil
	}
	// Brewer palettes come in several sizes; use the largest.
	for n := 12; n >= 3; n-- {
		p, err := brewer.GetPalette(brewer.TypeAny, name, n)
		if err == nil {
			return rampFromColors(p.Colors()), nil
		}
	}
	return nil, fmt.Errorf("wxasset: unknown color palette %q", name)
}

// Jet returns the rainbow color map that runs from dark blue through cyan,
// yellow and red to dark red.
func Jet() palette.ColorMap {
	return &ramp{
		r:     []stop{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}},
		g:     []stop{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}},
		b:     []stop{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}},
		max:   1,
		alpha: 1,
	}
}

// stop is a control point of one color channel: value y at normalized
// position x.
type stop struct{ x, y float64 }

// ramp is a color map whose channels are each piecewise linear in
// normalized position.
type ramp struct {
	r, g, b  []stop
	min, max float64
	alpha    float64
}

func rampFromColors(cs []color.Color) *ramp {
	m := &ramp{max: 1, alpha: 1}
	for i, c := range cs {
		x := float64(i) / float64(len(cs)-1)
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		m.r = append(m.r, stop{x, float64(n.R) / 255})
		m.g = append(m.g, stop{x, float64(n.G) / 255})
		m.b = append(m.b, stop{x, float64(n.B) / 255})
	}
	return m
}

func interpolate(s []stop, x float64) float64 {
	i := sort.Search(len(s), func(i int) bool { return s[i].x >= x })
	if i == 0 {
		return s[0].y
	}
	if i == len(s) {
		return s[len(s)-1].y
	}
	lo, hi := s[i-1], s[i]
	return lo.y + (hi.y-lo.y)*(x-lo.x)/(hi.x-lo.x)
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// At implements palette.ColorMap.
func (m *ramp) At(v float64) (color.Color, error) {
	switch {
	case m.max <= m.min:
		return nil, fmt.Errorf("wxasset: color map max (%g) <= min (%g)", m.max, m.min)
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < m.min:
		return nil, palette.ErrUnderflow
	case v > m.max:
		return nil, palette.ErrOverflow
	}
	x := (v - m.min) / (m.max - m.min)
	return color.NRGBA{
		R: unit8(interpolate(m.r, x)),
		G: unit8(interpolate(m.g, x)),
		B: unit8(interpolate(m.b, x)),
		A: unit8(m.alpha),
	}, nil
}

// Max implements palette.ColorMap.
func (m *ramp) Max() float64 { return m.max }

// SetMax implements palette.ColorMap.
func (m *ramp) SetMax(v float64) { m.max = v }

// Min implements palette.ColorMap.
func (m *ramp) Min() float64 { return m.min }

// SetMin implements palette.ColorMap.
func (m *ramp) SetMin(v float64) { m.min = v }

// Alpha implements palette.ColorMap.
func (m *ramp) Alpha() float64 { return m.alpha }

// SetAlpha implements palette.ColorMap.
func (m *ramp) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic(fmt.Errorf("wxasset: invalid alpha: %g", a))
	}
	m.alpha = a
}

// Palette implements palette.ColorMap.
func (m *ramp) Palette(n int) palette.Palette {
	c := *m
	if c.max <= c.min {
		c.min, c.max = 0, 1
	}
	p := make(colors, n)
	for i := range p {
		v := c.min
		if n > 1 {
			v += (c.max - c.min) * float64(i) / float64(n-1)
		}
		p[i], _ = c.At(v)
	}
	return p
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }
