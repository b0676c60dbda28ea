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
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// RasterConfig holds the parameters of a scalar raster.
type RasterConfig struct {
	// WidthInches and DPI set the raster size. The height is always half
	// the width so that the raster covers the globe at 2:1.
	WidthInches float64
	DPI         int

	// FillLevels are the ascending boundaries of the color bands.
	FillLevels []float64

	// ContourLevels are the values at which isolines are drawn. No
	// isolines are drawn if it is empty.
	ContourLevels []float64

	// Palette is the name of the color map used for the fill bands.
	// See ColorMap.
	Palette string

	// ContourColor and ContourWidth style the isolines.
	ContourColor color.Color
	ContourWidth vg.Length

	// Labels specifies whether isolines are labeled with their value.
	Labels bool

	// Background fills the pixels that have no value. Nil leaves them
	// transparent.
	Background color.Color
}

// DefaultRasterConfig returns the configuration of the standard global
// temperature raster: 18x9 inches at 150 dpi, 2-degree bands from -60 to
// 40 on the jet color map, and black 10-degree isolines.
func DefaultRasterConfig() RasterConfig {
	return RasterConfig{
		WidthInches:   18,
		DPI:           150,
		FillLevels:    Levels(-60, 40, 2),
		ContourLevels: Levels(-60, 40, 10),
		Palette:       "jet",
		ContourColor:  color.Black,
		ContourWidth:  vg.Points(0.4),
	}
}

// Levels returns the values from min to max inclusive, step apart.
// It returns nil if step is not positive or max < min.
func Levels(min, max, step float64) []float64 {
	if !(step > 0) || max < min {
		return nil
	}
	n := int(math.Floor((max-min)/step+1e-9)) + 1
	if n == 1 {
		return []float64{min}
	}
	return floats.Span(make([]float64, n), min, min+float64(n-1)*step)
}

// Renderer draws scalar fields as geo-registered rasters covering
// GlobalExtent. A Renderer is safe for concurrent use.
type Renderer struct {
	cfg           RasterConfig
	width, height int
	bands         []color.RGBA
}

// NewRenderer validates cfg and prepares the band colors.
func NewRenderer(cfg RasterConfig) (*Renderer, error) {
	if !(cfg.WidthInches > 0) || cfg.DPI <= 0 {
		return nil, fmt.Errorf("wxasset: raster size %g in at %d dpi must be positive", cfg.WidthInches, cfg.DPI)
	}
	r := &Renderer{cfg: cfg}
	r.width = int(math.Round(cfg.WidthInches * float64(cfg.DPI)))
	r.height = r.width / 2
	if r.height < 1 {
		return nil, fmt.Errorf("wxasset: raster of %d pixels wide is too small", r.width)
	}
	if err := checkAscending("fill", cfg.FillLevels, 2); err != nil {
		return nil, err
	}
	if err := checkAscending("contour", cfg.ContourLevels, 0); err != nil {
		return nil, err
	}
	cmap, err := ColorMap(cfg.Palette)
	if err != nil {
		return nil, err
	}
	l := cfg.FillLevels
	cmap.SetMin(l[0])
	cmap.SetMax(l[len(l)-1])
	r.bands = make([]color.RGBA, len(l)-1)
	for i := range r.bands {
		c, err := cmap.At((l[i] + l[i+1]) / 2)
		if err != nil {
			return nil, fmt.Errorf("wxasset: coloring band %g to %g: %v", l[i], l[i+1], err)
		}
		r.bands[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	if r.cfg.ContourColor == nil {
		r.cfg.ContourColor = color.Black
	}
	return r, nil
}

func checkAscending(name string, l []float64, min int) error {
	if len(l) < min {
		return fmt.Errorf("wxasset: %d %s levels but need at least %d", len(l), name, min)
	}
	for i, v := range l {
		if math.IsNaN(v) || math.IsInf(v, 0) || (i > 0 && v <= l[i-1]) {
			return fmt.Errorf("wxasset: %s levels %v must be finite and strictly ascending", name, l)
		}
	}
	return nil
}

// Size returns the raster dimensions in pixels.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// band returns the index of the fill band containing v, or -1 if v is
// outside the fill levels or NaN. Bands are closed at the top, and the
// lowest band is also closed at the bottom.
func (r *Renderer) band(v float64) int {
	l := r.cfg.FillLevels
	if math.IsNaN(v) || v < l[0] || v > l[len(l)-1] {
		return -1
	}
	i := sort.SearchFloat64s(l, v)
	if i == 0 {
		return 0
	}
	return i - 1
}

// cellIndex returns, for each of n pixels spanning [lo, hi), the index of
// the cell in edges that contains the pixel center, or -1 if there is
// none. If descending, pixel 0 is at hi.
func cellIndex(edges []float64, n int, lo, hi float64, descending bool) []int {
	idx := make([]int, n)
	d := (hi - lo) / float64(n)
	for p := range idx {
		v := lo + (float64(p)+0.5)*d
		if descending {
			v = hi - (float64(p)+0.5)*d
		}
		k := sort.Search(len(edges), func(i int) bool { return edges[i] > v }) - 1
		if k < 0 || k >= len(edges)-1 {
			k = -1
		}
		idx[p] = k
	}
	return idx
}

// Render draws field, which must be in the order of ax, as flat-shaded
// cells bounded by the edges in ax and overlays the configured isolines.
// Pixel (x, y) has its center at longitude -180+(x+0.5)*360/width and
// latitude 90-(y+0.5)*180/height.
func (r *Renderer) Render(field *sparse.DenseArray, ax *Axes) (*image.RGBA, error) {
	if ax == nil {
		return nil, fmt.Errorf("wxasset: rendering without axes: %w", ErrRender)
	}
	nlat, nlon := ax.Shape()
	if len(ax.LatEdges) != nlat+1 || len(ax.LonEdges) != nlon+1 {
		return nil, fmt.Errorf("wxasset: axes have %d and %d edges for [%d %d] cells: %w",
			len(ax.LatEdges), len(ax.LonEdges), nlat, nlon, ErrRender)
	}
	if !hasShape(field, nlat, nlon) {
		return nil, fmt.Errorf("wxasset: rendering field of shape %v on a [%d %d] grid: %w",
			shapeOf(field), nlat, nlon, ErrRender)
	}
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	if r.cfg.Background != nil {
		imagedraw.Draw(img, img.Bounds(), &image.Uniform{r.cfg.Background}, image.Point{}, imagedraw.Src)
	}
	ext := GlobalExtent
	cols := cellIndex(ax.LonEdges, r.width, ext.Min.X, ext.Max.X, false)
	rows := cellIndex(ax.LatEdges, r.height, ext.Min.Y, ext.Max.Y, true)
	for y, row := range rows {
		if row < 0 {
			continue
		}
		for x, col := range cols {
			if col < 0 {
				continue
			}
			if b := r.band(field.Elements[row*nlon+col]); b >= 0 {
				img.SetRGBA(x, y, r.bands[b])
			}
		}
	}
	if len(r.cfg.ContourLevels) == 0 {
		return img, nil
	}
	if err := r.drawContours(img, field, ax); err != nil {
		return nil, err
	}
	return img, nil
}

// drawContours strokes the isolines of field onto a transparent canvas the
// size of img and composites it over img.
func (r *Renderer) drawContours(img *image.RGBA, field *sparse.DenseArray, ax *Axes) error {
	g := &gridXYZ{field: field, ax: ax}
	if !g.hasData() {
		return nil
	}
	dpi := vg.Length(r.cfg.DPI)
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.width)/dpi*vg.Inch, vg.Length(r.height)/dpi*vg.Inch),
		vgimg.UseDPI(r.cfg.DPI),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	dc := draw.New(c)

	// The plot is only used to map coordinates onto the canvas; it is
	// never drawn, so there are no axes or padding.
	p := plot.New()
	p.X.Min, p.X.Max = GlobalExtent.Min.X, GlobalExtent.Max.X
	p.Y.Min, p.Y.Max = GlobalExtent.Min.Y, GlobalExtent.Max.Y

	levels := append([]float64(nil), r.cfg.ContourLevels...)
	ct := plotter.NewContour(g, levels, nil)
	ct.LineStyles = []draw.LineStyle{{Color: r.cfg.ContourColor, Width: r.cfg.ContourWidth}}
	ct.Plot(dc, p)

	if r.cfg.Labels {
		lb := &contourLabels{
			grid:   g,
			levels: r.cfg.ContourLevels,
			every:  max(1, len(ax.Lat)/12),
			sep:    vg.Points(48),
			style: draw.TextStyle{
				Color:   r.cfg.ContourColor,
				Font:    font.From(plot.DefaultFont, vg.Points(6)),
				XAlign:  draw.XCenter,
				YAlign:  draw.YCenter,
				Handler: plot.DefaultTextHandler,
			},
		}
		lb.Plot(dc, p)
	}

	overlay := c.Image()
	if overlay.Bounds() != img.Bounds() {
		return fmt.Errorf("wxasset: contour overlay is %v but raster is %v: %w", overlay.Bounds(), img.Bounds(), ErrRender)
	}
	imagedraw.Draw(img, img.Bounds(), overlay, image.Point{}, imagedraw.Over)
	return nil
}

// EncodePNG writes img to w in PNG format.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("wxasset: encoding png: %v", err)
	}
	return nil
}
