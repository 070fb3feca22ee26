// Package vis provides plotting helpers for reduced lon/lat/data grids, such
// as maps of per-lead skill. It wraps gonum/plot and carries no dependency
// back into the verification core.
package vis

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Grid is a 2-D field on a lon/lat mesh. All three arrays share the shape
// [row][col] with rows indexing latitude and columns indexing longitude.
type Grid struct {
	Lon  [][]float64
	Lat  [][]float64
	Data [][]float64
}

// Validate checks that the three arrays are non-empty, rectangular and share
// one shape.
func (g Grid) Validate() error {
	rows := len(g.Data)
	if rows == 0 || len(g.Data[0]) == 0 {
		return fmt.Errorf("vis: empty data grid")
	}
	cols := len(g.Data[0])
	check := func(name string, a [][]float64) error {
		if len(a) != rows {
			return fmt.Errorf("vis: %s has %d rows, data has %d", name, len(a), rows)
		}
		for r := range a {
			if len(a[r]) != cols {
				return fmt.Errorf("vis: %s row %d has %d columns, want %d", name, r, len(a[r]), cols)
			}
		}
		return nil
	}
	if err := check("lon", g.Lon); err != nil {
		return err
	}
	return check("lat", g.Lat)
}

// Deseam bookends the grid with a copy of its first column so that global
// fields close cleanly across the Prime Meridian instead of leaving a seam.
func Deseam(g Grid) (Grid, error) {
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	wrap := func(a [][]float64) [][]float64 {
		out := make([][]float64, len(a))
		for r := range a {
			row := make([]float64, len(a[r])+1)
			copy(row, a[r])
			row[len(a[r])] = a[r][0]
			out[r] = row
		}
		return out
	}
	return Grid{Lon: wrap(g.Lon), Lat: wrap(g.Lat), Data: wrap(g.Data)}, nil
}

// DiscretePalette samples levels evenly spaced colors from a base palette,
// giving stepped color bands instead of a continuous ramp.
func DiscretePalette(base palette.Palette, levels int) (palette.Palette, error) {
	src := base.Colors()
	if levels < 1 || len(src) == 0 {
		return nil, fmt.Errorf("vis: cannot build %d-level palette from %d colors", levels, len(src))
	}
	colors := make([]color.Color, levels)
	for i := range colors {
		pos := 0
		if levels > 1 {
			pos = i * (len(src) - 1) / (levels - 1)
		}
		colors[i] = src[pos]
	}
	return discretePalette(colors), nil
}

type discretePalette []color.Color

func (p discretePalette) Colors() []color.Color { return p }

// lonLatGrid adapts a Grid to plotter.GridXYZ. Axis coordinates are taken
// from the first row/column, which assumes a rectilinear mesh.
type lonLatGrid struct {
	g Grid
}

func (l lonLatGrid) Dims() (c, r int)   { return len(l.g.Data[0]), len(l.g.Data) }
func (l lonLatGrid) Z(c, r int) float64 { return l.g.Data[r][c] }
func (l lonLatGrid) X(c int) float64    { return l.g.Lon[0][c] }
func (l lonLatGrid) Y(r int) float64    { return l.g.Lat[r][0] }

// MapPlot is a plot pre-labeled for lon/lat fields.
type MapPlot struct {
	*plot.Plot
}

// NewMapPlot creates an equirectangular lon/lat plot with the given title.
func NewMapPlot(title string) *MapPlot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	return &MapPlot{Plot: p}
}

// Pcolormesh draws the grid as a heat map. Global fields are deseamed before
// drawing; regional fields are drawn as-is. NaN cells are left unfilled.
func (p *MapPlot) Pcolormesh(g Grid, pal palette.Palette, global bool) error {
	if global {
		var err error
		g, err = Deseam(g)
		if err != nil {
			return err
		}
	} else if err := g.Validate(); err != nil {
		return err
	}
	hm := plotter.NewHeatMap(lonLatGrid{g: g}, pal)
	p.Add(hm)
	return nil
}

// AddBox outlines the lon/lat rectangle [x0,x1]×[y0,y1] to highlight a
// region, in the style of an area-of-interest box on a projection.
func (p *MapPlot) AddBox(x0, x1, y0, y1 float64, c color.Color, width vg.Length) error {
	ring := plotter.XYs{
		{X: x0, Y: y0},
		{X: x0, Y: y1},
		{X: x1, Y: y1},
		{X: x1, Y: y0},
	}
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return fmt.Errorf("vis: building box outline: %w", err)
	}
	poly.LineStyle = draw.LineStyle{Color: c, Width: width}
	poly.Color = color.Transparent
	p.Add(poly)
	return nil
}
