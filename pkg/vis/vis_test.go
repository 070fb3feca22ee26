package vis

import (
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
)

func testGrid(rows, cols int) Grid {
	g := Grid{
		Lon:  make([][]float64, rows),
		Lat:  make([][]float64, rows),
		Data: make([][]float64, rows),
	}
	for r := 0; r < rows; r++ {
		g.Lon[r] = make([]float64, cols)
		g.Lat[r] = make([]float64, cols)
		g.Data[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			g.Lon[r][c] = -180 + float64(c)*360/float64(cols)
			g.Lat[r][c] = -90 + float64(r)*180/float64(rows)
			g.Data[r][c] = float64(r*cols + c)
		}
	}
	return g
}

func TestGridValidate(t *testing.T) {
	g := testGrid(3, 4)
	if err := g.Validate(); err != nil {
		t.Errorf("valid grid rejected: %v", err)
	}

	bad := testGrid(3, 4)
	bad.Lat = bad.Lat[:2]
	if err := bad.Validate(); err == nil {
		t.Error("short lat array accepted")
	}

	ragged := testGrid(3, 4)
	ragged.Lon[1] = ragged.Lon[1][:3]
	if err := ragged.Validate(); err == nil {
		t.Error("ragged lon row accepted")
	}

	if err := (Grid{}).Validate(); err == nil {
		t.Error("empty grid accepted")
	}
}

func TestDeseam(t *testing.T) {
	g := testGrid(2, 3)
	out, err := Deseam(g)
	if err != nil {
		t.Fatalf("Deseam: %v", err)
	}
	for r := range out.Data {
		if len(out.Data[r]) != 4 {
			t.Fatalf("row %d has %d columns, want 4", r, len(out.Data[r]))
		}
		if out.Data[r][3] != g.Data[r][0] || out.Lon[r][3] != g.Lon[r][0] || out.Lat[r][3] != g.Lat[r][0] {
			t.Errorf("row %d not bookended with its first column", r)
		}
	}
	// Source untouched.
	if len(g.Data[0]) != 3 {
		t.Error("Deseam must not mutate its input")
	}
}

func TestDiscretePalette(t *testing.T) {
	p, err := DiscretePalette(palette.Heat(64, 1), 10)
	if err != nil {
		t.Fatalf("DiscretePalette: %v", err)
	}
	colors := p.Colors()
	if len(colors) != 10 {
		t.Fatalf("got %d colors, want 10", len(colors))
	}
	base := palette.Heat(64, 1).Colors()
	if colors[0] != base[0] || colors[9] != base[63] {
		t.Error("discrete palette should span the base palette endpoints")
	}

	if _, err := DiscretePalette(palette.Heat(64, 1), 0); err == nil {
		t.Error("zero-level palette accepted")
	}
}

func TestPcolormeshAndBox(t *testing.T) {
	p := NewMapPlot("skill")
	g := testGrid(4, 6)
	g.Data[1][2] = math.NaN()

	if err := p.Pcolormesh(g, palette.Heat(12, 1), true); err != nil {
		t.Fatalf("Pcolormesh: %v", err)
	}
	if err := p.AddBox(-150, -110, 30, 50, color.Black, vg.Points(1)); err != nil {
		t.Fatalf("AddBox: %v", err)
	}
}
