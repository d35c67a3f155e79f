package palette

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	gpalette "gonum.org/v1/plot/palette"
)

// ColorMap maps a numeric range linearly onto a palette.
// It implements gonum's palette.ColorMap so it can drive a plotter.ColorBar.
type ColorMap struct {
	palette  *Palette
	min, max float64
	alpha    float64
}

var _ gpalette.ColorMap = (*ColorMap)(nil)

// Scale returns a ColorMap spanning [min, max]. A degenerate range maps
// every value to the middle of the palette.
func (p *Palette) Scale(min, max float64) *ColorMap {
	return &ColorMap{palette: p, min: min, max: max, alpha: 1}
}

// Color returns the color for v, clamped to the range. NaN maps to the
// lowest color.
func (m *ColorMap) Color(v float64) color.Color {
	return m.withAlpha(m.palette.At(m.fraction(v)))
}

func (m *ColorMap) fraction(v float64) float64 {
	if m.max <= m.min {
		return 0.5
	}
	return (v - m.min) / (m.max - m.min)
}

func (m *ColorMap) withAlpha(c color.Color) color.Color {
	if m.alpha >= 1 {
		return c
	}
	cf, _ := colorful.MakeColor(c)
	r, g, b := cf.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(m.alpha * 255))}
}

// At implements palette.ColorMap.
func (m *ColorMap) At(v float64) (color.Color, error) {
	// Allow for rounding when callers sample the range end points.
	tol := 1e-9 * math.Abs(m.max-m.min)
	switch {
	case math.IsNaN(v):
		return nil, gpalette.ErrNaN
	case v < m.min-tol:
		return nil, gpalette.ErrUnderflow
	case v > m.max+tol:
		return nil, gpalette.ErrOverflow
	}
	return m.Color(v), nil
}

// Min implements palette.ColorMap.
func (m *ColorMap) Min() float64 { return m.min }

// Max implements palette.ColorMap.
func (m *ColorMap) Max() float64 { return m.max }

// SetMin implements palette.ColorMap.
func (m *ColorMap) SetMin(v float64) { m.min = v }

// SetMax implements palette.ColorMap.
func (m *ColorMap) SetMax(v float64) { m.max = v }

// Alpha implements palette.ColorMap.
func (m *ColorMap) Alpha() float64 { return m.alpha }

// SetAlpha implements palette.ColorMap.
func (m *ColorMap) SetAlpha(a float64) { m.alpha = a }

// Palette implements palette.ColorMap, sampling n evenly spaced colors.
func (m *ColorMap) Palette(n int) gpalette.Palette {
	out := make(colorList, n)
	for i := range out {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = m.withAlpha(m.palette.At(t))
	}
	return out
}

type colorList []color.Color

func (c colorList) Colors() []color.Color { return c }
