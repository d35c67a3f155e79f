// Package palette provides the named color palettes charts draw with.
//
// Categorical palettes are short lists of distinct colors used for factors
// and contig bands. Continuous palettes are 256-step gradients, expanded at
// startup from a handful of anchor stops by interpolating in CIE L*a*b*
// space (go-colorful), and used for numeric color mappings.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ArashLab/caplot/internal/errs"
)

// Kind distinguishes discrete palettes from gradients.
type Kind string

const (
	Categorical Kind = "Categorical"
	Continuous  Kind = "Continuous"
)

// continuousSteps is the size of every continuous palette.
const continuousSteps = 256

// Palette is an immutable named list of colors.
type Palette struct {
	Name   string
	Kind   Kind
	colors []colorful.Color
}

var registry = build()

func build() map[string]*Palette {
	out := make(map[string]*Palette, len(categorical)+len(continuous))
	for name, hexes := range categorical {
		out[name] = &Palette{Name: name, Kind: Categorical, colors: mustParse(hexes)}
	}
	for name, hexes := range continuous {
		out[name] = &Palette{Name: name, Kind: Continuous, colors: gradient(mustParse(hexes), continuousSteps)}
	}
	return out
}

func mustParse(hexes []string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("palette: bad color %q: %v", h, err))
		}
		out[i] = c
	}
	return out
}

// gradient spreads n colors evenly over the piecewise-linear path through stops.
func gradient(stops []colorful.Color, n int) []colorful.Color {
	out := make([]colorful.Color, n)
	segments := float64(len(stops) - 1)
	for i := range out {
		t := float64(i) / float64(n-1) * segments
		lo := int(math.Floor(t))
		if lo >= len(stops)-1 {
			lo = len(stops) - 2
		}
		out[i] = stops[lo].BlendLab(stops[lo+1], t-float64(lo)).Clamped()
	}
	return out
}

// Lookup returns the palette with the given name.
func Lookup(name string) (*Palette, error) {
	p, ok := registry[name]
	if !ok {
		return nil, errs.New(errs.CodeInvalidOption, "unknown palette %q", name).With("palette", name)
	}
	return p, nil
}

// Names returns the names of every palette of the given kind, sorted.
func Names(kind Kind) []string {
	var out []string
	for name, p := range registry {
		if p.Kind == kind {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct colors in the palette.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Colors returns the first n colors. It fails with INSUFFICIENT_PALETTE when
// the palette has fewer than n colors.
func (p *Palette) Colors(n int) ([]color.Color, error) {
	if n > len(p.colors) {
		return nil, errs.NewInsufficientPaletteError(p.Name, len(p.colors), n)
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = p.colors[i]
	}
	return out, nil
}

// Color returns the i-th color, wrapping around the palette.
func (p *Palette) Color(i int) color.Color {
	n := len(p.colors)
	return p.colors[((i%n)+n)%n]
}

// At returns the color at fraction t in [0, 1] along the palette.
// Values outside the range are clamped.
func (p *Palette) At(t float64) color.Color {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return p.colors[int(math.Round(t*float64(len(p.colors)-1)))]
}

// Hex returns c as a "#rrggbb" string.
func Hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}
