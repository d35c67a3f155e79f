package pca

import (
	"strings"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/palette"
)

// MaxInferredCategories is the largest number of distinct values an
// unstyled coloring column may have and still be treated as categorical.
const MaxInferredCategories = 10

// Options configures a PCA grid chart.
type Options struct {
	Subplots Subplots `json:"subplots" yaml:"subplots"`

	// ColoringColumn colors points by its values. Empty draws every point
	// in one color.
	ColoringColumn string `json:"coloringColumn,omitempty" yaml:"coloringColumn,omitempty"`
	// ColoringStyle is palette.Categorical, palette.Continuous or empty to
	// infer it from the column.
	ColoringStyle palette.Kind `json:"coloringStyle,omitempty" yaml:"coloringStyle,omitempty"`
	// ColoringPalette defaults to Category10 or Viridis256 by style.
	ColoringPalette string `json:"coloringPalette,omitempty" yaml:"coloringPalette,omitempty"`

	ColumnsPerRow int     `json:"columnsPerRow" yaml:"columnsPerRow"`
	PointSize     float64 `json:"pointSize" yaml:"pointSize"`
	SubplotWidth  int     `json:"subplotWidth" yaml:"subplotWidth"`
	SubplotHeight int     `json:"subplotHeight" yaml:"subplotHeight"`
	Title         string  `json:"title,omitempty" yaml:"title,omitempty"`
}

// DefaultOptions returns the configuration a new chart starts with.
func DefaultOptions() Options {
	return Options{
		ColumnsPerRow: 2,
		PointSize:     5,
		SubplotWidth:  400,
		SubplotHeight: 400,
	}
}

// DefaultPalette returns the palette used for style when none is named.
func DefaultPalette(style palette.Kind) string {
	if style == palette.Continuous {
		return "Viridis256"
	}
	return "Category10"
}

// ParseStyle accepts a coloring style name in any case. The empty string
// selects inference.
func ParseStyle(s string) (palette.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "categorical":
		return palette.Categorical, nil
	case "continuous":
		return palette.Continuous, nil
	}
	return "", errs.New(errs.CodeInvalidOption, "unknown coloring style %q", s).
		With("option", "coloringStyle")
}

func invalidOption(option, format string, args ...any) error {
	return errs.New(errs.CodeInvalidOption, format, args...).With("option", option)
}

func (o Options) validate() error {
	if _, err := ParseStyle(string(o.ColoringStyle)); err != nil {
		return err
	}
	if o.ColumnsPerRow < 1 {
		return invalidOption("columnsPerRow", "columnsPerRow must be at least 1, got %d", o.ColumnsPerRow)
	}
	if o.PointSize <= 0 {
		return invalidOption("pointSize", "pointSize must be positive")
	}
	if o.SubplotWidth <= 0 || o.SubplotHeight <= 0 {
		return invalidOption("size", "subplot width and height must be positive")
	}
	if !o.Subplots.IsZero() {
		if _, err := o.Subplots.Resolve(); err != nil {
			return err
		}
	}
	if o.ColoringPalette != "" {
		pal, err := palette.Lookup(o.ColoringPalette)
		if err != nil {
			return err
		}
		if o.ColoringStyle != "" {
			if err := checkFamily(pal, o.ColoringStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkFamily rejects a palette that cannot serve style.
func checkFamily(pal *palette.Palette, style palette.Kind) error {
	if pal.Kind != style {
		return invalidOption("coloringPalette", "%s is a %s palette and cannot color %s values",
			pal.Name, strings.ToLower(string(pal.Kind)), strings.ToLower(string(style)))
	}
	return nil
}
