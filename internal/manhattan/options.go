package manhattan

import (
	"strings"

	"github.com/ArashLab/caplot/internal/annotate"
	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/genome"
	"github.com/ArashLab/caplot/internal/palette"
)

// Options configures a Manhattan chart.
type Options struct {
	// Genome is a build name or alias known to the registry.
	Genome string `json:"genome" yaml:"genome"`

	ContigColumn   string `json:"contigColumn" yaml:"contigColumn"`
	PositionColumn string `json:"positionColumn" yaml:"positionColumn"`
	PValueColumn   string `json:"pvalueColumn" yaml:"pvalueColumn"`

	// NegativeLog10 plots -log10(p) instead of the raw value.
	NegativeLog10 bool `json:"negativeLog10" yaml:"negativeLog10"`

	// TopN keeps only the N most significant rows. Zero keeps every row.
	TopN int `json:"topN" yaml:"topN"`

	// ColorPalette names the palette contig bands cycle through, and
	// ColorCount how many of its colors are used.
	ColorPalette string `json:"colorPalette" yaml:"colorPalette"`
	ColorCount   int    `json:"colorCount" yaml:"colorCount"`

	PointSize float64 `json:"pointSize" yaml:"pointSize"`
	Width     int     `json:"width" yaml:"width"`
	Height    int     `json:"height" yaml:"height"`
	Title     string  `json:"title" yaml:"title"`

	// Annotation enables remote variant annotation when non-nil.
	Annotation *AnnotationOptions `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

// AnnotationOptions selects the identifiers to annotate and the record
// fields to show.
type AnnotationOptions struct {
	// IDColumn holds the variant identifiers sent to the service.
	IDColumn string `json:"idColumn" yaml:"idColumn"`
	// Fields are the response fields added as columns and hovers, in order.
	Fields []string `json:"fields" yaml:"fields"`
	// Endpoint overrides the service URL when no annotator is set.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// DefaultOptions returns the configuration a new chart starts with.
func DefaultOptions() Options {
	return Options{
		Genome:         "GRCh38",
		ContigColumn:   "contig",
		PositionColumn: "position",
		PValueColumn:   "pvalue",
		NegativeLog10:  true,
		ColorPalette:   "Category10",
		ColorCount:     2,
		PointSize:      4,
		Width:          1000,
		Height:         400,
	}
}

func invalidOption(option, format string, args ...any) error {
	return errs.New(errs.CodeInvalidOption, format, args...).With("option", option)
}

// validate checks o against the registry and resolves its references.
func (o Options) validate(registry *genome.Registry) (*genome.Reference, *palette.Palette, error) {
	ref, err := registry.Reference(o.Genome)
	if err != nil {
		return nil, nil, err
	}
	for name, col := range map[string]string{
		"contigColumn":   o.ContigColumn,
		"positionColumn": o.PositionColumn,
		"pvalueColumn":   o.PValueColumn,
	} {
		if strings.TrimSpace(col) == "" {
			return nil, nil, invalidOption(name, "%s must name a column", name)
		}
	}
	if o.TopN < 0 {
		return nil, nil, invalidOption("topN", "topN must not be negative, got %d", o.TopN)
	}
	if o.ColorCount < 1 {
		return nil, nil, invalidOption("colorCount", "colorCount must be at least 1, got %d", o.ColorCount)
	}
	if o.PointSize <= 0 {
		return nil, nil, invalidOption("pointSize", "pointSize must be positive")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return nil, nil, invalidOption("size", "width and height must be positive")
	}

	pal, err := palette.Lookup(o.ColorPalette)
	if err != nil {
		return nil, nil, err
	}
	if _, err := pal.Colors(o.ColorCount); err != nil {
		return nil, nil, err
	}

	if a := o.Annotation; a != nil {
		if strings.TrimSpace(a.IDColumn) == "" {
			return nil, nil, invalidOption("annotation.idColumn", "annotation requires an identifier column")
		}
		if len(a.Fields) == 0 {
			return nil, nil, invalidOption("annotation.fields", "annotation requires at least one field")
		}
		seen := make(map[string]bool, len(a.Fields))
		for _, f := range a.Fields {
			switch {
			case strings.TrimSpace(f) == "":
				return nil, nil, invalidOption("annotation.fields", "annotation fields must not be empty")
			case f == annotate.DefaultIDField || f == a.IDColumn:
				return nil, nil, invalidOption("annotation.fields", "annotation field %q names the identifier", f)
			case seen[f]:
				return nil, nil, invalidOption("annotation.fields", "annotation field %q is listed twice", f)
			}
			seen[f] = true
		}
	}
	return ref, pal, nil
}
