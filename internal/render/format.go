package render

import (
	"path/filepath"
	"strings"

	"github.com/ArashLab/caplot/internal/errs"
)

// Format is an output file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Kind groups formats the way callers ask for them.
type Kind string

const (
	KindImage  Kind = "image"
	KindVector Kind = "vector"
	KindMarkup Kind = "markup"
)

// AllFormats lists the formats written when a path has no suffix.
var AllFormats = []Format{FormatPNG, FormatJPEG, FormatSVG, FormatPDF, FormatHTML}

var suffixFormats = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".svg":  FormatSVG,
	".pdf":  FormatPDF,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// Kind returns the output kind of f.
func (f Format) Kind() Kind {
	switch f {
	case FormatPNG, FormatJPEG:
		return KindImage
	case FormatSVG, FormatPDF:
		return KindVector
	default:
		return KindMarkup
	}
}

// Target is one file to write.
type Target struct {
	Path   string
	Format Format
}

// Targets resolves an export path into the files to write. A path without
// a suffix yields one target per format, named path + "." + format. Any
// other unknown suffix fails with UNSUPPORTED_EXPORT_FORMAT.
func Targets(path string) ([]Target, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		out := make([]Target, len(AllFormats))
		for i, f := range AllFormats {
			out[i] = Target{Path: path + "." + string(f), Format: f}
		}
		return out, nil
	}
	f, ok := suffixFormats[strings.ToLower(ext)]
	if !ok {
		return nil, errs.New(errs.CodeUnsupportedExportFormat, "unsupported export format %q", ext).
			With("path", path).
			With("suffix", ext)
	}
	return []Target{{Path: path, Format: f}}, nil
}
