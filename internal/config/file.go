// Package config reads declarative chart files.
//
// A chart file names a chart kind, a data source and the chart's options,
// plus optional filter, highlight and hover settings:
//
//	kind: manhattan
//	source: gwas.tsv.gz
//	highlight:
//	  query: SELECT * FROM data WHERE pvalue < 5e-8
//	hovers:
//	  Variant: id
//	manhattan:
//	  genome: GRCh37
//	  topN: 5000
//	output: gwas.html
//
// YAML files are decoded strictly: unknown keys are errors. CUE files (and
// JSON, which CUE reads natively) are unified with an embedded schema and
// must be concrete. Relative source and output paths are resolved against
// the chart file's directory.
package config

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ArashLab/caplot/internal/chart"
	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/genome"
	"github.com/ArashLab/caplot/internal/manhattan"
	"github.com/ArashLab/caplot/internal/pca"
	"github.com/ArashLab/caplot/internal/source"
)

// Chart kinds.
const (
	KindManhattan = "manhattan"
	KindPCA       = "pca"
)

// File is a decoded chart file.
type File struct {
	// Kind is KindManhattan or KindPCA.
	Kind string `json:"kind" yaml:"kind"`

	// Source is a file path or database URL; Query is applied on load.
	Source string `json:"source" yaml:"source"`
	Query  string `json:"query,omitempty" yaml:"query,omitempty"`

	Filter    *Selection     `json:"filter,omitempty" yaml:"filter,omitempty"`
	Highlight *Selection     `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Hovers    chart.HoverMap `json:"hovers,omitempty" yaml:"hovers,omitempty"`

	// Output is the export path. Empty uses the chart file's name with an
	// .html suffix.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	Manhattan *manhattan.Options `json:"manhattan,omitempty" yaml:"manhattan,omitempty"`
	PCA       *pca.Options       `json:"pca,omitempty" yaml:"pca,omitempty"`

	// path is the file the chart was read from.
	path string
}

// Selection is a filter or highlight query. Invert selects the rows the
// query does not match.
type Selection struct {
	Query  string `json:"query" yaml:"query"`
	Invert bool   `json:"invert,omitempty" yaml:"invert,omitempty"`
}

// newFile returns a File whose option sections hold the chart defaults,
// so decoding only overrides the keys a file sets.
func newFile(path string) *File {
	m := manhattan.DefaultOptions()
	p := pca.DefaultOptions()
	return &File{Manhattan: &m, PCA: &p, path: path}
}

// Path returns the file the chart was read from.
func (f *File) Path() string {
	return f.path
}

// SourcePath returns Source with a relative file path resolved against
// the chart file's directory. Database URLs are returned unchanged.
func (f *File) SourcePath() string {
	if strings.Contains(f.Source, "://") || filepath.IsAbs(f.Source) {
		return f.Source
	}
	return filepath.Join(filepath.Dir(f.path), f.Source)
}

// OutputPath returns the export path resolved like SourcePath.
func (f *File) OutputPath() string {
	out := f.Output
	if out == "" {
		base := filepath.Base(f.path)
		out = strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(filepath.Dir(f.path), out)
}

func invalidFile(path, format string, args ...any) *errs.Error {
	return errs.New(errs.CodeInvalidOption, format, args...).With("file", path)
}

// validate checks the fields every chart kind requires.
func (f *File) validate() error {
	f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	switch f.Kind {
	case KindManhattan, KindPCA:
	case "":
		return invalidFile(f.path, "kind is required")
	default:
		return invalidFile(f.path, "unknown chart kind %q", f.Kind)
	}
	if strings.TrimSpace(f.Source) == "" {
		return invalidFile(f.path, "source is required")
	}
	if source.IsDatabaseURL(f.Source) && strings.TrimSpace(f.Query) == "" {
		return errs.New(errs.CodeMissingQuery, "database sources require a query").With("file", f.path)
	}
	if f.Manhattan == nil {
		m := manhattan.DefaultOptions()
		f.Manhattan = &m
	}
	if f.PCA == nil {
		p := pca.DefaultOptions()
		f.PCA = &p
	}
	if f.Kind == KindPCA && f.PCA.Subplots.IsZero() {
		return invalidFile(f.path, "pca: subplots is required")
	}
	for name, sel := range map[string]*Selection{"filter": f.Filter, "highlight": f.Highlight} {
		if sel != nil && strings.TrimSpace(sel.Query) == "" {
			return invalidFile(f.path, "%s: query is required", name)
		}
	}
	return nil
}

// Build creates the configured chart, loads its data and applies the
// filter, highlight and hovers.
func (f *File) Build(ctx context.Context, registry *genome.Registry, opts ...chart.Option) (chart.Renderer, error) {
	var (
		r    chart.Renderer
		base *chart.Base
	)
	switch f.Kind {
	case KindManhattan:
		c, err := manhattan.New(registry, opts...)
		if err != nil {
			return nil, err
		}
		if err := c.Configure(*f.Manhattan); err != nil {
			return nil, err
		}
		r, base = c, c.Base
	case KindPCA:
		c := pca.New(opts...)
		if err := c.Configure(*f.PCA); err != nil {
			return nil, err
		}
		r, base = c, c.Base
	default:
		return nil, invalidFile(f.path, "unknown chart kind %q", f.Kind)
	}

	if err := base.Load(ctx, f.SourcePath(), f.Query); err != nil {
		return nil, err
	}
	if f.Filter != nil {
		if err := base.Filter(ctx, f.Filter.Query, !f.Filter.Invert); err != nil {
			return nil, err
		}
	}
	if f.Highlight != nil {
		if err := base.Highlight(ctx, f.Highlight.Query, !f.Highlight.Invert); err != nil {
			return nil, err
		}
	}
	base.SetHovers(f.Hovers)
	return r, nil
}
