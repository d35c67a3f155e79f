package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArashLab/caplot/internal/chart"
	"github.com/ArashLab/caplot/internal/errs"
)

// chartFlags are the data and export flags shared by chart commands.
type chartFlags struct {
	output          string
	query           string
	filter          string
	invertFilter    string
	highlight       string
	invertHighlight string
	hovers          string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "export path; the suffix selects the format, none writes every format")
	flags.StringVarP(&f.query, "query", "q", "", "SQL query applied when loading (required for database sources)")
	flags.StringVar(&f.filter, "filter", "", "keep only rows the query selects")
	flags.StringVar(&f.invertFilter, "invert-filter", "", "drop the rows the query selects")
	flags.StringVar(&f.highlight, "highlight", "", "dim every row the query does not select")
	flags.StringVar(&f.invertHighlight, "invert-highlight", "", "dim the rows the query selects")
	flags.StringVar(&f.hovers, "hovers", "", `hover labels as a JSON object, e.g. '{"Variant":"id"}'`)

	_ = cmd.MarkFlagRequired("output")
	cmd.MarkFlagsMutuallyExclusive("filter", "invert-filter")
	cmd.MarkFlagsMutuallyExclusive("highlight", "invert-highlight")
}

// apply loads src into b and applies the subset and hover flags.
func (f *chartFlags) apply(ctx context.Context, b *chart.Base, src string) error {
	hovers, err := chart.ParseHoverMap(f.hovers)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidOption, err, "invalid --hovers").With("flag", "hovers")
	}
	if err := b.Load(ctx, src, f.query); err != nil {
		return err
	}
	if q, keep := selection(f.filter, f.invertFilter); q != "" {
		if err := b.Filter(ctx, q, keep); err != nil {
			return err
		}
	}
	if q, keep := selection(f.highlight, f.invertHighlight); q != "" {
		if err := b.Highlight(ctx, q, keep); err != nil {
			return err
		}
	}
	b.SetHovers(hovers)
	return nil
}

// selection picks whichever of the plain and inverted flags is set.
func selection(plain, inverted string) (string, bool) {
	if inverted != "" {
		return inverted, false
	}
	return plain, true
}

// ExportResult is the data reported after a chart is exported.
type ExportResult struct {
	Files []string `json:"files"`
}

// export writes r to the output path and reports the files written.
func export(ctx context.Context, formatter *OutputFormatter, r chart.Renderer, path string) error {
	files, err := chart.Export(ctx, r, path)
	if err != nil {
		return formatter.Fail(err)
	}
	if formatter.Format == "json" {
		return formatter.Success(ExportResult{Files: files})
	}
	for _, f := range files {
		fmt.Fprintf(formatter.Writer, "✓ Wrote %s\n", f)
	}
	return nil
}
