package cli

import (
	"github.com/spf13/cobra"

	"github.com/ArashLab/caplot/internal/manhattan"
)

type manhattanFlags struct {
	chartFlags
	opts             manhattan.Options
	rawPValue        bool
	annotateID       string
	annotateFields   []string
	annotateEndpoint string
}

// NewManhattanCommand creates the manhattan command.
func NewManhattanCommand(rootOpts *RootOptions) *cobra.Command {
	f := &manhattanFlags{opts: manhattan.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "manhattan <source>",
		Short: "Draw a Manhattan plot of association results",
		Long: `Draw a Manhattan plot: one point per variant at its position on the
concatenated genome, with -log10(p) on the y axis and alternating colors
per contig.

The source is a csv/tsv/arrow/parquet file (optionally compressed) or a
database URL such as postgres://user@host/db, which requires --query.`,
		Example: `  caplot manhattan gwas.tsv.gz -o gwas.html --genome GRCh37 --highlight "SELECT * FROM data WHERE pvalue < 5e-8"
  caplot manhattan sqlite:///results.db -q "SELECT * FROM gwas" -o gwas.png --top-n 10000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManhattan(cmd, rootOpts, f, args[0])
		},
	}

	f.chartFlags.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&f.opts.Genome, "genome", f.opts.Genome, "reference genome build or alias")
	flags.StringVar(&f.opts.ContigColumn, "contig-column", f.opts.ContigColumn, "column holding contig names")
	flags.StringVar(&f.opts.PositionColumn, "position-column", f.opts.PositionColumn, "column holding 1-based positions")
	flags.StringVar(&f.opts.PValueColumn, "pvalue-column", f.opts.PValueColumn, "column holding p-values")
	flags.BoolVar(&f.rawPValue, "raw-pvalue", false, "plot the p-value column as is instead of -log10")
	flags.IntVar(&f.opts.TopN, "top-n", 0, "plot only the N most significant rows (0 plots all)")
	flags.StringVar(&f.opts.ColorPalette, "palette", f.opts.ColorPalette, "palette contig colors are taken from")
	flags.IntVar(&f.opts.ColorCount, "colors", f.opts.ColorCount, "number of palette colors contigs alternate through")
	flags.Float64Var(&f.opts.PointSize, "point-size", f.opts.PointSize, "marker diameter in pixels")
	flags.IntVar(&f.opts.Width, "width", f.opts.Width, "plot width in pixels")
	flags.IntVar(&f.opts.Height, "height", f.opts.Height, "plot height in pixels")
	flags.StringVar(&f.opts.Title, "title", "", "plot title")
	flags.StringSliceVar(&f.annotateFields, "annotate", nil, "annotation fields to fetch for non-dimmed variants")
	flags.StringVar(&f.annotateID, "annotate-id", "id", "column holding variant identifiers for annotation")
	flags.StringVar(&f.annotateEndpoint, "annotate-endpoint", "", "annotation service URL (defaults to Ensembl VEP)")

	return cmd
}

func runManhattan(cmd *cobra.Command, rootOpts *RootOptions, f *manhattanFlags, src string) error {
	formatter := rootOpts.formatter(cmd)
	ctx := cmd.Context()

	c, err := manhattan.New(rootOpts.Registry, rootOpts.chartOptions()...)
	if err != nil {
		return formatter.Fail(err)
	}
	opts := f.opts
	opts.NegativeLog10 = !f.rawPValue
	if len(f.annotateFields) > 0 {
		opts.Annotation = &manhattan.AnnotationOptions{
			IDColumn: f.annotateID,
			Fields:   f.annotateFields,
			Endpoint: f.annotateEndpoint,
		}
	}
	if err := c.Configure(opts); err != nil {
		return formatter.Fail(err)
	}

	formatter.VerboseLog("Loading %s", src)
	if err := f.apply(ctx, c.Base, src); err != nil {
		return formatter.Fail(err)
	}
	return export(ctx, formatter, c, f.output)
}
