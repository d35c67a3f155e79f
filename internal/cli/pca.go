package cli

import (
	"github.com/spf13/cobra"

	"github.com/ArashLab/caplot/internal/pca"
)

type pcaFlags struct {
	chartFlags
	opts     pca.Options
	subplots string
	style    string
}

// NewPCACommand creates the pca command.
func NewPCACommand(rootOpts *RootOptions) *cobra.Command {
	f := &pcaFlags{opts: pca.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "pca <source>",
		Short: "Draw a grid of principal component scatter plots",
		Long: `Draw one scatter plot per pair of principal component columns.

--subplots takes a JSON list: a flat list of columns plots every pair of
them, a list of [x, y] pairs plots exactly those.`,
		Example: `  caplot pca pcs.tsv -o pcs.html --subplots '["PC1","PC2","PC3"]' --color-by population
  caplot pca pcs.parquet -o pcs.svg --subplots '[["PC1","PC2"],["PC3","PC4"]]' --color-by age --coloring-style continuous`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPCA(cmd, rootOpts, f, args[0])
		},
	}

	f.chartFlags.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&f.subplots, "subplots", "", "subplot spec as JSON")
	flags.StringVar(&f.opts.ColoringColumn, "color-by", "", "column points are colored by")
	flags.StringVar(&f.style, "coloring-style", "", "categorical or continuous (inferred when unset)")
	flags.StringVar(&f.opts.ColoringPalette, "palette", "", "palette name (defaults by coloring style)")
	flags.IntVar(&f.opts.ColumnsPerRow, "columns-per-row", f.opts.ColumnsPerRow, "subplots per grid row")
	flags.Float64Var(&f.opts.PointSize, "point-size", f.opts.PointSize, "marker diameter in pixels")
	flags.IntVar(&f.opts.SubplotWidth, "width", f.opts.SubplotWidth, "subplot width in pixels")
	flags.IntVar(&f.opts.SubplotHeight, "height", f.opts.SubplotHeight, "subplot height in pixels")
	flags.StringVar(&f.opts.Title, "title", "", "figure title")
	_ = cmd.MarkFlagRequired("subplots")

	return cmd
}

func runPCA(cmd *cobra.Command, rootOpts *RootOptions, f *pcaFlags, src string) error {
	formatter := rootOpts.formatter(cmd)
	ctx := cmd.Context()

	opts := f.opts
	subplots, err := pca.ParseSubplots(f.subplots)
	if err != nil {
		return formatter.Fail(err)
	}
	opts.Subplots = subplots
	if opts.ColoringStyle, err = pca.ParseStyle(f.style); err != nil {
		return formatter.Fail(err)
	}

	c := pca.New(rootOpts.chartOptions()...)
	if err := c.Configure(opts); err != nil {
		return formatter.Fail(err)
	}

	formatter.VerboseLog("Loading %s", src)
	if err := f.apply(ctx, c.Base, src); err != nil {
		return formatter.Fail(err)
	}
	return export(ctx, formatter, c, f.output)
}
