package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ArashLab/caplot/internal/pca"
)

// NewLayoutCommand creates the layout command.
func NewLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	var columnsPerRow int

	cmd := &cobra.Command{
		Use:   "layout <subplots-json>",
		Short: "Show the subplot grid a PCA subplot spec produces",
		Example: `  caplot layout '["PC1","PC2","PC3"]'
  caplot layout '[["PC1","PC2"],["PC3","PC4"]]' --columns-per-row 1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			spec, err := pca.ParseSubplots(args[0])
			if err != nil {
				return formatter.Fail(err)
			}
			plan, err := pca.LayoutPlan(spec, columnsPerRow)
			if err != nil {
				return formatter.Fail(err)
			}
			if formatter.Format == "json" {
				return formatter.Success(plan)
			}
			for i, row := range plan {
				cells := make([]string, len(row))
				for j, p := range row {
					cells[j] = p[0] + " × " + p[1]
				}
				fmt.Fprintf(formatter.Writer, "row %d: %s\n", i+1, strings.Join(cells, " | "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&columnsPerRow, "columns-per-row", pca.DefaultOptions().ColumnsPerRow, "subplots per grid row")

	return cmd
}
