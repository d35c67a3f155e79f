package cli

import (
	"github.com/spf13/cobra"

	"github.com/ArashLab/caplot/internal/config"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <chart-file>",
		Short: "Render a chart described by a YAML, CUE or JSON file",
		Long: `Render a chart file. The file names the chart kind, the data source,
optional filter, highlight and hovers, and the chart's options.

YAML files (.yaml, .yml) are decoded strictly. CUE (.cue) and JSON (.json)
files are validated against the chart schema; print it with --schema.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if schema, _ := cmd.Flags().GetBool("schema"); schema {
				if formatter.Format == "json" {
					return formatter.Success(map[string]string{"schema": config.Schema()})
				}
				_, err := cmd.OutOrStdout().Write([]byte(config.Schema()))
				return err
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "render requires a chart file")
			}
			return runRender(cmd, rootOpts, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "export path overriding the chart file's output")
	cmd.Flags().Bool("schema", false, "print the CUE chart schema and exit")

	return cmd
}

func runRender(cmd *cobra.Command, rootOpts *RootOptions, path, output string) error {
	formatter := rootOpts.formatter(cmd)
	ctx := cmd.Context()

	f, err := config.Load(path)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Rendering %s chart from %s", f.Kind, f.SourcePath())

	r, err := f.Build(ctx, rootOpts.Registry, rootOpts.chartOptions()...)
	if err != nil {
		return formatter.Fail(err)
	}
	if output == "" {
		output = f.OutputPath()
	}
	return export(ctx, formatter, r, output)
}
