package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ArashLab/caplot/internal/chart"
	"github.com/ArashLab/caplot/internal/genome"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Registry holds the reference genomes charts resolve builds against.
	Registry *genome.Registry
	// DimmedAlpha is the opacity of rows outside a highlight.
	DimmedAlpha float64
	// Logger is installed by the root command before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// chartOptions returns the options every chart is created with.
func (o *RootOptions) chartOptions() []chart.Option {
	opts := []chart.Option{chart.WithDimmedAlpha(o.DimmedAlpha)}
	if o.Logger != nil {
		opts = append(opts, chart.WithLogger(o.Logger))
	}
	return opts
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// NewRootCommand creates the root command for the caplot CLI.
func NewRootCommand(registry *genome.Registry) *cobra.Command {
	opts := &RootOptions{Registry: registry, DimmedAlpha: chart.DimmedAlpha}

	cmd := &cobra.Command{
		Use:   "caplot",
		Short: "caplot - charts for genomic analyses",
		Long: `Draw Manhattan plots of association results and scatter grids of
principal components from files, data frames or SQL databases, and export
them as PNG, JPEG, SVG, PDF or interactive HTML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.DimmedAlpha < 0 || opts.DimmedAlpha > 1 {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid dimmed alpha %v: must be between 0 and 1", opts.DimmedAlpha))
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().Float64Var(&opts.DimmedAlpha, "dimmed-alpha", chart.DimmedAlpha, "opacity of rows outside the highlight (0-1)")

	// Add subcommands
	cmd.AddCommand(NewManhattanCommand(opts))
	cmd.AddCommand(NewPCACommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewLayoutCommand(opts))
	cmd.AddCommand(NewGenomesCommand(opts))
	cmd.AddCommand(NewPalettesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
