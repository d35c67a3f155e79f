package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ArashLab/caplot/internal/palette"
)

// GenomeInfo summarizes one reference build.
type GenomeInfo struct {
	Build   string   `json:"build"`
	Aliases []string `json:"aliases,omitempty"`
	Contigs []string `json:"contigs"`
	Length  int64    `json:"length"`
}

// NewGenomesCommand creates the genomes command.
func NewGenomesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "genomes",
		Short:         "List the supported reference genome builds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			var infos []GenomeInfo
			for _, name := range rootOpts.Registry.Builds() {
				ref, err := rootOpts.Registry.Reference(name)
				if err != nil {
					return formatter.Fail(err)
				}
				info := GenomeInfo{Build: ref.Build, Aliases: ref.Aliases, Length: ref.Length()}
				for _, c := range ref.Contigs() {
					info.Contigs = append(info.Contigs, c.Name)
				}
				infos = append(infos, info)
			}

			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			for _, info := range infos {
				aliases := ""
				if len(info.Aliases) > 0 {
					aliases = " (" + strings.Join(info.Aliases, ", ") + ")"
				}
				fmt.Fprintf(formatter.Writer, "%s%s: %d contigs, %d bp\n", info.Build, aliases, len(info.Contigs), info.Length)
			}
			return nil
		},
	}
}

// PaletteInfo summarizes one named palette.
type PaletteInfo struct {
	Name   string       `json:"name"`
	Kind   palette.Kind `json:"kind"`
	Colors int          `json:"colors"`
}

// NewPalettesCommand creates the palettes command.
func NewPalettesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "palettes",
		Short:         "List the named color palettes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			var infos []PaletteInfo
			for _, kind := range []palette.Kind{palette.Categorical, palette.Continuous} {
				for _, name := range palette.Names(kind) {
					p, err := palette.Lookup(name)
					if err != nil {
						return formatter.Fail(err)
					}
					infos = append(infos, PaletteInfo{Name: p.Name, Kind: p.Kind, Colors: p.Len()})
				}
			}

			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			for _, info := range infos {
				fmt.Fprintf(formatter.Writer, "%-12s %-11s %d\n", info.Name, info.Kind, info.Colors)
			}
			return nil
		},
	}
}
