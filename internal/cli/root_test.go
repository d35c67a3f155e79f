package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArashLab/caplot/internal/chart"
	"github.com/ArashLab/caplot/internal/genome"
)

const tinyBuild = `
builds:
  - name: Tiny
    aliases: [t1]
    contigs:
      - {name: "1", length: 1000}
      - {name: "2", length: 500}
`

func tinyRegistry(t *testing.T) *genome.Registry {
	t.Helper()
	reg, err := genome.Load(strings.NewReader(tinyBuild))
	require.NoError(t, err)
	return reg
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, reg *genome.Registry, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(reg)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(tinyRegistry(t))
	require.NotNil(t, cmd)
	assert.Equal(t, "caplot", cmd.Use)
	assert.Contains(t, cmd.Long, "Manhattan")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(tinyRegistry(t))
	commands := []string{"manhattan", "pca", "render", "layout", "genomes", "palettes"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(tinyRegistry(t))

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	alphaFlag := cmd.PersistentFlags().Lookup("dimmed-alpha")
	require.NotNil(t, alphaFlag)
	assert.Equal(t, "0.5", alphaFlag.DefValue)
}

func TestChartOptions_DimmedAlpha(t *testing.T) {
	opts := &RootOptions{DimmedAlpha: 0.3}
	assert.Equal(t, 0.3, chart.NewBase(opts.chartOptions()...).DimmedAlpha())
}

func TestInvalidDimmedAlpha(t *testing.T) {
	_, err := execute(t, tinyRegistry(t), "genomes", "--dimmed-alpha", "1.5")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid dimmed alpha")
}

func TestChartCommandFlags(t *testing.T) {
	cmd := NewRootCommand(tinyRegistry(t))

	for _, name := range []string{"manhattan", "pca"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			outputFlag := sub.Flags().Lookup("output")
			require.NotNil(t, outputFlag)
			assert.Equal(t, "o", outputFlag.Shorthand)
			for _, flag := range []string{"query", "filter", "invert-filter", "highlight", "invert-highlight", "hovers"} {
				assert.NotNil(t, sub.Flags().Lookup(flag), "missing --%s", flag)
			}
		})
	}
}

func TestManhattanCommandDefaults(t *testing.T) {
	cmd := NewRootCommand(tinyRegistry(t))
	sub, _, err := cmd.Find([]string{"manhattan"})
	require.NoError(t, err)

	assert.Equal(t, "GRCh38", sub.Flags().Lookup("genome").DefValue)
	assert.Equal(t, "pvalue", sub.Flags().Lookup("pvalue-column").DefValue)
	assert.Equal(t, "2", sub.Flags().Lookup("colors").DefValue)
	assert.Equal(t, "Category10", sub.Flags().Lookup("palette").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, tinyRegistry(t), "genomes", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}
