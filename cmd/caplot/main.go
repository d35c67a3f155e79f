// Command caplot draws Manhattan and PCA charts from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/ArashLab/caplot/internal/cli"
	"github.com/ArashLab/caplot/internal/genome"
)

func main() {
	os.Exit(run())
}

func run() int {
	registry, err := genome.LoadEmbedded()
	if err != nil {
		fmt.Fprintf(os.Stderr, "caplot: %v\n", err)
		return cli.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = cli.NewRootCommand(registry).ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	// Commands report their own failures; cobra's argument and flag
	// errors still need printing.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "caplot: %v\n", err)
		return cli.ExitCommandError
	}
	if exitErr.Err == nil {
		fmt.Fprintf(os.Stderr, "caplot: %v\n", err)
	}
	return exitErr.Code
}
