// Package main is the entrypoint for the dictsmoke CLI.
// dictsmoke obtains session tokens for the dictionary service and runs
// smoke suites against it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aelexs/dictsmoke/internal/errmap"
)

// version can be set during build with -ldflags.
var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and maps the outcome to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return errmap.ToExitCode(err)
}
