/*
PURPOSE:
  Entry point for dex-bench, the LLM benchmark runner.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Execute errors and their hints are printed to stderr; exit code 1.
  - An interrupted run also exits 1; its state is already saved and resumable.

IMPLEMENTATION RULES:
  - Keep main() minimal. Commands live in internal/cli, signal handling in the run command.

USAGE:
  go build -o dex-bench ./cmd/dex-bench
  ./dex-bench run --concurrency 4

RELATED FILES:
  - internal/cli/root.go
*/

package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/daryltucker/dex-bench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
