// Command crush is the CLI entry point: a root command (run a script
// file, -c a string, or fall into an interactive REPL), wiring
// internal/frontend.Compile as the single compile step and
// internal/executor.Executor as the runtime.
package main

import (
	"errors"
	"fmt"
	"os"

	"crush/internal/crusherr"
)

// Exit codes: 0 success, 1 runtime error, 2 parse error.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crush:", err)
		if errors.Is(err, crusherr.ErrParse) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
