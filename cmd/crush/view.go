package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"crush/internal/frontend"
	"crush/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view [script]",
	Short: "Run a pipeline and browse its result in a scrollable viewer",
	Long: "view compiles and runs a pipeline the same way the root command\n" +
		"does, then hands its terminal value to a full-screen viewer instead\n" +
		"of printing it: a row stream, Table or TableStream gets a scrollable\n" +
		"grid (rows stay in the order produced; the grid does not sort), and\n" +
		"any stream-typed column (as group produces) can be drilled into with\n" +
		"enter.",
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	ex, root, _, err := newRuntime()
	if err != nil {
		return err
	}

	jobs, err := frontend.Compile(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	tbl, err := ex.RunJobMaterialized(ctx, jobs, root)
	if err != nil {
		return err
	}
	if len(tbl.Rows) != 1 || len(tbl.Schema) != 1 {
		return tui.ViewTable(tbl)
	}
	v := tbl.Rows[0][0]

	if t, ok := v.Table(); ok {
		return tui.ViewTable(t)
	}
	if ts, ok := v.TableStream(); ok {
		return tui.ViewStream(ts)
	}
	return fmt.Errorf("view: result is not a table or table stream (got %s)", v.Type())
}
