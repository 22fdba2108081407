package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"crush/internal/builtin"
	"crush/internal/commands"
	"crush/internal/config"
	"crush/internal/executor"
	"crush/internal/frontend"
	"crush/internal/lang"
)

var (
	flagCommand string
	flagDryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "crush [script]",
	Short: "A structured-data pipeline shell",
	Long: "crush compiles and runs structured-data pipelines: pass a script\n" +
		"file, use -c to run a string, or run with no arguments to start\n" +
		"an interactive REPL.",
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeScopeNames(toComplete)
	},
	RunE: runRoot,
}

func init() {
	rootCmd.Flags().StringVarP(&flagCommand, "command", "c", "", "run this script text instead of a file")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the compiled job list without running it")
}

// completeScopeNames builds a throwaway root scope the same way runRoot
// does and suggests names visible from it, for shell completion.
func completeScopeNames(toComplete string) ([]string, cobra.ShellCompDirective) {
	root := lang.NewRootScope()
	if err := builtin.Register(root); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	if err := commands.Register(root); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := root.Names()
	sort.Strings(names)
	var suggestions []string
	for _, n := range names {
		if strings.HasPrefix(n, toComplete) {
			suggestions = append(suggestions, n)
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// newRuntime resolves config, builds a root scope with every builtin and
// external-collaborator command registered, and wires an Executor against
// a Printer backed by the configured logger.
func newRuntime() (*executor.Executor, *lang.Scope, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	root := lang.NewRootScope()
	if err := builtin.Register(root); err != nil {
		return nil, nil, config.Config{}, err
	}
	if err := commands.Register(root); err != nil {
		return nil, nil, config.Config{}, err
	}
	for _, name := range cfg.UseNamespaces {
		if name == "io" || name == "var" {
			// Already merged unconditionally by commands.Register.
			continue
		}
		if v, ok := root.Lookup(name); ok {
			if ns, ok := v.ScopeRef(); ok {
				root.Use(ns)
			}
		}
	}

	logger := config.NewLogger(cfg, os.Stderr)
	printer := newLogPrinter(logger)
	ex := executor.New(printer, logger)
	return ex, root, cfg, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	ex, root, cfg, err := newRuntime()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch {
	case flagCommand != "":
		return runSource(ctx, ex, root, flagCommand)
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		return runSource(ctx, ex, root, string(data))
	default:
		return runREPL(ctx, ex, root, cfg)
	}
}

// runSource compiles and runs a whole script to completion, discarding
// its jobs' output — any user-visible output happens through a command
// like echo reaching the wired Printer, matching RunJobList's contract.
func runSource(ctx context.Context, ex *executor.Executor, root *lang.Scope, source string) error {
	jobs, err := frontend.Compile(source)
	if err != nil {
		return err
	}
	if flagDryRun {
		dryRunJobList(jobs)
		return nil
	}
	return ex.RunJobList(ctx, jobs, root)
}
