package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ktr0731/go-fuzzyfinder"

	"crush/internal/config"
	"crush/internal/executor"
	"crush/internal/frontend"
	"crush/internal/lang"
)

// runREPL is cmd/crush's interactive front end: a thin adapter owning a
// readline.Instance for history and keybindings, feeding whole lines to
// frontend.Compile/executor.Executor, keeping line-editing concerns
// separate from compilation and execution.
func runREPL(ctx context.Context, ex *executor.Executor, root *lang.Scope, cfg config.Config) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "crush> ",
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	var history []string
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":history" {
			selected, ok := pickFromHistory(history)
			if !ok {
				continue
			}
			line = selected
		} else {
			history = append(history, line)
		}

		runREPLLine(ctx, ex, root, line)
	}
}

// pickFromHistory opens a fuzzyfinder over previously accepted lines,
// grounded on cmd/tcpo/main.go's fzfSelect: fuzzyfinder.Find over a
// slice, with fuzzyfinder.ErrAbort treated as "nothing selected".
func pickFromHistory(history []string) (string, bool) {
	if len(history) == 0 {
		return "", false
	}
	idx, err := fuzzyfinder.Find(
		history,
		func(i int) string { return history[i] },
		fuzzyfinder.WithPromptString("history> "),
	)
	if err != nil {
		return "", false
	}
	return history[idx], true
}

// runREPLLine compiles and runs one line, implicitly printing the
// terminal stage's result the way an interactive shell (unlike a script)
// auto-displays the value of the last expression.
func runREPLLine(ctx context.Context, ex *executor.Executor, root *lang.Scope, line string) {
	jobs, err := frontend.Compile(line)
	if err != nil {
		fmt.Println("parse error:", err)
		return
	}
	if flagDryRun {
		dryRunJobList(jobs)
		return
	}
	for _, job := range jobs.Jobs {
		tbl, err := ex.RunJobMaterialized(ctx, lang.JobList{Jobs: []lang.Job{job}}, root)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if tbl != nil && tbl.Schema != nil {
			printTable(tbl)
		}
	}
}
