package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"crush/internal/lang"
)

// logPrinter implements lang.Printer, the collaborator echo uses to
// reach the terminal. Diagnostic
// messages (Errorf) go through the same charmbracelet/log.Logger the
// executor traces stages with; user-facing values (Print/PrintTable) go
// straight to stdout so piping `crush script.cr | less` sees exactly the
// program's own output, undecorated by log level prefixes.
type logPrinter struct {
	logger *log.Logger
}

func newLogPrinter(logger *log.Logger) *logPrinter {
	return &logPrinter{logger: logger}
}

func (p *logPrinter) Print(v lang.Value) {
	fmt.Println(v.String())
}

func (p *logPrinter) PrintTable(t *lang.Table) { printTable(t) }

// printTable renders t as a column-aligned text table, reused by
// logPrinter.PrintTable and the REPL's implicit last-value print.
func printTable(t *lang.Table) {
	if t == nil || len(t.Schema) == 0 {
		return
	}
	widths := make([]int, len(t.Schema))
	for i, c := range t.Schema {
		widths[i] = len(c.Name)
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if n := len(v.String()); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var header strings.Builder
	for i, c := range t.Schema {
		fmt.Fprintf(&header, "%-*s  ", widths[i], c.Name)
	}
	fmt.Println(strings.TrimRight(header.String(), " "))

	for _, row := range t.Rows {
		var line strings.Builder
		for i, v := range row {
			fmt.Fprintf(&line, "%-*s  ", widths[i], v.String())
		}
		fmt.Println(strings.TrimRight(line.String(), " "))
	}
}

func (p *logPrinter) Errorf(format string, args ...any) {
	p.logger.Errorf(format, args...)
}
