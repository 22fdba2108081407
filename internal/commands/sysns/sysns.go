// Package sysns declares ps and confirm: a real external-data source (ps,
// via gopsutil) and an interactive prompt (confirm, via huh) that the
// Printer collaborator pattern doesn't cover.
package sysns

import (
	"github.com/charmbracelet/huh"
	"github.com/shirou/gopsutil/v4/process"

	"crush/internal/crusherr"
	"crush/internal/lang"
)

// Register declares ps and confirm directly into root, unqualified
// (like group/zip, neither belongs to a namespace).
func Register(root *lang.Scope) error {
	if err := root.Declare("ps", lang.CommandValue(lang.NewSimpleCommand("ps", true, ps))); err != nil {
		return err
	}
	if err := root.Declare("confirm", lang.CommandValue(lang.NewSimpleCommand("confirm", false, confirm))); err != nil {
		return err
	}
	return nil
}

var psSchema = lang.Schema{
	{Name: "pid", Type: lang.ValueType{Kind: lang.KindInteger}},
	{Name: "name", Type: lang.ValueType{Kind: lang.KindText}},
	{Name: "status", Type: lang.ValueType{Kind: lang.KindText}},
}

// ps materializes a table of currently running processes.
func ps(ctx *lang.ExecutionContext) error {
	procs, err := process.Processes()
	if err != nil {
		return crusherr.IOf("listing processes: %v", err)
	}
	sender, err := ctx.Output.Initialize(psSchema)
	if err != nil {
		return err
	}
	defer sender.Close()
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			name = "unknown"
		}
		statuses, err := p.Status()
		status := ""
		if err == nil && len(statuses) > 0 {
			status = statuses[0]
		}
		row := lang.Row{lang.IntegerFromInt64(int64(p.Pid)), lang.Text(name), lang.Text(status)}
		if err := sender.Send(row); err != nil {
			return err
		}
	}
	return nil
}

// confirm prompts the user with a yes/no question via huh, sending the
// answer back as a Bool. It does not check for a TTY first; a prompt
// that fails to run is reported as an IO error.
func confirm(ctx *lang.ExecutionContext) error {
	prompt := "Continue?"
	if args := ctx.Arguments.Positional(); len(args) > 0 {
		if s, ok := args[0].Text(); ok {
			prompt = s
		}
	}
	var answer bool
	field := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)
	if err := field.Run(); err != nil {
		return crusherr.IOf("confirm prompt: %v", err)
	}
	return ctx.Output.SendValue(lang.Bool(answer))
}
