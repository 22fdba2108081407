// Package commands wires every external-collaborator command namespace
// into a root scope. cmd/crush calls Register once at startup, before
// compiling or running anything.
package commands

import (
	"crush/internal/commands/io"
	"crush/internal/commands/stream"
	"crush/internal/commands/sysns"
	"crush/internal/commands/varns"
	"crush/internal/lang"
)

// Register declares io, var, group/zip and ps/confirm into root.
func Register(root *lang.Scope) error {
	if err := io.Register(root); err != nil {
		return err
	}
	if err := varns.Register(root); err != nil {
		return err
	}
	if err := stream.Register(root); err != nil {
		return err
	}
	if err := sysns.Register(root); err != nil {
		return err
	}
	return nil
}
