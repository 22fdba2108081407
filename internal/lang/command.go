package lang

import (
	"context"

	"crush/internal/crusherr"
)

// ErrNoClosureRunner is an internal invariant violation: an
// ExecutionContext was constructed without a ClosureRunner but a closure
// was invoked through it anyway.
var ErrNoClosureRunner = crusherr.Internalf("execution context has no closure runner")

// Command is crush's sealed Value payload for KindCommand: either a
// SimpleCommand (a builtin Go function) or a Closure (a job list captured
// with its defining scope). The unexported marker method restricts
// implementers to this package.
type Command interface {
	isCommand()
	// Invoke runs the command against ctx. CanBlock reports whether this
	// command may read from ctx.Input/block on I/O; it is informational:
	// the executor runs every stage in its own goroutine regardless.
	Invoke(ctx *ExecutionContext) error
	CanBlock() bool
}

// SimpleCommand wraps a Go function as a builtin command, used
// throughout internal/builtin and internal/commands/*.
type SimpleCommand struct {
	Name     string
	Fn       func(ctx *ExecutionContext) error
	canBlock bool
}

func NewSimpleCommand(name string, canBlock bool, fn func(ctx *ExecutionContext) error) *SimpleCommand {
	return &SimpleCommand{Name: name, Fn: fn, canBlock: canBlock}
}

func (*SimpleCommand) isCommand() {}

func (c *SimpleCommand) Invoke(ctx *ExecutionContext) error { return c.Fn(ctx) }
func (c *SimpleCommand) CanBlock() bool                     { return c.canBlock }

// Closure is a user-defined command: a captured JobList plus the scope it
// closed over when written, lowered into a runtime Value by the
// resolver.
type Closure struct {
	Jobs  JobList
	Scope *Scope
}

func (*Closure) isCommand() {}

// CanBlock always reports true: a closure's body may contain arbitrary
// pipeline stages.
func (c *Closure) CanBlock() bool { return true }

// Invoke requires a ClosureRunner to actually execute c.Jobs, which the
// lang package cannot provide without importing executor (creating the
// cycle the package-boundary addendum describes). ClosureRunner is
// injected by whoever constructs the ExecutionContext (internal/executor).
func (c *Closure) Invoke(ctx *ExecutionContext) error {
	if ctx.ClosureRunner == nil {
		return ErrNoClosureRunner
	}
	return ctx.ClosureRunner.RunClosure(ctx.Context, c, ctx.Output)
}

// ClosureRunner lets internal/executor supply closure-invocation without
// lang importing executor.
type ClosureRunner interface {
	RunClosure(ctx context.Context, c *Closure, out Output) error
}

// Argument is one resolved (name, value) pair handed to a command at
// invocation time — the runtime counterpart of ArgumentDefinition.
type Argument struct {
	Name  string // empty for positional arguments
	Value Value
}

// Arguments is the resolved argument list an ExecutionContext carries,
// with helpers for the small amount of argument-list lookup commands
// like val and echo need.
type Arguments []Argument

// Named returns the value of the first argument with the given name.
func (a Arguments) Named(name string) (Value, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return Value{}, false
}

// Positional returns the values of every unnamed argument, in order.
func (a Arguments) Positional() []Value {
	out := make([]Value, 0, len(a))
	for _, arg := range a {
		if arg.Name == "" {
			out = append(out, arg.Value)
		}
	}
	return out
}

// Printer is the collaborator commands use to print user-facing output
// (echo), backed by
// github.com/charmbracelet/log at the CLI boundary.
type Printer interface {
	Print(v Value)
	PrintTable(t *Table)
	Errorf(format string, args ...any)
}

// ExecutionContext is everything a Command.Invoke needs: its resolved
// arguments, an input/output pair wired by the executor, the scope it
// runs against, and collaborators for printing and closure execution.
type ExecutionContext struct {
	Context       context.Context
	Arguments     Arguments
	Input         Input
	Output        Output
	Scope         *Scope
	Printer       Printer
	ClosureRunner ClosureRunner
}

// Arg looks up a named argument and reports whether it was present and of
// the expected kind, combining the Named lookup and the Kind check in
// one call.
func (c *ExecutionContext) Arg(name string, kind Kind) (Value, bool) {
	v, ok := c.Arguments.Named(name)
	if !ok || v.Kind != kind {
		return Value{}, false
	}
	return v, true
}
