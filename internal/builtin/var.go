package builtin

import (
	"crush/internal/crusherr"
	"crush/internal/lang"
)

// let declares each named argument as a new binding in ctx.Scope, the
// target of `x := 1` lowering. Every argument must be named before any
// of them are declared, so a partially-named call declares nothing
// rather than half of its arguments.
func let(ctx *lang.ExecutionContext) error {
	if err := requireAllNamed(ctx.Arguments); err != nil {
		return err
	}
	for _, arg := range ctx.Arguments {
		if err := ctx.Scope.Declare(arg.Name, arg.Value); err != nil {
			return err
		}
	}
	return nil
}

// set updates each named argument's existing binding, the target of
// `x = 1` lowering.
func set(ctx *lang.ExecutionContext) error {
	if err := requireAllNamed(ctx.Arguments); err != nil {
		return err
	}
	for _, arg := range ctx.Arguments {
		if err := ctx.Scope.Set(arg.Name, arg.Value); err != nil {
			return err
		}
	}
	return nil
}

func requireAllNamed(args lang.Arguments) error {
	for _, arg := range args {
		if arg.Name == "" {
			return crusherr.Argumentf("missing variable name")
		}
	}
	return nil
}
