package builtin

import (
	"crush/internal/crusherr"
	"crush/internal/lang"
)

func boolOperands(ctx *lang.ExecutionContext) (bool, bool, error) {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return false, false, err
	}
	lb, ok := l.Bool()
	if !ok {
		return false, false, crusherr.Typef("expected a bool, got %s", l.Kind)
	}
	rb, ok := r.Bool()
	if !ok {
		return false, false, crusherr.Typef("expected a bool, got %s", r.Kind)
	}
	return lb, rb, nil
}

func and(ctx *lang.ExecutionContext) error {
	l, r, err := boolOperands(ctx)
	if err != nil {
		return err
	}
	return ctx.Output.SendValue(lang.Bool(l && r))
}

func or(ctx *lang.ExecutionContext) error {
	l, r, err := boolOperands(ctx)
	if err != nil {
		return err
	}
	return ctx.Output.SendValue(lang.Bool(l || r))
}
