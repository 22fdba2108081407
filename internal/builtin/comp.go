package builtin

import (
	"crush/internal/crusherr"
	"crush/internal/lang"
)

func lt(ctx *lang.ExecutionContext) error {
	return sendOrdered(ctx, func(less, eq bool) bool { return less })
}

func lte(ctx *lang.ExecutionContext) error {
	return sendOrdered(ctx, func(less, eq bool) bool { return less || eq })
}

func gt(ctx *lang.ExecutionContext) error {
	return sendOrdered(ctx, func(less, eq bool) bool { return !less && !eq })
}

func gte(ctx *lang.ExecutionContext) error {
	return sendOrdered(ctx, func(less, eq bool) bool { return !less })
}

// sendOrdered resolves the two operands and asks Value.Less for their
// relative order (falling back to Equal for kinds with no total order but
// a defined equality, e.g. regex or field), erroring only when neither
// applies.
func sendOrdered(ctx *lang.ExecutionContext, pick func(less, eq bool) bool) error {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	less, ok := l.Less(r)
	if !ok {
		if l.Kind != r.Kind || !l.Hashable() {
			return crusherr.Typef("%s has no total order", l.Kind)
		}
		return ctx.Output.SendValue(lang.Bool(pick(false, l.Equal(r))))
	}
	return ctx.Output.SendValue(lang.Bool(pick(less, !less && l.Equal(r))))
}

func eq(ctx *lang.ExecutionContext) error {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	return ctx.Output.SendValue(lang.Bool(l.Equal(r)))
}

func neq(ctx *lang.ExecutionContext) error {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	return ctx.Output.SendValue(lang.Bool(!l.Equal(r)))
}

func not(ctx *lang.ExecutionContext) error {
	args := ctx.Arguments.Positional()
	if len(args) != 1 {
		return crusherr.Argumentf("expected one argument, got %d", len(args))
	}
	b, ok := args[0].Bool()
	if !ok {
		return crusherr.Typef("expected a bool, got %s", args[0].Kind)
	}
	return ctx.Output.SendValue(lang.Bool(!b))
}
