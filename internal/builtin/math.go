// Package builtin holds the operator commands internal/ast's lowering
// pass wires calls to directly (add, sub, mul, div, lt, lte, gt, gte, eq,
// neq, not, and, or, let, set).
package builtin

import (
	"math/big"

	"crush/internal/crusherr"
	"crush/internal/lang"
)

// binaryOperands fetches the two positional arguments every arithmetic
// and comparison operator expects (the AST lowering pass always emits
// exactly two unnamed arguments for a binary operator call).
func binaryOperands(ctx *lang.ExecutionContext) (lang.Value, lang.Value, error) {
	args := ctx.Arguments.Positional()
	if len(args) != 2 {
		return lang.Value{}, lang.Value{}, crusherr.Argumentf("expected two arguments, got %d", len(args))
	}
	return args[0], args[1], nil
}

func add(ctx *lang.ExecutionContext) error {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	switch {
	case l.Kind == lang.KindInteger && r.Kind == lang.KindInteger:
		li, _ := l.Integer()
		ri, _ := r.Integer()
		return ctx.Output.SendValue(lang.Integer(new(big.Int).Add(li, ri)))
	case l.Kind == lang.KindFloat && r.Kind == lang.KindFloat:
		lf, _ := l.Float()
		rf, _ := r.Float()
		return ctx.Output.SendValue(lang.Float(lf + rf))
	case l.Kind == lang.KindText && r.Kind == lang.KindText:
		lt, _ := l.Text()
		rt, _ := r.Text()
		return ctx.Output.SendValue(lang.Text(lt + rt))
	case l.Kind == lang.KindDuration && r.Kind == lang.KindDuration:
		ld, _ := l.Duration()
		rd, _ := r.Duration()
		return ctx.Output.SendValue(lang.DurationValue(ld + rd))
	default:
		return crusherr.Typef("cannot add %s and %s", l.Kind, r.Kind)
	}
}

func sub(ctx *lang.ExecutionContext) error {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	switch {
	case l.Kind == lang.KindInteger && r.Kind == lang.KindInteger:
		li, _ := l.Integer()
		ri, _ := r.Integer()
		return ctx.Output.SendValue(lang.Integer(new(big.Int).Sub(li, ri)))
	case l.Kind == lang.KindFloat && r.Kind == lang.KindFloat:
		lf, _ := l.Float()
		rf, _ := r.Float()
		return ctx.Output.SendValue(lang.Float(lf - rf))
	case l.Kind == lang.KindDuration && r.Kind == lang.KindDuration:
		ld, _ := l.Duration()
		rd, _ := r.Duration()
		return ctx.Output.SendValue(lang.DurationValue(ld - rd))
	default:
		return crusherr.Typef("cannot subtract %s from %s", r.Kind, l.Kind)
	}
}

func mul(ctx *lang.ExecutionContext) error {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	switch {
	case l.Kind == lang.KindInteger && r.Kind == lang.KindInteger:
		li, _ := l.Integer()
		ri, _ := r.Integer()
		return ctx.Output.SendValue(lang.Integer(new(big.Int).Mul(li, ri)))
	case l.Kind == lang.KindFloat && r.Kind == lang.KindFloat:
		lf, _ := l.Float()
		rf, _ := r.Float()
		return ctx.Output.SendValue(lang.Float(lf * rf))
	default:
		return crusherr.Typef("cannot multiply %s and %s", l.Kind, r.Kind)
	}
}

func div(ctx *lang.ExecutionContext) error {
	l, r, err := binaryOperands(ctx)
	if err != nil {
		return err
	}
	switch {
	case l.Kind == lang.KindInteger && r.Kind == lang.KindInteger:
		li, _ := l.Integer()
		ri, _ := r.Integer()
		if ri.Sign() == 0 {
			return crusherr.Argumentf("division by zero")
		}
		return ctx.Output.SendValue(lang.Integer(new(big.Int).Quo(li, ri)))
	case l.Kind == lang.KindFloat && r.Kind == lang.KindFloat:
		lf, _ := l.Float()
		rf, _ := r.Float()
		if rf == 0 {
			return crusherr.Argumentf("division by zero")
		}
		return ctx.Output.SendValue(lang.Float(lf / rf))
	default:
		return crusherr.Typef("cannot divide %s by %s", l.Kind, r.Kind)
	}
}
