package builtin

import "crush/internal/lang"

// Register declares the operator command set directly into root, under
// the exact names internal/ast's lowering pass looks up (lang.OpAdd..
// lang.OpSet), referenced by the lowered IR by identity rather than by
// namespaced path. None of these commands read ctx.Input, so all are
// registered with canBlock=false.
func Register(root *lang.Scope) error {
	commands := []struct {
		name string
		fn   func(ctx *lang.ExecutionContext) error
	}{
		{lang.OpAdd, add},
		{lang.OpSub, sub},
		{lang.OpMul, mul},
		{lang.OpDiv, div},
		{lang.OpLt, lt},
		{lang.OpLte, lte},
		{lang.OpGt, gt},
		{lang.OpGte, gte},
		{lang.OpEq, eq},
		{lang.OpNeq, neq},
		{lang.OpNot, not},
		{lang.OpAnd, and},
		{lang.OpOr, or},
		{lang.OpLet, let},
		{lang.OpSet, set},
	}
	for _, c := range commands {
		cmd := lang.NewSimpleCommand(c.name, false, c.fn)
		if err := root.Declare(c.name, lang.CommandValue(cmd)); err != nil {
			return err
		}
	}
	return nil
}
