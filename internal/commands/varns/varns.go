// Package varns declares crush's var namespace: env, unset, use. It
// creates the "var" namespace and uses it into root the same way
// internal/commands/io does for "io" — let/set themselves live in
// internal/builtin since the AST lowering pass looks them up by bare
// name, not through this namespace.
package varns

import (
	"os"
	"sort"
	"strings"

	"crush/internal/crusherr"
	"crush/internal/lang"
)

// Register creates the "var" namespace, declares env/unset/use, and
// uses it from root.
func Register(root *lang.Scope) error {
	ns := root.CreateNamespace("var")
	commands := []struct {
		name     string
		canBlock bool
		fn       func(ctx *lang.ExecutionContext) error
	}{
		{"env", true, env},
		{"unset", false, unset},
		{"use", false, use},
	}
	for _, c := range commands {
		if err := ns.Declare(c.name, lang.CommandValue(lang.NewSimpleCommand(c.name, c.canBlock, c.fn))); err != nil {
			return err
		}
	}
	root.Use(ns)
	ns.Readonly()
	return nil
}

var envSchema = lang.Schema{
	{Name: "name", Type: lang.ValueType{Kind: lang.KindText}},
	{Name: "value", Type: lang.ValueType{Kind: lang.KindText}},
}

// env streams the process environment as a (name, value) table, sorted
// by name for deterministic output.
func env(ctx *lang.ExecutionContext) error {
	sender, err := ctx.Output.Initialize(envSchema)
	if err != nil {
		return err
	}
	defer sender.Close()
	entries := os.Environ()
	sort.Strings(entries)
	for _, kv := range entries {
		name, value, _ := strings.Cut(kv, "=")
		if err := sender.Send(lang.Row{lang.Text(name), lang.Text(value)}); err != nil {
			return err
		}
	}
	return nil
}

// unset removes a binding from the nearest scope that declares it, for
// each positional Text/Field argument; named arguments are ignored.
func unset(ctx *lang.ExecutionContext) error {
	args := ctx.Arguments.Positional()
	if len(args) == 0 {
		return crusherr.Argumentf("unset expects at least one variable name")
	}
	for _, arg := range args {
		name, ok := argName(arg)
		if !ok {
			return crusherr.Typef("unset expects a text or field argument, got %s", arg.Kind)
		}
		if err := ctx.Scope.Unset(name); err != nil {
			return err
		}
	}
	return nil
}

// use merges a namespace value's bindings into the current scope's
// lookup chain: the command form of Scope.Use.
func use(ctx *lang.ExecutionContext) error {
	args := ctx.Arguments.Positional()
	if len(args) != 1 {
		return crusherr.Argumentf("use expects exactly one namespace argument, got %d", len(args))
	}
	ns, ok := args[0].ScopeRef()
	if !ok {
		return crusherr.Typef("use expects a scope/namespace value, got %s", args[0].Kind)
	}
	ctx.Scope.Use(ns)
	return nil
}

func argName(v lang.Value) (string, bool) {
	if s, ok := v.Text(); ok {
		return s, true
	}
	if f, ok := v.Field(); ok {
		return f.String(), true
	}
	return "", false
}
