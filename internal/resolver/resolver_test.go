package resolver

import (
	"context"
	"testing"

	"crush/internal/lang"
)

type stubRunner struct {
	value lang.Value
	table *lang.Table
}

func (s *stubRunner) RunJob(ctx context.Context, jobs lang.JobList, scope *lang.Scope) (lang.Value, error) {
	return s.value, nil
}

func (s *stubRunner) RunJobMaterialized(ctx context.Context, jobs lang.JobList, scope *lang.Scope) (*lang.Table, error) {
	return s.table, nil
}

func TestResolveLiteralValue(t *testing.T) {
	r := New(nil)
	v, err := r.Resolve(context.Background(), lang.ValueDef(lang.Text("hi")), lang.NewRootScope())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s, ok := v.Text(); !ok || s != "hi" {
		t.Fatalf("expected 'hi', got %+v", v)
	}
}

func TestResolveLookupMissing(t *testing.T) {
	r := New(nil)
	_, err := r.Resolve(context.Background(), lang.LookupDef("nope"), lang.NewRootScope())
	if err == nil {
		t.Fatalf("expected name error for missing lookup")
	}
}

func TestResolveLookupFound(t *testing.T) {
	r := New(nil)
	scope := lang.NewRootScope()
	scope.Declare("x", lang.IntegerFromInt64(42))
	v, err := r.Resolve(context.Background(), lang.LookupDef("x"), scope)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	n, ok := v.Integer()
	if !ok || n.Int64() != 42 {
		t.Fatalf("expected 42, got %+v", v)
	}
}

func TestResolvePathIntoNamespace(t *testing.T) {
	r := New(nil)
	root := lang.NewRootScope()
	varNs := root.CreateNamespace("var")
	varNs.Declare("let", lang.Text("let-builtin"))

	v, err := r.Resolve(context.Background(), lang.PathDef([]string{"var", "let"}), root)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	s, ok := v.Text()
	if !ok || s != "let-builtin" {
		t.Fatalf("expected 'let-builtin', got %+v", v)
	}
}

func TestResolveGetTableRowByIndex(t *testing.T) {
	r := New(nil)
	schema := lang.Schema{{Name: "n"}}
	tbl := lang.NewTable(schema)
	tbl.Append(lang.Row{lang.IntegerFromInt64(7)})
	scope := lang.NewRootScope()
	scope.Declare("t", lang.TableValue(tbl))

	base := lang.LookupDef("t")
	index := lang.ValueDef(lang.IntegerFromInt64(0))
	v, err := r.Resolve(context.Background(), lang.GetDef(&base, &index), scope)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	items, ok := v.List()
	if !ok || len(items) != 1 {
		t.Fatalf("expected a one-element row list, got %+v", v)
	}
}

func TestResolveGetTableColumnByName(t *testing.T) {
	r := New(nil)
	schema := lang.Schema{{Name: "n"}}
	tbl := lang.NewTable(schema)
	tbl.Append(lang.Row{lang.IntegerFromInt64(1)})
	tbl.Append(lang.Row{lang.IntegerFromInt64(2)})
	scope := lang.NewRootScope()
	scope.Declare("t", lang.TableValue(tbl))

	base := lang.LookupDef("t")
	index := lang.ValueDef(lang.Text("n"))
	v, err := r.Resolve(context.Background(), lang.GetDef(&base, &index), scope)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	items, ok := v.List()
	if !ok || len(items) != 2 {
		t.Fatalf("expected a 2-element column list, got %+v", v)
	}
}

func TestResolveJobDefinitionUsesRunner(t *testing.T) {
	r := New(&stubRunner{value: lang.IntegerFromInt64(99)})
	v, err := r.Resolve(context.Background(), lang.JobDefinitionDef(lang.JobList{}), lang.NewRootScope())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	n, ok := v.Integer()
	if !ok || n.Int64() != 99 {
		t.Fatalf("expected 99 from the job runner, got %+v", v)
	}
}

func TestResolveJobDefinitionWithoutRunnerErrors(t *testing.T) {
	r := New(nil)
	_, err := r.Resolve(context.Background(), lang.JobDefinitionDef(lang.JobList{}), lang.NewRootScope())
	if err == nil {
		t.Fatalf("expected internal error for missing job runner")
	}
}

func TestResolveClosureDefinitionCapturesScope(t *testing.T) {
	r := New(nil)
	scope := lang.NewRootScope()
	v, err := r.Resolve(context.Background(), lang.ClosureDefinitionDef(lang.JobList{}), scope)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	cmd, ok := v.Command()
	if !ok {
		t.Fatalf("expected a command value, got %+v", v)
	}
	closure, ok := cmd.(*lang.Closure)
	if !ok || closure.Scope != scope {
		t.Fatalf("expected closure to capture the defining scope")
	}
}

func TestResolveDuration(t *testing.T) {
	r := New(nil)
	elems := []lang.ValueDefinition{
		lang.ValueDef(lang.IntegerFromInt64(2)),
		lang.ValueDef(lang.Text("h")),
		lang.ValueDef(lang.IntegerFromInt64(30)),
		lang.ValueDef(lang.Text("m")),
	}
	v, err := r.Resolve(context.Background(), lang.DurationDef(elems), lang.NewRootScope())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	d, ok := v.Duration()
	if !ok || d.String() != "2h30m0s" {
		t.Fatalf("expected 2h30m0s, got %+v", v)
	}
}

func TestResolveList(t *testing.T) {
	r := New(nil)
	elems := []lang.ValueDefinition{
		lang.ValueDef(lang.IntegerFromInt64(1)),
		lang.ValueDef(lang.IntegerFromInt64(2)),
	}
	v, err := r.Resolve(context.Background(), lang.ListDef(elems), lang.NewRootScope())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	items, ok := v.List()
	if !ok || len(items) != 2 {
		t.Fatalf("expected a 2-element list, got %+v", v)
	}
}

func TestResolveArguments(t *testing.T) {
	r := New(nil)
	scope := lang.NewRootScope()
	defs := []lang.ArgumentDefinition{
		{Name: "url", Value: lang.ValueDef(lang.Text("example.com"))},
		{Value: lang.ValueDef(lang.IntegerFromInt64(5))},
	}
	args, err := r.ResolveArguments(context.Background(), defs, scope)
	if err != nil {
		t.Fatalf("resolve arguments: %v", err)
	}
	if v, ok := args.Named("url"); !ok {
		t.Fatalf("expected named 'url' argument")
	} else if s, _ := v.Text(); s != "example.com" {
		t.Fatalf("expected 'example.com', got %+v", v)
	}
	if pos := args.Positional(); len(pos) != 1 {
		t.Fatalf("expected one positional argument, got %+v", pos)
	}
}
