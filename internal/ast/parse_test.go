package ast

import (
	"testing"

	"crush/internal/lang"
)

func mustParse(t *testing.T, src string) *JobList {
	t.Helper()
	jl, err := NewParser(src).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return jl
}

func TestParseSimpleCommand(t *testing.T) {
	jl := mustParse(t, "echo hello")
	if len(jl.Jobs) != 1 || len(jl.Jobs[0].Commands) != 1 {
		t.Fatalf("expected one job with one command, got %+v", jl)
	}
	cmd := jl.Jobs[0].Commands[0]
	if cmd.Head.Kind != AssignNone || cmd.Head.Passthrough.Item.Label != "echo" {
		t.Fatalf("expected head label 'echo', got %+v", cmd.Head)
	}
	if len(cmd.Arguments) != 1 || cmd.Arguments[0].Value.Item.Text != "hello" {
		t.Fatalf("expected one text argument 'hello', got %+v", cmd.Arguments)
	}
}

// End-to-end scenario 1: arithmetic inside an argument must precedence-climb
// independently of the command name.
func TestParseArithmeticArgument(t *testing.T) {
	jl := mustParse(t, "echo 1 + 2 * 3")
	cmd := jl.Jobs[0].Commands[0]
	if cmd.Head.Passthrough.Item.Label != "echo" {
		t.Fatalf("expected head 'echo', got %+v", cmd.Head)
	}
	if len(cmd.Arguments) != 1 {
		t.Fatalf("expected exactly one argument, got %d", len(cmd.Arguments))
	}
	arg := cmd.Arguments[0].Value
	if arg.Kind != ExprBinary || arg.Op != lang.OpAdd {
		t.Fatalf("expected top-level add, got %+v", arg)
	}
	if arg.Left.Item.Integer == nil {
		t.Fatalf("expected left operand to be an integer literal")
	}
	right := arg.Right
	if right.Kind != ExprBinary || right.Op != lang.OpMul {
		t.Fatalf("expected right operand to be a multiply, got %+v", right)
	}
}

func TestParseDeclareAndSet(t *testing.T) {
	jl := mustParse(t, "x := 5\nx = 6")
	if len(jl.Jobs) != 2 {
		t.Fatalf("expected two jobs, got %d", len(jl.Jobs))
	}
	declare := jl.Jobs[0].Commands[0].Head
	if declare.Kind != AssignDeclare || declare.LHS.Label != "x" {
		t.Fatalf("expected declare of x, got %+v", declare)
	}
	set := jl.Jobs[1].Commands[0].Head
	if set.Kind != AssignSet || set.LHS.Label != "x" {
		t.Fatalf("expected set of x, got %+v", set)
	}
}

func TestParsePipeline(t *testing.T) {
	jl := mustParse(t, "ls | where %size > 10")
	job := jl.Jobs[0]
	if len(job.Commands) != 2 {
		t.Fatalf("expected two piped commands, got %d", len(job.Commands))
	}
	if job.Commands[0].Head.Passthrough.Item.Label != "ls" {
		t.Fatalf("expected first command 'ls', got %+v", job.Commands[0])
	}
	if job.Commands[1].Head.Passthrough.Item.Label != "where" {
		t.Fatalf("expected second command 'where', got %+v", job.Commands[1])
	}
}

func TestParseNamedArgument(t *testing.T) {
	jl := mustParse(t, "http url=example.com")
	args := jl.Jobs[0].Commands[0].Arguments
	if len(args) != 1 || args[0].Name != "url" {
		t.Fatalf("expected named argument 'url', got %+v", args)
	}
}

func TestParseSubscript(t *testing.T) {
	jl := mustParse(t, "echo $row[0]")
	arg := jl.Jobs[0].Commands[0].Arguments[0].Value
	item := arg.Item
	if item.Kind != ItemGet {
		t.Fatalf("expected ItemGet, got %+v", item)
	}
	if item.Base.Kind != ItemVariable || item.Base.Path[0] != "row" {
		t.Fatalf("expected base variable 'row', got %+v", item.Base)
	}
}

func TestParseSubstitution(t *testing.T) {
	jl := mustParse(t, "echo { ls }")
	arg := jl.Jobs[0].Commands[0].Arguments[0].Value
	if arg.Item.Kind != ItemSubstitution {
		t.Fatalf("expected substitution item, got %+v", arg.Item)
	}
	if len(arg.Item.Jobs.Jobs) != 1 {
		t.Fatalf("expected one nested job, got %+v", arg.Item.Jobs)
	}
}

func TestLowerArithmeticArgumentIsNestedJob(t *testing.T) {
	jl := mustParse(t, "echo 1 + 2 * 3")
	lowered, err := jl.Lower()
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	call := lowered.Jobs[0].Calls[0]
	if call.Command.Kind != lang.VDLookup || call.Command.Name != "echo" {
		t.Fatalf("expected command lookup 'echo', got %+v", call.Command)
	}
	if len(call.Arguments) != 1 {
		t.Fatalf("expected one argument, got %d", len(call.Arguments))
	}
	argDef := call.Arguments[0].Value
	if argDef.Kind != lang.VDJobDefinition {
		t.Fatalf("expected the arithmetic argument to lower to a nested job definition, got %+v", argDef)
	}
	nested := argDef.Jobs.Jobs[0].Calls[0]
	if nested.Command.Name != lang.OpAdd {
		t.Fatalf("expected nested call to 'add', got %+v", nested.Command)
	}
}

func TestLowerDeclareRejectsNonLabelLHS(t *testing.T) {
	a := &Assignment{
		Kind: AssignDeclare,
		LHS:  &Item{Kind: ItemText, Text: "oops"},
		RHS:  &Expr{Kind: ExprItem, Item: &Item{Kind: ItemInteger, Integer: func() *lang.Value { v := lang.IntegerFromInt64(1); return &v }()}},
	}
	if _, err := a.generateAssignCall(); err == nil {
		t.Fatalf("expected error for non-label assignment lhs")
	}
}

func TestParseStrayArgumentsAfterOperator(t *testing.T) {
	jl := mustParse(t, "1 + 2 3")
	_, err := jl.Lower()
	if err == nil {
		t.Fatalf("expected stray-arguments error")
	}
}
