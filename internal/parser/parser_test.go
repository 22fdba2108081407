package parser

import (
	"testing"

	"crush/internal/lang"
)

func TestParseSimpleCommand(t *testing.T) {
	jl, err := New("echo hello").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(jl.Jobs) != 1 || len(jl.Jobs[0].Calls) != 1 {
		t.Fatalf("expected one job with one call, got %+v", jl)
	}
	call := jl.Jobs[0].Calls[0]
	if call.Command.Kind != lang.VDLookup || call.Command.Name != "echo" {
		t.Fatalf("expected lookup 'echo', got %+v", call.Command)
	}
	if len(call.Arguments) != 1 {
		t.Fatalf("expected one argument, got %+v", call.Arguments)
	}
	arg := call.Arguments[0].Value
	if arg.Kind != lang.VDValue {
		t.Fatalf("expected literal value argument, got %+v", arg)
	}
	s, ok := arg.Value.Text()
	if !ok || s != "hello" {
		t.Fatalf("expected text 'hello', got %+v", arg.Value)
	}
}

func TestParseNamedArgument(t *testing.T) {
	jl, err := New("http url=example.com method=GET").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	args := jl.Jobs[0].Calls[0].Arguments
	if len(args) != 2 || args[0].Name != "url" || args[1].Name != "method" {
		t.Fatalf("expected named arguments url/method, got %+v", args)
	}
}

func TestParsePipeline(t *testing.T) {
	jl, err := New("ls | count").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	calls := jl.Jobs[0].Calls
	if len(calls) != 2 || calls[0].Command.Name != "ls" || calls[1].Command.Name != "count" {
		t.Fatalf("expected ls | count pipeline, got %+v", calls)
	}
}

func TestParseFieldAndVariable(t *testing.T) {
	jl, err := New("echo %size $x").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	args := jl.Jobs[0].Calls[0].Arguments
	if args[0].Value.Kind != lang.VDField {
		t.Fatalf("expected field argument, got %+v", args[0].Value)
	}
	if args[1].Value.Kind != lang.VDLookup || args[1].Value.Name != "x" {
		t.Fatalf("expected variable lookup 'x', got %+v", args[1].Value)
	}
}

func TestParseSubscript(t *testing.T) {
	jl, err := New("echo $row[0]").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	arg := jl.Jobs[0].Calls[0].Arguments[0].Value
	if arg.Kind != lang.VDGet {
		t.Fatalf("expected subscript get, got %+v", arg)
	}
	if arg.Base.Kind != lang.VDLookup || arg.Base.Name != "row" {
		t.Fatalf("expected base lookup 'row', got %+v", arg.Base)
	}
}

func TestParseClosureSigil(t *testing.T) {
	jl, err := New("echo `{ ls }").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	arg := jl.Jobs[0].Calls[0].Arguments[0].Value
	if arg.Kind != lang.VDClosureDefinition {
		t.Fatalf("expected closure definition, got %+v", arg)
	}
}

func TestParseMultipleJobsSeparatedByNewline(t *testing.T) {
	jl, err := New("echo a\necho b").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(jl.Jobs) != 2 {
		t.Fatalf("expected two jobs, got %d", len(jl.Jobs))
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := New("echo a }").Parse()
	if err == nil {
		t.Fatalf("expected a parse error for stray '}'")
	}
}
