package frontend

import (
	"testing"

	"crush/internal/lang"
)

func TestCompilePrefersFlatGrammarForPlainCommands(t *testing.T) {
	jl, err := Compile("echo hello")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(jl.Jobs) != 1 || jl.Jobs[0].Calls[0].Command.Name != "echo" {
		t.Fatalf("expected one echo call, got %+v", jl)
	}
}

func TestCompileFallsBackToASTForAssignment(t *testing.T) {
	jl, err := Compile("x := 1 + 2")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	call := jl.Jobs[0].Calls[0]
	if call.Command.Kind != lang.VDLookup || call.Command.Name != lang.OpLet {
		t.Fatalf("expected a 'let' call, got %+v", call.Command)
	}
}

func TestCompileFallsBackToASTForArithmeticArgument(t *testing.T) {
	jl, err := Compile("echo 1 + 2")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	arg := jl.Jobs[0].Calls[0].Arguments[0].Value
	if arg.Kind != lang.VDJobDefinition {
		t.Fatalf("expected the arithmetic expression to lower to a nested job, got %+v", arg)
	}
}

func TestCompileRejectsGarbage(t *testing.T) {
	_, err := Compile("} } }")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}
