// Package frontend is crush's single compile entry point: source text in,
// a resolved-ready lang.JobList out, picking between the two front ends
// internal/parser and internal/ast.
package frontend

import (
	"crush/internal/ast"
	"crush/internal/lang"
	"crush/internal/parser"
)

// Compile tries the flat grammar first since it is a strict subset of
// legal command lines (no operators, no assignment forms); if it fails,
// the input is retried against the operator-precedence AST grammar
// (which additionally understands `:=`, `=`, infix operators, and `!`).
// Whichever succeeds wins; if both fail, the flat grammar's error is
// returned since plain command syntax is the common case and its error
// message names the offending token most directly.
func Compile(input string) (lang.JobList, error) {
	if jl, err := parser.New(input).Parse(); err == nil {
		return jl, nil
	} else {
		flatErr := err
		astJobList, astErr := ast.NewParser(input).Parse()
		if astErr != nil {
			return lang.JobList{}, flatErr
		}
		lowered, lowerErr := astJobList.Lower()
		if lowerErr != nil {
			return lang.JobList{}, lowerErr
		}
		return lowered, nil
	}
}
