// Package lexer scans crush source text into the token stream
// internal/parser's flat recursive-descent grammar consumes: a
// hand-rolled scanner with peek/pop access and line/column tracking.
package lexer

import "fmt"

type TokenType int

const (
	EOF TokenType = iota
	Error

	String       // bare word / command name
	QuotedString // "..."
	Integer      // 123, -5
	Float        // 1.5, -0.25
	Glob         // *.go, foo*
	Regex        // re"..."
	Field        // %a.b.c
	Variable     // $a.b.c

	Pipe      // |
	Separator // newline or ;
	Assign    // =
	Declare   // :=

	SubscriptStart // [
	SubscriptEnd   // ]
	ModeStart      // sigil+{  e.g. "{", "materialized{", "`{", "*{", "duration{", "time{", "list{"
	ModeEnd        // }

	LogicalAnd // &&
	LogicalOr  // ||
	LogicalNot // !

	Lt  // <
	Lte // <=
	Gt  // >
	Gte // >=
	Eq  // ==
	Neq // !=

	Plus  // +
	Minus // -
	Star  // *
	Slash // //

	Comma
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Error:
		return "Error"
	case String:
		return "String"
	case QuotedString:
		return "QuotedString"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Glob:
		return "Glob"
	case Regex:
		return "Regex"
	case Field:
		return "Field"
	case Variable:
		return "Variable"
	case Pipe:
		return "Pipe"
	case Separator:
		return "Separator"
	case Assign:
		return "Assign"
	case Declare:
		return "Declare"
	case SubscriptStart:
		return "SubscriptStart"
	case SubscriptEnd:
		return "SubscriptEnd"
	case ModeStart:
		return "ModeStart"
	case ModeEnd:
		return "ModeEnd"
	case LogicalAnd:
		return "LogicalAnd"
	case LogicalOr:
		return "LogicalOr"
	case LogicalNot:
		return "LogicalNot"
	case Lt:
		return "Lt"
	case Lte:
		return "Lte"
	case Gt:
		return "Gt"
	case Gte:
		return "Gte"
	case Eq:
		return "Eq"
	case Neq:
		return "Neq"
	case Plus:
		return "Plus"
	case Minus:
		return "Minus"
	case Star:
		return "Star"
	case Slash:
		return "Slash"
	case Comma:
		return "Comma"
	default:
		return "?"
	}
}

// Token is one lexical unit plus its source position, 1-indexed the way
// most editors report positions.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Literal, t.Line, t.Column)
}

func IsComparisonOperator(t TokenType) bool {
	switch t {
	case Lt, Lte, Gt, Gte, Eq, Neq:
		return true
	default:
		return false
	}
}
