// Package ast implements crush's second, operator-precedence front end:
// JobList → Job → Command → Expression → Assignment → Logical →
// Comparison → Term → Factor → Unary → Item. Logical/Comparison/Term/
// Factor are all homogeneous left-associative binary-op chains
// that only differ in operator set, so a single tagged Expr type with
// an exhaustive switch over Op serves all four (Unary is the Negate
// flag on an Expr) without visitor dispatch, collapsing what would otherwise be several near-identical
// struct types into three (Item, Expr, Assignment) plus the
// JobList/Job/Command containers.
//
// Item additionally carries the remaining literal forms (Float, Glob,
// Regex, Field, Variable, List) and the three substitution/closure
// sigils (`{ }`, `materialized{ }`, `` `{ } ``) as additional primaries,
// rather than introducing separate sibling Substitution/Closure
// Expression variants — both shapes lower to the identical
// lang.ValueDefinition kinds (VDJobDefinition etc.), so nothing about
// the IR contract changes.
package ast

import "crush/internal/lang"

// ItemKind tags Item's variant.
type ItemKind int

const (
	ItemLabel ItemKind = iota // bare identifier naming a command or, at assignment lhs, a variable
	ItemText
	ItemInteger
	ItemFloat
	ItemGlob
	ItemRegex
	ItemField    // %a.b.c literal
	ItemVariable // $a.b.c lookup
	ItemList
	ItemSubstitution // { ... }
	ItemMaterialized // materialized{ ... }
	ItemClosure      // `{ ... }
	ItemDuration     // duration{ ... }
	ItemTime         // time{ ... }
	ItemGet          // item[index]
	ItemPath         // item.label
)

// Item is the leaf of the precedence chain.
type Item struct {
	Kind ItemKind

	Text     string
	Integer  *lang.Value // holds a pre-built Value{Kind:Integer} to reuse lang's big.Int handling
	Float    float64
	RegexSrc string
	Path     []string // Field, Variable
	Label    string    // ItemLabel, and ItemPath's field name

	Elements []Expr // ItemList, ItemDuration, ItemTime: each element is a full expression

	Jobs JobList // ItemSubstitution, ItemMaterialized, ItemClosure

	Base  *Item // ItemGet, ItemPath
	Index *Expr // ItemGet: any expression, so x[i+1] is legal
}

// ExprKind tags Expr's variant: either a passthrough to the next level
// down (a bare Item, after optional unary negation) or a left-associative
// binary operator application.
type ExprKind int

const (
	ExprItem ExprKind = iota
	ExprBinary
)

// Expr represents Logical, Comparison, Term, and Factor uniformly: each
// is "a left-associative chain of same-or-higher-precedence operators",
// differing only in which Op strings are legal at that level. Unary (the
// sole prefix operator, logical not) is folded in as the Negate flag on
// an ExprItem leaf, since `!` only ever applies to a single Item.
type Expr struct {
	Kind ExprKind

	// ExprBinary
	Op    string // one of lang.OpAdd, OpSub, OpMul, OpDiv, OpLt, OpLte, OpGt, OpGte, OpEq, OpNeq, OpAnd, OpOr
	Left  *Expr
	Right *Expr

	// ExprItem
	Negate bool
	Item   *Item
}

// AssignKind tags Assignment's variant.
type AssignKind int

const (
	AssignNone    AssignKind = iota // no assignment operator present; passthrough to Expr
	AssignSet                       // lhs = rhs, lowers to the `set` builtin
	AssignDeclare                    // lhs := rhs, lowers to the `let` builtin
)

// Assignment is the top of the expression chain.
type Assignment struct {
	Kind AssignKind

	LHS     *Item // required to be ItemLabel for AssignSet/AssignDeclare
	RHS     *Expr // AssignSet, AssignDeclare
	Passthrough *Expr // AssignNone
}

// Command is a command-name expression (parsed through the full
// Assignment precedence chain, so `x := 5` is a Command whose Head is the
// whole assignment and which takes no further Arguments) plus zero or
// more arguments, each itself parsed through the Logical-and-below chain
// so operators nest naturally inside an argument's value
// (`echo 1 + 2 * 3` is one Command with Head=Lookup("echo") and one
// Argument whose Value is the `1 + 2 * 3` Expr tree).
type Command struct {
	Head      *Assignment
	Arguments []Argument
}

// Argument is one parsed (optional name, value expression) pair.
type Argument struct {
	Name  string
	Value *Expr
}

// Job is a pipe-chained sequence of commands.
type Job struct {
	Commands []Command
}

// JobList is a sequence of jobs.
type JobList struct {
	Jobs []Job
}
