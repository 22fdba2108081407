package lang

import "fmt"

// This file is crush's intermediate representation: the cacheable,
// re-executable tree that both front ends (internal/parser's flat
// grammar, internal/ast's operator-precedence grammar) lower into.

// ValueDefinitionKind tags the active variant of a ValueDefinition, the
// unresolved counterpart of Value.Kind.
type ValueDefinitionKind int

const (
	// VDValue holds an already-known literal Value (text, integer,
	// float, bool, glob, regex, time, duration).
	VDValue ValueDefinitionKind = iota
	// VDLookup names a variable to resolve against the Scope at
	// execution time.
	VDLookup
	// VDPath is a dotted a.b.c lookup, resolved by descending through
	// namespace scopes one segment at a time.
	VDPath
	// VDGet is base[index]: resolve base, resolve index, then index
	// into it (integer into a table's rows or a list, text into a
	// table's columns or a namespace's members).
	VDGet
	// VDJobDefinition is `{ ... }`: run the job list, capture the
	// single Value it produces.
	VDJobDefinition
	// VDMaterializedJobDefinition is `materialized{ ... }`: run the job
	// list, materialize its TableStream output into a Table.
	VDMaterializedJobDefinition
	// VDClosureDefinition is `` `{ ... } ``: capture the job list and
	// the current scope without running it.
	VDClosureDefinition
	// VDField is a bare dotted name used literally as a Value{Kind:
	// KindField}, not looked up.
	VDField
	// VDList is `list{ ... }`: a literal list of nested value
	// definitions, resolved element-wise into a Value{Kind: KindList}.
	VDList
	// VDDuration is `duration{ ... }`: a numeral-plus-unit constructor.
	VDDuration
	// VDTime is `time{ ... }`: a date/time constructor.
	VDTime
)

// ValueDefinition is the unresolved, cacheable form of a Value.
type ValueDefinition struct {
	Kind ValueDefinitionKind

	Value Value    // VDValue
	Name  string   // VDLookup
	Path  []string // VDPath, VDField

	Base  *ValueDefinition // VDGet
	Index *ValueDefinition // VDGet

	Jobs JobList // VDJobDefinition, VDMaterializedJobDefinition, VDClosureDefinition

	Elements []ValueDefinition // VDList, VDDuration, VDTime
}

func ValueDef(v Value) ValueDefinition { return ValueDefinition{Kind: VDValue, Value: v} }
func LookupDef(name string) ValueDefinition { return ValueDefinition{Kind: VDLookup, Name: name} }
func PathDef(path []string) ValueDefinition { return ValueDefinition{Kind: VDPath, Path: path} }
func GetDef(base, index *ValueDefinition) ValueDefinition {
	return ValueDefinition{Kind: VDGet, Base: base, Index: index}
}
func JobDefinitionDef(jobs JobList) ValueDefinition {
	return ValueDefinition{Kind: VDJobDefinition, Jobs: jobs}
}
func MaterializedJobDefinitionDef(jobs JobList) ValueDefinition {
	return ValueDefinition{Kind: VDMaterializedJobDefinition, Jobs: jobs}
}
func ClosureDefinitionDef(jobs JobList) ValueDefinition {
	return ValueDefinition{Kind: VDClosureDefinition, Jobs: jobs}
}
func FieldDef(path []string) ValueDefinition { return ValueDefinition{Kind: VDField, Path: path} }
func ListDef(elements []ValueDefinition) ValueDefinition {
	return ValueDefinition{Kind: VDList, Elements: elements}
}
func DurationDef(elements []ValueDefinition) ValueDefinition {
	return ValueDefinition{Kind: VDDuration, Elements: elements}
}
func TimeDef(elements []ValueDefinition) ValueDefinition {
	return ValueDefinition{Kind: VDTime, Elements: elements}
}

// ArgumentDefinition is one unresolved (optional name, value definition)
// pair inside a CallDefinition's argument list.
type ArgumentDefinition struct {
	Name  string
	Value ValueDefinition
}

// CallDefinition is one pipeline stage: a command value definition (most
// often a VDLookup/VDPath naming a builtin or declared command) plus its
// unresolved arguments.
type CallDefinition struct {
	Command   ValueDefinition
	Arguments []ArgumentDefinition
}

func (c CallDefinition) String() string {
	return fmt.Sprintf("call(%v, %d args)", c.Command, len(c.Arguments))
}

// Job is a pipe-chained sequence of CallDefinitions: `a | b | c`.
type Job struct {
	Calls []CallDefinition
}

// JobList is a newline/semicolon-separated sequence of independent Jobs,
// the unit a whole script (or a `{ }`/closure body) compiles to.
type JobList struct {
	Jobs []Job
}

// Operator command names: the fixed set of builtin command names that
// infix/prefix operators lower to. Declared here so both internal/ast
// (lowering) and internal/builtin (the actual Command implementations
// registered into the root scope) share one set of names.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpMul = "mul"
	OpDiv = "div"
	OpLt  = "lt"
	OpLte = "lte"
	OpGt  = "gt"
	OpGte = "gte"
	OpEq  = "eq"
	OpNeq = "neq"
	OpNot = "not"
	OpAnd = "and"
	OpOr  = "or"
	OpLet = "let"
	OpSet = "set"
)
