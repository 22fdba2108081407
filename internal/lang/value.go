// Package lang holds the three mutually recursive pieces of crush's data
// model: Value, Scope and the intermediate representation (ValueDefinition,
// ArgumentDefinition, CallDefinition, Job, JobList). They cannot be split
// across packages without breaking Go's acyclic import rule — see
// DESIGN.md's "Package-boundary addendum".
package lang

import (
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"time"
)

// Kind tags the active variant of a Value, the way the original Rust
// implementation's Value enum discriminant does.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBool
	KindTime
	KindDuration
	KindGlob
	KindRegex
	KindField
	KindCommand
	KindTable
	KindTableStream
	KindStream
	KindBinaryStream
	KindEmpty
	// KindList holds a literal list of values (list{ ... }).
	KindList
	// KindScope holds a namespace scope as a first-class value — how
	// `var.let`, `io.echo` style dotted lookups find the namespace to
	// descend into (internal/resolver's VDPath handling).
	KindScope
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindDuration:
		return "duration"
	case KindGlob:
		return "glob"
	case KindRegex:
		return "regex"
	case KindField:
		return "field"
	case KindCommand:
		return "command"
	case KindTable:
		return "table"
	case KindTableStream:
		return "table_stream"
	case KindStream:
		return "stream"
	case KindBinaryStream:
		return "binary_stream"
	case KindEmpty:
		return "empty"
	case KindList:
		return "list"
	case KindScope:
		return "scope"
	default:
		return "unknown"
	}
}

// ValueType describes a Value's shape without carrying data, used in
// Column and in schema negotiation. Stream and TableStream carry a nested
// Schema describing the rows that flow through them.
type ValueType struct {
	Kind   Kind
	Stream Schema
}

func (t ValueType) String() string {
	if t.Kind == KindStream || t.Kind == KindTableStream {
		return fmt.Sprintf("%s<%s>", t.Kind, t.Stream)
	}
	return t.Kind.String()
}

// Column names one field of a Schema. Name may be empty for a positional,
// unnamed column.
type Column struct {
	Name string
	Type ValueType
}

// Schema is an ordered list of columns, shared by Table, TableStream and
// Stream values alike.
type Schema []Column

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		if c.Name == "" {
			parts[i] = c.Type.String()
		} else {
			parts[i] = fmt.Sprintf("%s=%s", c.Name, c.Type)
		}
	}
	return fmt.Sprintf("%v", parts)
}

// IndexOf returns the position of the named column, if any.
func (s Schema) IndexOf(name string) (int, bool) {
	for i, c := range s {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Concat returns a new schema with other's columns appended, used by zip.
func (s Schema) Concat(other Schema) Schema {
	out := make(Schema, 0, len(s)+len(other))
	out = append(out, s...)
	out = append(out, other...)
	return out
}

// Row is one tuple of values flowing through a stream or stored in a
// Table, always conforming to some Schema.
type Row []Value

// Conforms reports whether r has the same arity and, column by column,
// the same kinds as the schema describes. It does not attempt to
// special-case Empty-for-anything; internal/streamio's senders check
// every row they send with it.
func (r Row) Conforms(s Schema) bool {
	if len(r) != len(s) {
		return false
	}
	for i, v := range r {
		if v.Kind != s[i].Type.Kind {
			return false
		}
	}
	return true
}

func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Table is a fully materialized set of rows with a fixed schema.
type Table struct {
	Schema Schema
	Rows   []Row
}

func NewTable(schema Schema) *Table {
	return &Table{Schema: schema}
}

func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Field is a dotted path such as a.b.c used both as a literal value (a
// bare word with no value in scope) and as the lhs shape accepted — and
// rejected — by assignment lowering.
type Field []string

func (f Field) String() string {
	out := ""
	for i, s := range f {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// Value is crush's tagged union. Go has no sum types, so only the field
// matching Kind is meaningful; the rest are zero. A closed set of payload
// fields rather than an interface, since every Value needs to flow
// through the same channels and be stored in the same Row slices.
type Value struct {
	Kind Kind

	text     string
	integer  *big.Int
	float    float64
	boolean  bool
	time     time.Time
	duration time.Duration
	glob     string
	regex    *regexp.Regexp
	regexSrc string
	field    Field
	command  Command
	table    *Table
	tstream  *TableStream
	stream   *Stream
	bstream  BinaryReader
	list     []Value
	scope    *Scope
}

func Text(s string) Value         { return Value{Kind: KindText, text: s} }
func Integer(i *big.Int) Value    { return Value{Kind: KindInteger, integer: i} }
func IntegerFromInt64(i int64) Value {
	return Value{Kind: KindInteger, integer: big.NewInt(i)}
}
func Float(f float64) Value             { return Value{Kind: KindFloat, float: f} }
func Bool(b bool) Value                 { return Value{Kind: KindBool, boolean: b} }
func TimeValue(t time.Time) Value       { return Value{Kind: KindTime, time: t} }
func DurationValue(d time.Duration) Value { return Value{Kind: KindDuration, duration: d} }
func Glob(pattern string) Value         { return Value{Kind: KindGlob, glob: pattern} }
func Regex(src string, re *regexp.Regexp) Value {
	return Value{Kind: KindRegex, regex: re, regexSrc: src}
}
func FieldValue(f Field) Value          { return Value{Kind: KindField, field: f} }
func CommandValue(c Command) Value      { return Value{Kind: KindCommand, command: c} }
func TableValue(t *Table) Value         { return Value{Kind: KindTable, table: t} }
func TableStreamValue(ts *TableStream) Value { return Value{Kind: KindTableStream, tstream: ts} }
func StreamValue(s *Stream) Value       { return Value{Kind: KindStream, stream: s} }
func BinaryStreamValue(b BinaryReader) Value { return Value{Kind: KindBinaryStream, bstream: b} }
func List(items []Value) Value          { return Value{Kind: KindList, list: items} }
func ScopeValue(s *Scope) Value         { return Value{Kind: KindScope, scope: s} }

var Empty = Value{Kind: KindEmpty}

func (v Value) Text() (string, bool)       { return v.text, v.Kind == KindText }
func (v Value) Integer() (*big.Int, bool)  { return v.integer, v.Kind == KindInteger }
func (v Value) Float() (float64, bool)     { return v.float, v.Kind == KindFloat }
func (v Value) Bool() (bool, bool)         { return v.boolean, v.Kind == KindBool }
func (v Value) Time() (time.Time, bool)    { return v.time, v.Kind == KindTime }
func (v Value) Duration() (time.Duration, bool) { return v.duration, v.Kind == KindDuration }
func (v Value) Glob() (string, bool)       { return v.glob, v.Kind == KindGlob }
func (v Value) Regex() (*regexp.Regexp, string, bool) {
	return v.regex, v.regexSrc, v.Kind == KindRegex
}
func (v Value) Field() (Field, bool)       { return v.field, v.Kind == KindField }
func (v Value) Command() (Command, bool)   { return v.command, v.Kind == KindCommand }
func (v Value) Table() (*Table, bool)      { return v.table, v.Kind == KindTable }
func (v Value) TableStream() (*TableStream, bool) { return v.tstream, v.Kind == KindTableStream }
func (v Value) Stream() (*Stream, bool)    { return v.stream, v.Kind == KindStream }
func (v Value) BinaryStream() (BinaryReader, bool) { return v.bstream, v.Kind == KindBinaryStream }
func (v Value) List() ([]Value, bool)      { return v.list, v.Kind == KindList }
func (v Value) ScopeRef() (*Scope, bool)   { return v.scope, v.Kind == KindScope }

// Type returns the ValueType describing this value's shape.
func (v Value) Type() ValueType {
	switch v.Kind {
	case KindStream:
		return ValueType{Kind: KindStream, Stream: v.stream.Schema()}
	case KindTableStream:
		return ValueType{Kind: KindTableStream, Stream: v.tstream.Schema()}
	default:
		return ValueType{Kind: v.Kind}
	}
}

// Hashable reports whether this Value may be used as a group key or map
// key. Streams are excluded: they are single-consumer and cannot be
// replayed to compare equality.
func (v Value) Hashable() bool {
	switch v.Kind {
	case KindStream, KindTableStream, KindBinaryStream, KindList, KindScope:
		return false
	default:
		return true
	}
}

// HashKey returns a comparable Go value suitable for use as a Go map key,
// used by the group command to bucket rows by key value. Only called
// after Hashable reports true.
func (v Value) HashKey() any {
	switch v.Kind {
	case KindText:
		return "s:" + v.text
	case KindInteger:
		return "i:" + v.integer.String()
	case KindFloat:
		return v.float
	case KindBool:
		return v.boolean
	case KindTime:
		return v.time.UnixNano()
	case KindDuration:
		return v.duration
	case KindGlob:
		return "g:" + v.glob
	case KindRegex:
		return "r:" + v.regexSrc
	case KindField:
		return "f:" + v.field.String()
	case KindEmpty:
		return nil
	case KindCommand:
		return v.command
	case KindTable:
		return v.table
	default:
		return v
	}
}

// Equal compares two values of the same kind by their HashKey, used by
// the comparison operators (==, !=). Values of different kinds, and
// values that are not Hashable, are never equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	if !v.Hashable() || !other.Hashable() {
		return false
	}
	return v.HashKey() == other.HashKey()
}

// Less supports <, <=, >, >= for the ordered kinds; ok is false for kinds
// with no total order (commands, tables, streams, empty).
func (v Value) Less(other Value) (less bool, ok bool) {
	if v.Kind != other.Kind {
		return false, false
	}
	switch v.Kind {
	case KindText:
		return v.text < other.text, true
	case KindInteger:
		return v.integer.Cmp(other.integer) < 0, true
	case KindFloat:
		return v.float < other.float, true
	case KindBool:
		return !v.boolean && other.boolean, true
	case KindTime:
		return v.time.Before(other.time), true
	case KindDuration:
		return v.duration < other.duration, true
	case KindGlob:
		return v.glob < other.glob, true
	default:
		return false, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.text
	case KindInteger:
		return v.integer.String()
	case KindFloat:
		return fmt.Sprintf("%g", v.float)
	case KindBool:
		return fmt.Sprintf("%t", v.boolean)
	case KindTime:
		return v.time.Format(time.RFC3339)
	case KindDuration:
		return v.duration.String()
	case KindGlob:
		return v.glob
	case KindRegex:
		return v.regexSrc
	case KindField:
		return v.field.String()
	case KindCommand:
		return "<command>"
	case KindTable:
		return fmt.Sprintf("<table %d rows>", len(v.table.Rows))
	case KindTableStream:
		return "<table_stream>"
	case KindStream:
		return "<stream>"
	case KindBinaryStream:
		return "<binary_stream>"
	case KindEmpty:
		return ""
	case KindList:
		return fmt.Sprintf("<list %d items>", len(v.list))
	case KindScope:
		return v.scope.String()
	default:
		return "<?>"
	}
}

// BinaryReader is the minimal collaborator crush needs for io.ReadCloser
// like binary data (cat, http bodies): not every example in the pack
// reads binary streams the same way, so crush keeps its own small
// interface rather than committing to os.File or io.ReadCloser directly,
// which lets commands/io wrap either.
type BinaryReader interface {
	Read(p []byte) (n int, err error)
	Close() error
}

func sortedColumnNames(s Schema) []string {
	names := make([]string, 0, len(s))
	for _, c := range s {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}
