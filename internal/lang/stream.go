package lang

import (
	"context"
	"io"
)

// RowSource is the read side of the channel layer: a schema negotiated
// once, then an arbitrary number of rows terminated by io.EOF. Both
// Stream and TableStream values wrap one; internal/streamio's channel
// types are the concrete implementations, kept in a different package to
// avoid a lang -> streamio -> lang import cycle (streamio needs Schema
// and Row, which live here).
type RowSource interface {
	Types() (Schema, error)
	Read() (Row, error)
}

// RowSink is the two-phase write side: Initialize is called exactly once
// with the schema the stage will emit, and returns a RowSender for the
// rows themselves.
type RowSink interface {
	Initialize(schema Schema) (RowSender, error)
}

type RowSender interface {
	Send(row Row) error
	Close()
}

// ValueSink/ValueSource are the scalar counterpart used by commands that
// produce or consume a single Value rather than a row stream (add, let,
// val, and JobDefinition substitution capture).
type ValueSink interface {
	SendValue(v Value) error
}

type ValueSource interface {
	RecvValue(ctx context.Context) (Value, error)
}

// Output is what an ExecutionContext hands a Command to produce results
// with: a command picks exactly one of Initialize (row-stream output) or
// SendValue (scalar output), never both.
type Output interface {
	RowSink
	ValueSink
}

// Input is the read side an ExecutionContext may supply when a command is
// wired to an upstream stage's output.
type Input interface {
	RowSource
	ValueSource
}

// Stream is a nested, embedded stream value — e.g. the "group" column the
// group command emits for each key. It is read-once, like a Go channel.
type Stream struct {
	src RowSource
}

func NewStream(src RowSource) *Stream { return &Stream{src: src} }

func (s *Stream) Schema() Schema {
	sc, err := s.src.Types()
	if err != nil {
		return nil
	}
	return sc
}

func (s *Stream) Read() (Row, error) { return s.src.Read() }

// TableStream is the KindTableStream Value payload: a read-once table
// whose rows come from a RowSource on demand.
type TableStream struct {
	src RowSource
}

func NewTableStream(src RowSource) *TableStream { return &TableStream{src: src} }

func (t *TableStream) Schema() Schema {
	sc, err := t.src.Types()
	if err != nil {
		return nil
	}
	return sc
}

func (t *TableStream) Read() (Row, error) { return t.src.Read() }

// Materialize drains a TableStream fully into a Table.
func (t *TableStream) Materialize() (*Table, error) {
	tbl := NewTable(t.Schema())
	for {
		row, err := t.src.Read()
		if err != nil {
			if err == io.EOF {
				return tbl, nil
			}
			return nil, err
		}
		tbl.Append(row)
	}
}
