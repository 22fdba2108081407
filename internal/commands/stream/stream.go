// Package stream declares crush's group and zip operators: group fans a
// single input stream out into per-key unbounded sub-streams
// (internal/streamio.UnboundedRowChannel), emitting each new key's row
// immediately so downstream may start draining one bucket before the
// outer stream finishes; zip reads two readables in lockstep and
// concatenates their schemas.
package stream

import (
	"io"

	"crush/internal/crusherr"
	"crush/internal/lang"
	"crush/internal/streamio"
)

// Register declares group and zip directly into root, unqualified (they
// carry no namespace of their own, unlike io/var).
func Register(root *lang.Scope) error {
	if err := root.Declare("group", lang.CommandValue(lang.NewSimpleCommand("group", true, group))); err != nil {
		return err
	}
	if err := root.Declare("zip", lang.CommandValue(lang.NewSimpleCommand("zip", true, zip))); err != nil {
		return err
	}
	return nil
}

// keyColumn resolves the single key-column argument group expects:
// exactly one argument, whose optional name becomes the emitted stream
// column's name (default "group" when unnamed).
func keyColumn(schema lang.Schema, args lang.Arguments) (int, string, error) {
	if len(args) != 1 {
		return 0, "", crusherr.Argumentf("group expects exactly one key-column argument, got %d", len(args))
	}
	keyArg := args[0].Value
	name := "group"
	if args[0].Name != "" {
		name = args[0].Name
	}
	switch {
	case keyArg.Kind == lang.KindText:
		s, _ := keyArg.Text()
		idx, ok := schema.IndexOf(s)
		if !ok {
			return 0, "", crusherr.Namef("no such column %q", s)
		}
		return idx, name, nil
	case keyArg.Kind == lang.KindField:
		f, _ := keyArg.Field()
		idx, ok := schema.IndexOf(f.String())
		if !ok {
			return 0, "", crusherr.Namef("no such column %q", f.String())
		}
		return idx, name, nil
	default:
		return 0, "", crusherr.Typef("bad comparison key: %s", keyArg.Kind)
	}
}

// group reads ctx.Input to completion, bucketing rows by the selected
// key column into per-key UnboundedRowChannels, emitting (key, stream)
// immediately on each new key so a downstream stage may begin draining
// one bucket before the outer stream finishes. Closes every bucket on
// input EOF, signaling EOF to every sub-stream reader at once.
func group(ctx *lang.ExecutionContext) error {
	schema, err := ctx.Input.Types()
	if err != nil {
		return err
	}
	col, name, err := keyColumn(schema, ctx.Arguments)
	if err != nil {
		return err
	}

	outSchema := lang.Schema{
		schema[col],
		{Name: name, Type: lang.ValueType{Kind: lang.KindStream, Stream: schema}},
	}
	sender, err := ctx.Output.Initialize(outSchema)
	if err != nil {
		return err
	}
	defer sender.Close()

	buckets := make(map[any]*streamio.UnboundedRowChannel)
	order := make([]any, 0)
	for {
		row, rerr := ctx.Input.Read()
		if rerr != nil {
			break
		}
		key := row[col]
		if !key.Hashable() {
			return crusherr.Typef("group key column %q is not hashable", schema[col].Name)
		}
		hk := key.HashKey()
		bucket, ok := buckets[hk]
		if !ok {
			bucket = streamio.NewUnboundedRowChannel(schema)
			buckets[hk] = bucket
			order = append(order, hk)
			if err := sender.Send(lang.Row{key, lang.StreamValue(lang.NewStream(bucket))}); err != nil {
				return err
			}
		}
		if err := bucket.Send(row); err != nil {
			return err
		}
	}
	for _, hk := range order {
		buckets[hk].Close()
	}
	return nil
}

// tableReader adapts a materialized Table to lang.RowSource, the shape
// zip needs when one of its operands is a Table rather than a
// TableStream.
type tableReader struct {
	schema lang.Schema
	rows   []lang.Row
	idx    int
}

func (t *tableReader) Types() (lang.Schema, error) { return t.schema, nil }
func (t *tableReader) Read() (lang.Row, error) {
	if t.idx >= len(t.rows) {
		return nil, io.EOF
	}
	row := t.rows[t.idx]
	t.idx++
	return row, nil
}

// schemaReader adapts lang.Stream/TableStream's Schema()-named accessor
// (they predate RowSource and are used directly by commands that only
// need Read) to the Types()-named lang.RowSource method zip needs.
type schemaReader struct {
	schema lang.Schema
	src    interface{ Read() (lang.Row, error) }
}

func (r schemaReader) Types() (lang.Schema, error) { return r.schema, nil }
func (r schemaReader) Read() (lang.Row, error)     { return r.src.Read() }

func toRowSource(v lang.Value) (lang.RowSource, error) {
	switch v.Kind {
	case lang.KindTableStream:
		ts, _ := v.TableStream()
		return schemaReader{schema: ts.Schema(), src: ts}, nil
	case lang.KindStream:
		s, _ := v.Stream()
		return schemaReader{schema: s.Schema(), src: s}, nil
	case lang.KindTable:
		tbl, _ := v.Table()
		return &tableReader{schema: tbl.Schema, rows: tbl.Rows}, nil
	default:
		return nil, crusherr.Typef("expected a dataset, got %s", v.Kind)
	}
}

// zip reads two readables from its arguments in lockstep, terminating as
// soon as either side hits EOF (extra rows from the other are
// discarded), producing the schema concatenation of both sides.
func zip(ctx *lang.ExecutionContext) error {
	args := ctx.Arguments.Positional()
	if len(args) != 2 {
		return crusherr.Argumentf("zip expects exactly two arguments, got %d", len(args))
	}
	left, err := toRowSource(args[0])
	if err != nil {
		return err
	}
	right, err := toRowSource(args[1])
	if err != nil {
		return err
	}
	leftSchema, err := left.Types()
	if err != nil {
		return err
	}
	rightSchema, err := right.Types()
	if err != nil {
		return err
	}
	sender, err := ctx.Output.Initialize(leftSchema.Concat(rightSchema))
	if err != nil {
		return err
	}
	defer sender.Close()

	for {
		lrow, lerr := left.Read()
		rrow, rerr := right.Read()
		if lerr != nil || rerr != nil {
			return nil
		}
		row := make(lang.Row, 0, len(lrow)+len(rrow))
		row = append(row, lrow...)
		row = append(row, rrow...)
		if err := sender.Send(row); err != nil {
			return err
		}
	}
}
