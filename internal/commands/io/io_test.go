package io

import (
	"bytes"
	"context"
	stdio "io"
	"testing"

	"crush/internal/lang"
)

type printerStub struct {
	printed []lang.Value
}

func (p *printerStub) Print(v lang.Value)       { p.printed = append(p.printed, v) }
func (p *printerStub) PrintTable(*lang.Table)    {}
func (p *printerStub) Errorf(string, ...any)     {}

type valueOutput struct {
	value  lang.Value
	schema lang.Schema
	rows   []lang.Row
}

func (o *valueOutput) Initialize(schema lang.Schema) (lang.RowSender, error) {
	o.schema = schema
	return &collectSender{out: o}, nil
}
func (o *valueOutput) SendValue(v lang.Value) error { o.value = v; return nil }

type collectSender struct{ out *valueOutput }

func (c *collectSender) Send(r lang.Row) error { c.out.rows = append(c.out.rows, r); return nil }
func (c *collectSender) Close()                {}

type readCloser struct{ *bytes.Reader }

func (readCloser) Close() error { return nil }

func TestRegisterMakesCommandsReachableUnqualified(t *testing.T) {
	root := lang.NewRootScope()
	if err := Register(root); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, name := range []string{"echo", "val", "cat", "lines", "csv", "json"} {
		if _, ok := root.Lookup(name); !ok {
			t.Fatalf("expected %q reachable from root", name)
		}
	}
}

func TestValSendsItsArgument(t *testing.T) {
	out := &valueOutput{}
	err := val(&lang.ExecutionContext{
		Arguments: lang.Arguments{{Value: lang.IntegerFromInt64(42)}},
		Output:    out,
	})
	if err != nil {
		t.Fatalf("val: %v", err)
	}
	n, ok := out.value.Integer()
	if !ok || n.Int64() != 42 {
		t.Fatalf("expected 42, got %+v", out.value)
	}
}

func TestEchoPrintsEveryArgument(t *testing.T) {
	p := &printerStub{}
	err := echo(&lang.ExecutionContext{
		Arguments: lang.Arguments{{Value: lang.Text("a")}, {Value: lang.Text("b")}},
		Printer:   p,
	})
	if err != nil {
		t.Fatalf("echo: %v", err)
	}
	if len(p.printed) != 2 {
		t.Fatalf("expected 2 prints, got %d", len(p.printed))
	}
}

func TestLinesSplitsBinaryStream(t *testing.T) {
	r := readCloser{bytes.NewReader([]byte("a\nb\nc\n"))}
	out := &valueOutput{}
	err := lines(&lang.ExecutionContext{
		Arguments: lang.Arguments{{Value: lang.BinaryStreamValue(r)}},
		Output:    out,
	})
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(out.rows) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(out.rows))
	}
	if s, _ := out.rows[0][0].Text(); s != "a" {
		t.Fatalf("expected first line 'a', got %q", s)
	}
}

func TestCsvParsesHeaderAndRows(t *testing.T) {
	r := readCloser{bytes.NewReader([]byte("name,age\nalice,30\nbob,40\n"))}
	out := &valueOutput{}
	err := csvCmd(&lang.ExecutionContext{
		Arguments: lang.Arguments{{Value: lang.BinaryStreamValue(r)}},
		Output:    out,
	})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(out.schema) != 2 || out.schema[0].Name != "name" || out.schema[1].Name != "age" {
		t.Fatalf("unexpected schema: %+v", out.schema)
	}
	if len(out.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out.rows))
	}
}

func TestJSONDecodesArrayOfObjects(t *testing.T) {
	r := readCloser{bytes.NewReader([]byte(`[{"a":1,"b":"x"},{"a":2,"b":"y"}]`))}
	out := &valueOutput{}
	err := jsonCmd(&lang.ExecutionContext{
		Arguments: lang.Arguments{{Value: lang.BinaryStreamValue(r)}},
		Output:    out,
	})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.schema) != 2 || out.schema[0].Name != "a" || out.schema[1].Name != "b" {
		t.Fatalf("unexpected schema: %+v", out.schema)
	}
	if len(out.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out.rows))
	}
}

func TestBinarySourceFallsBackToInput(t *testing.T) {
	r := readCloser{bytes.NewReader([]byte("x\n"))}
	out := &valueOutput{}
	err := lines(&lang.ExecutionContext{
		Input:  stubInput{value: lang.BinaryStreamValue(r)},
		Output: out,
	})
	if err != nil {
		t.Fatalf("lines via piped input: %v", err)
	}
	if len(out.rows) != 1 {
		t.Fatalf("expected 1 line, got %d", len(out.rows))
	}
}

type stubInput struct{ value lang.Value }

func (stubInput) Types() (lang.Schema, error) { return nil, nil }
func (stubInput) Read() (lang.Row, error)     { return nil, stdio.EOF }
func (s stubInput) RecvValue(ctx context.Context) (lang.Value, error) {
	return s.value, nil
}
