package stream

import (
	"context"
	stdio "io"
	"testing"

	"crush/internal/lang"
)

var peopleSchema = lang.Schema{
	{Name: "name", Type: lang.ValueType{Kind: lang.KindText}},
	{Name: "team", Type: lang.ValueType{Kind: lang.KindText}},
}

type sliceInput struct {
	schema lang.Schema
	rows   []lang.Row
	idx    int
}

func (s *sliceInput) Types() (lang.Schema, error) { return s.schema, nil }
func (s *sliceInput) Read() (lang.Row, error) {
	if s.idx >= len(s.rows) {
		return nil, stdio.EOF
	}
	row := s.rows[s.idx]
	s.idx++
	return row, nil
}
func (s *sliceInput) RecvValue(ctx context.Context) (lang.Value, error) { return lang.Value{}, stdio.EOF }

type captureRowOutput struct {
	schema lang.Schema
	rows   []lang.Row
}

func (o *captureRowOutput) Initialize(schema lang.Schema) (lang.RowSender, error) {
	o.schema = schema
	return &capSender{o}, nil
}
func (o *captureRowOutput) SendValue(lang.Value) error { return nil }

type capSender struct{ out *captureRowOutput }

func (c *capSender) Send(r lang.Row) error { c.out.rows = append(c.out.rows, r); return nil }
func (c *capSender) Close()                {}

func TestRegisterDeclaresGroupAndZip(t *testing.T) {
	root := lang.NewRootScope()
	if err := Register(root); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, name := range []string{"group", "zip"} {
		if _, ok := root.Lookup(name); !ok {
			t.Fatalf("expected %q declared", name)
		}
	}
}

func TestGroupByColumnPreservesFirstSeenOrderAndSubStreamOrder(t *testing.T) {
	rows := []lang.Row{
		{lang.Text("a"), lang.Text("X")},
		{lang.Text("b"), lang.Text("Y")},
		{lang.Text("c"), lang.Text("X")},
		{lang.Text("d"), lang.Text("Y")},
		{lang.Text("e"), lang.Text("X")},
	}
	input := &sliceInput{schema: peopleSchema, rows: rows}
	out := &captureRowOutput{}
	ctx := &lang.ExecutionContext{
		Input:     input,
		Output:    out,
		Arguments: lang.Arguments{{Value: lang.Text("team")}},
	}
	if err := group(ctx); err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(out.rows) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(out.rows))
	}
	firstKey, _ := out.rows[0][0].Text()
	secondKey, _ := out.rows[1][0].Text()
	if firstKey != "X" || secondKey != "Y" {
		t.Fatalf("expected first-seen order X,Y; got %s,%s", firstKey, secondKey)
	}

	sub, _ := out.rows[0][1].Stream()
	var names []string
	for {
		row, err := sub.Read()
		if err != nil {
			break
		}
		n, _ := row[0].Text()
		names = append(names, n)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "c" || names[2] != "e" {
		t.Fatalf("expected [a c e] in input order, got %v", names)
	}
}

func TestGroupRejectsUnknownColumn(t *testing.T) {
	input := &sliceInput{schema: peopleSchema}
	ctx := &lang.ExecutionContext{
		Input:     input,
		Output:    &captureRowOutput{},
		Arguments: lang.Arguments{{Value: lang.Text("nope")}},
	}
	if err := group(ctx); err == nil {
		t.Fatalf("expected a name error for an unknown column")
	}
}

func TestZipConcatenatesSchemasAndTruncatesToShorter(t *testing.T) {
	left := &tableReader{
		schema: lang.Schema{{Name: "n", Type: lang.ValueType{Kind: lang.KindInteger}}},
		rows:   []lang.Row{{lang.IntegerFromInt64(1)}, {lang.IntegerFromInt64(2)}, {lang.IntegerFromInt64(3)}},
	}
	right := &tableReader{
		schema: lang.Schema{{Name: "s", Type: lang.ValueType{Kind: lang.KindText}}},
		rows: []lang.Row{
			{lang.Text("a")}, {lang.Text("b")}, {lang.Text("c")}, {lang.Text("d")}, {lang.Text("e")},
		},
	}
	out := &captureRowOutput{}
	ctx := &lang.ExecutionContext{
		Output: out,
		Arguments: lang.Arguments{
			{Value: lang.TableValue(&lang.Table{Schema: left.schema, Rows: left.rows})},
			{Value: lang.TableValue(&lang.Table{Schema: right.schema, Rows: right.rows})},
		},
	}
	if err := zip(ctx); err != nil {
		t.Fatalf("zip: %v", err)
	}
	if len(out.schema) != 2 {
		t.Fatalf("expected a 2-column schema, got %+v", out.schema)
	}
	if len(out.rows) != 3 {
		t.Fatalf("expected 3 rows (min length), got %d", len(out.rows))
	}
}

func TestZipRequiresExactlyTwoArguments(t *testing.T) {
	ctx := &lang.ExecutionContext{
		Output:    &captureRowOutput{},
		Arguments: lang.Arguments{{Value: lang.IntegerFromInt64(1)}},
	}
	if err := zip(ctx); err == nil {
		t.Fatalf("expected an argument error")
	}
}
