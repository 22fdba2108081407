// Package io declares crush's io namespace (echo, val, cat, lines, csv,
// json): external-collaborator commands grouped under a "io" namespace
// that is then merged back into root's own lookup chain, so
// `echo`/`val`/`cat` resolve unqualified even though they live in a
// namespace.
package io

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	stdio "io"
	"os"
	"sort"

	"crush/internal/crusherr"
	"crush/internal/lang"
)

// Register creates the "io" namespace, declares its commands, and uses
// it from root so the names are reachable unqualified.
func Register(root *lang.Scope) error {
	ns := root.CreateNamespace("io")
	commands := []struct {
		name     string
		canBlock bool
		fn       func(ctx *lang.ExecutionContext) error
	}{
		{"echo", false, echo},
		{"val", false, val},
		{"cat", true, cat},
		{"lines", true, lines},
		{"csv", true, csvCmd},
		{"json", true, jsonCmd},
	}
	for _, c := range commands {
		if err := ns.Declare(c.name, lang.CommandValue(lang.NewSimpleCommand(c.name, c.canBlock, c.fn))); err != nil {
			return err
		}
	}
	root.Use(ns)
	ns.Readonly()
	return nil
}

// echo prints every argument via the collaborating Printer.
func echo(ctx *lang.ExecutionContext) error {
	for _, arg := range ctx.Arguments {
		ctx.Printer.Print(arg.Value)
	}
	return nil
}

// val sends its single argument through as this stage's scalar output,
// the identity command used by `{ }` substitution and tests.
func val(ctx *lang.ExecutionContext) error {
	args := ctx.Arguments.Positional()
	if len(args) != 1 {
		return crusherr.Argumentf("val expects exactly one argument, got %d", len(args))
	}
	return ctx.Output.SendValue(args[0])
}

// multiFileReader concatenates a sequence of files end to end.
type multiFileReader struct {
	files []*os.File
	idx   int
}

func openFiles(paths []string) (*multiFileReader, error) {
	files := make([]*os.File, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			for _, open := range files {
				open.Close()
			}
			return nil, crusherr.IOf("opening %s: %v", p, err)
		}
		files = append(files, f)
	}
	return &multiFileReader{files: files}, nil
}

func (m *multiFileReader) Read(p []byte) (int, error) {
	for m.idx < len(m.files) {
		n, err := m.files[m.idx].Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil {
			m.idx++
			continue
		}
	}
	return 0, stdio.EOF
}

func (m *multiFileReader) Close() error {
	var first error
	for _, f := range m.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func cat(ctx *lang.ExecutionContext) error {
	paths := make([]string, 0, len(ctx.Arguments))
	for _, arg := range ctx.Arguments.Positional() {
		text, ok := arg.Text()
		if !ok {
			return crusherr.Typef("cat expects text path arguments, got %s", arg.Kind)
		}
		paths = append(paths, text)
	}
	if len(paths) == 0 {
		return crusherr.Argumentf("cat expects at least one path")
	}
	reader, err := openFiles(paths)
	if err != nil {
		return err
	}
	return ctx.Output.SendValue(lang.BinaryStreamValue(reader))
}

// binarySource resolves the BinaryReader a lines/csv/json call reads
// from: either an explicit argument or the upstream stage's scalar
// output, so `cat file | lines` and `lines { cat file }` both work.
func binarySource(ctx *lang.ExecutionContext) (lang.BinaryReader, error) {
	if args := ctx.Arguments.Positional(); len(args) > 0 {
		if b, ok := args[0].BinaryStream(); ok {
			return b, nil
		}
	}
	v, err := ctx.Input.RecvValue(ctx.Context)
	if err != nil {
		return nil, crusherr.Argumentf("expected a binary stream argument or piped input: %v", err)
	}
	b, ok := v.BinaryStream()
	if !ok {
		return nil, crusherr.Typef("expected a binary stream, got %s", v.Kind)
	}
	return b, nil
}

var textSchema = lang.Schema{{Name: "line", Type: lang.ValueType{Kind: lang.KindText}}}

func lines(ctx *lang.ExecutionContext) error {
	src, err := binarySource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()
	sender, err := ctx.Output.Initialize(textSchema)
	if err != nil {
		return err
	}
	defer sender.Close()
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		if err := sender.Send(lang.Row{lang.Text(scanner.Text())}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func csvCmd(ctx *lang.ExecutionContext) error {
	src, err := binarySource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()
	r := csv.NewReader(src)
	header, err := r.Read()
	if err != nil {
		return crusherr.IOf("reading csv header: %v", err)
	}
	schema := make(lang.Schema, len(header))
	for i, name := range header {
		schema[i] = lang.Column{Name: name, Type: lang.ValueType{Kind: lang.KindText}}
	}
	sender, err := ctx.Output.Initialize(schema)
	if err != nil {
		return err
	}
	defer sender.Close()
	for {
		record, err := r.Read()
		if err != nil {
			if err == stdio.EOF {
				return nil
			}
			return crusherr.IOf("reading csv row: %v", err)
		}
		row := make(lang.Row, len(record))
		for i, field := range record {
			row[i] = lang.Text(field)
		}
		if err := sender.Send(row); err != nil {
			return err
		}
	}
}

func jsonCmd(ctx *lang.ExecutionContext) error {
	src, err := binarySource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()
	var records []map[string]any
	if err := json.NewDecoder(src).Decode(&records); err != nil {
		return crusherr.IOf("decoding json: %v", err)
	}
	if len(records) == 0 {
		sender, err := ctx.Output.Initialize(lang.Schema{})
		if err != nil {
			return err
		}
		sender.Close()
		return nil
	}
	names := make([]string, 0, len(records[0]))
	for k := range records[0] {
		names = append(names, k)
	}
	sort.Strings(names)
	schema := make(lang.Schema, len(names))
	for i, n := range names {
		schema[i] = lang.Column{Name: n, Type: lang.ValueType{Kind: lang.KindText}}
	}
	sender, err := ctx.Output.Initialize(schema)
	if err != nil {
		return err
	}
	defer sender.Close()
	for _, rec := range records {
		row := make(lang.Row, len(names))
		for i, n := range names {
			row[i] = jsonToValue(rec[n])
		}
		if err := sender.Send(row); err != nil {
			return err
		}
	}
	return nil
}

// jsonToValue renders a decoded JSON field as Text, keeping every column
// in the schema Text-typed regardless of the source field's JSON type
// (consistent Row.Conforms against the all-Text schema built above) —
// deliberately the simplest useful behavior rather than per-column type
// inference, matching how thin these external-collaborator commands are
// meant to stay.
func jsonToValue(v any) lang.Value {
	switch t := v.(type) {
	case nil:
		return lang.Text("")
	case string:
		return lang.Text(t)
	case float64:
		return lang.Text(fmt.Sprintf("%g", t))
	case bool:
		return lang.Text(fmt.Sprintf("%t", t))
	default:
		b, _ := json.Marshal(t)
		return lang.Text(string(b))
	}
}
