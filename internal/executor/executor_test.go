package executor

import (
	"context"
	"io"
	"testing"

	"crush/internal/lang"
)

type capturePrinter struct{}

func (capturePrinter) Print(lang.Value)      {}
func (capturePrinter) PrintTable(*lang.Table) {}
func (capturePrinter) Errorf(string, ...any)  {}

func sourceCommand(rows []lang.Row, schema lang.Schema) *lang.SimpleCommand {
	return lang.NewSimpleCommand("source", false, func(ctx *lang.ExecutionContext) error {
		sender, err := ctx.Output.Initialize(schema)
		if err != nil {
			return err
		}
		defer sender.Close()
		for _, r := range rows {
			if err := sender.Send(r); err != nil {
				return err
			}
		}
		return nil
	})
}

func countCommand() *lang.SimpleCommand {
	return lang.NewSimpleCommand("count", true, func(ctx *lang.ExecutionContext) error {
		n := 0
		for {
			_, err := ctx.Input.Read()
			if err != nil {
				break
			}
			n++
		}
		sender, err := ctx.Output.Initialize(lang.Schema{{Name: "count", Type: lang.ValueType{Kind: lang.KindInteger}}})
		if err != nil {
			return err
		}
		defer sender.Close()
		return sender.Send(lang.Row{lang.IntegerFromInt64(int64(n))})
	})
}

func TestRunPipelineTwoStages(t *testing.T) {
	root := lang.NewRootScope()
	root.Declare("ls3", lang.CommandValue(sourceCommand(
		[]lang.Row{{lang.IntegerFromInt64(1)}, {lang.IntegerFromInt64(2)}, {lang.IntegerFromInt64(3)}},
		lang.Schema{{Name: "n", Type: lang.ValueType{Kind: lang.KindInteger}}},
	)))
	root.Declare("count", lang.CommandValue(countCommand()))

	job := lang.Job{Calls: []lang.CallDefinition{
		{Command: lang.LookupDef("ls3")},
		{Command: lang.LookupDef("count")},
	}}

	ex := New(capturePrinter{}, nil)
	val, err := ex.RunJob(context.Background(), lang.JobList{Jobs: []lang.Job{job}}, root)
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	items, ok := val.List()
	if !ok || len(items) != 1 {
		t.Fatalf("expected a one-element row captured as a list, got %+v", val)
	}
	n, ok := items[0].Integer()
	if !ok || n.Int64() != 3 {
		t.Fatalf("expected count 3, got %+v", items[0])
	}
}

func TestRunJobMaterializedDrainsRows(t *testing.T) {
	root := lang.NewRootScope()
	root.Declare("ls2", lang.CommandValue(sourceCommand(
		[]lang.Row{{lang.Text("a")}, {lang.Text("b")}},
		lang.Schema{{Name: "s", Type: lang.ValueType{Kind: lang.KindText}}},
	)))

	job := lang.Job{Calls: []lang.CallDefinition{{Command: lang.LookupDef("ls2")}}}
	ex := New(capturePrinter{}, nil)
	tbl, err := ex.RunJobMaterialized(context.Background(), lang.JobList{Jobs: []lang.Job{job}}, root)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
}

func TestRunPipelineUnknownCommandErrors(t *testing.T) {
	root := lang.NewRootScope()
	job := lang.Job{Calls: []lang.CallDefinition{{Command: lang.LookupDef("nope")}}}
	ex := New(capturePrinter{}, nil)
	_, err := ex.RunJob(context.Background(), lang.JobList{Jobs: []lang.Job{job}}, root)
	if err == nil {
		t.Fatalf("expected a name error for an unknown command")
	}
}

func TestRunPipelineStageFailureCancelsPeers(t *testing.T) {
	root := lang.NewRootScope()
	blocked := make(chan struct{})
	root.Declare("hang", lang.CommandValue(lang.NewSimpleCommand("hang", true, func(ctx *lang.ExecutionContext) error {
		<-ctx.Context.Done()
		close(blocked)
		return ctx.Context.Err()
	})))
	root.Declare("boom", lang.CommandValue(lang.NewSimpleCommand("boom", false, func(ctx *lang.ExecutionContext) error {
		return io.ErrUnexpectedEOF
	})))

	job := lang.Job{Calls: []lang.CallDefinition{
		{Command: lang.LookupDef("hang")},
		{Command: lang.LookupDef("boom")},
	}}

	ex := New(capturePrinter{}, nil)
	err := ex.RunPipeline(context.Background(), job, root, noInput{}, noOutput{})
	if err == nil {
		t.Fatalf("expected the pipeline to surface boom's error")
	}
	<-blocked
}

type noInput struct{}

func (noInput) Types() (lang.Schema, error) { return nil, nil }
func (noInput) Read() (lang.Row, error)     { return nil, io.EOF }
func (noInput) RecvValue(ctx context.Context) (lang.Value, error) {
	return lang.Value{}, io.EOF
}

type noOutput struct{}

func (noOutput) Initialize(schema lang.Schema) (lang.RowSender, error) { return discardSender{}, nil }
func (noOutput) SendValue(lang.Value) error                            { return nil }

type discardSender struct{}

func (discardSender) Send(lang.Row) error { return nil }
func (discardSender) Close()              {}
