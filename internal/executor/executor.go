// Package executor compiles a resolved Job into a pipeline of
// concurrently executing stages linked by internal/streamio's typed
// channels: goroutines plus context cancellation standing in for
// group's fan-out loop and zip's lockstep read loop, with a three-phase
// shape — resolve commands, schedule stages, await — that keeps
// validation separate from execution.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"crush/internal/crusherr"
	"crush/internal/lang"
	"crush/internal/resolver"
	"crush/internal/streamio"
)

// Executor runs Jobs and JobLists. It implements both
// resolver.JobRunner (so the Resolver can run `{ }`/`materialized{ }`
// substitutions) and lang.ClosureRunner (so invoking a captured closure
// value runs its body), closing the dependency triangle
// resolver → executor → resolver/lang described in DESIGN.md's
// package-boundary addendum.
type Executor struct {
	Resolver *resolver.Resolver
	Printer  lang.Printer
	Logger   *log.Logger
}

// New constructs an Executor and wires a Resolver pointed back at it: a
// circular-but-acyclic-at-the-type-level wiring between a job and the
// scope it resolves against.
func New(printer lang.Printer, logger *log.Logger) *Executor {
	e := &Executor{Printer: printer, Logger: logger}
	e.Resolver = resolver.New(e)
	return e
}

// stageState is the per-stage state machine: Pending → Running →
// (Succeeded | Failed | Cancelled).
type stageState int

const (
	statePending stageState = iota
	stateRunning
	stateSucceeded
	stateFailed
	stateCancelled
)

func (s stageState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateRunning:
		return "running"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	case stateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RunJobList executes every Job in a JobList in turn (newline/semicolon
// separated top-level statements run sequentially, each to completion,
// matching a script's ordinary top-to-bottom evaluation), discarding any
// value or row output: used for the top-level program and for a
// closure's multi-job body.
func (e *Executor) RunJobList(ctx context.Context, jobs lang.JobList, scope *lang.Scope) error {
	for _, job := range jobs.Jobs {
		out := streamio.NewOutput()
		in := streamio.NewInput(emptyRowSource{}, streamio.NewValueChannel())
		if err := e.RunPipeline(ctx, job, scope, in, out); err != nil {
			return err
		}
		drainOutput(ctx, out)
	}
	return nil
}

// RunJob implements resolver.JobRunner: runs every job in the list, and
// captures exactly one value from the last job's terminal stage: its
// scalar, or its single row as a List (zero or several rows fail).
func (e *Executor) RunJob(ctx context.Context, jobs lang.JobList, scope *lang.Scope) (lang.Value, error) {
	if len(jobs.Jobs) == 0 {
		return lang.Value{}, crusherr.Internalf("empty job definition")
	}
	child := scope.Child()
	for _, job := range jobs.Jobs[:len(jobs.Jobs)-1] {
		out := streamio.NewOutput()
		in := streamio.NewInput(emptyRowSource{}, streamio.NewValueChannel())
		if err := e.RunPipeline(ctx, job, child, in, out); err != nil {
			return lang.Value{}, err
		}
		drainOutput(ctx, out)
	}

	last := jobs.Jobs[len(jobs.Jobs)-1]
	out := streamio.NewOutput()
	in := streamio.NewInput(emptyRowSource{}, streamio.NewValueChannel())
	if err := e.RunPipeline(ctx, last, child, in, out); err != nil {
		return lang.Value{}, err
	}
	return captureOneValue(ctx, out)
}

// RunJobMaterialized implements resolver.JobRunner: runs jobs the same
// way, but drains the terminal stage's row stream into a Table instead of
// capturing a scalar.
func (e *Executor) RunJobMaterialized(ctx context.Context, jobs lang.JobList, scope *lang.Scope) (*lang.Table, error) {
	if len(jobs.Jobs) == 0 {
		return nil, crusherr.Internalf("empty job definition")
	}
	child := scope.Child()
	for _, job := range jobs.Jobs[:len(jobs.Jobs)-1] {
		out := streamio.NewOutput()
		in := streamio.NewInput(emptyRowSource{}, streamio.NewValueChannel())
		if err := e.RunPipeline(ctx, job, child, in, out); err != nil {
			return nil, err
		}
		drainOutput(ctx, out)
	}

	last := jobs.Jobs[len(jobs.Jobs)-1]
	out := streamio.NewOutput()
	in := streamio.NewInput(emptyRowSource{}, streamio.NewValueChannel())
	if err := e.RunPipeline(ctx, last, child, in, out); err != nil {
		return nil, err
	}
	return materializeOutput(out)
}

// RunClosure implements lang.ClosureRunner: runs a captured closure's job
// list against a child of its defining scope, wiring its terminal row
// output straight to out — the invocation site's output — rather than
// capturing a single value, so a closure can itself behave as a pipeline
// stage (`ls | \`{ count }`).
func (e *Executor) RunClosure(ctx context.Context, c *lang.Closure, out lang.Output) error {
	child := c.Scope.Child()
	if len(c.Jobs.Jobs) == 0 {
		return nil
	}
	for _, job := range c.Jobs.Jobs[:len(c.Jobs.Jobs)-1] {
		inner := streamio.NewOutput()
		in := streamio.NewInput(emptyRowSource{}, streamio.NewValueChannel())
		if err := e.RunPipeline(ctx, job, child, in, inner); err != nil {
			return err
		}
		drainOutput(ctx, inner)
	}
	last := c.Jobs.Jobs[len(c.Jobs.Jobs)-1]
	in := streamio.NewInput(emptyRowSource{}, streamio.NewValueChannel())
	return e.RunPipeline(ctx, last, child, in, out)
}

// RunPipeline resolves every stage's command value, wires bounded
// channels between adjacent stages, spawns one goroutine per stage, and
// waits for all of them — cancelling the rest and surfacing the first
// error if any stage fails. A stage error wrapping crusherr.ErrInternal
// (an invariant violation rather than an ordinary argument/type/io
// failure) panics the stage goroutine instead of returning normally; the
// goroutine recovers its own panic so one broken stage cannot take down
// the process, but the recovered error is still fatal to the job the
// same way any other stage error is.
func (e *Executor) RunPipeline(ctx context.Context, job lang.Job, scope *lang.Scope, input lang.Input, output lang.Output) error {
	n := len(job.Calls)
	if n == 0 {
		return nil
	}

	// Phase 1: resolve each stage's command value up front, so a name
	// error surfaces before any goroutine is spawned.
	commands := make([]lang.Command, n)
	for i, call := range job.Calls {
		cmdVal, err := e.Resolver.Resolve(ctx, call.Command, scope)
		if err != nil {
			return err
		}
		cmd, ok := cmdVal.Command()
		if !ok {
			return crusherr.Namef("%v does not name a command", call.Command)
		}
		commands[i] = cmd
	}

	// Phase 2: allocate the stage Input/Output chain. Stage 0 reads
	// `input`; stage n-1 writes `output`; the n-1 pipes in between are
	// fresh streamio.Output/Input pairs.
	ins := make([]lang.Input, n)
	outs := make([]lang.Output, n)
	ins[0] = input
	outs[n-1] = output
	for i := 0; i < n-1; i++ {
		pipe := streamio.NewOutput()
		outs[i] = pipe
		ins[i+1] = streamio.NewInput(pipe.RowSource(), pipe.ValueChannel())
	}

	stageCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := make([]stageState, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	errCh := make(chan error, n)

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		mu.Lock()
		states[i] = statePending
		mu.Unlock()
		go func() {
			defer wg.Done()

			// finish records the stage's outcome, releases its output
			// channel deterministically even if the command itself
			// forgot to close its RowSender, and — on error — reports
			// to errCh and cancels the rest of the pipeline.
			finish := func(err error) {
				mu.Lock()
				switch {
				case err != nil && stageCtx.Err() != nil:
					states[i] = stateCancelled
				case err != nil:
					states[i] = stateFailed
				default:
					states[i] = stateSucceeded
				}
				mu.Unlock()

				if so, ok := outs[i].(*streamio.Output); ok {
					so.CloseRows()
				}
				if err != nil {
					errCh <- fmt.Errorf("stage %d (%v): %w", i, job.Calls[i].Command, err)
					cancel()
				}
			}

			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					finish(err)
				}
			}()

			mu.Lock()
			states[i] = stateRunning
			mu.Unlock()

			execCtx := &lang.ExecutionContext{
				Context:       stageCtx,
				Input:         ins[i],
				Output:        outs[i],
				Scope:         scope,
				Printer:       e.Printer,
				ClosureRunner: e,
			}
			args, err := e.Resolver.ResolveArguments(stageCtx, job.Calls[i].Arguments, scope)
			if err == nil {
				execCtx.Arguments = args
				err = commands[i].Invoke(execCtx)
			}
			if err != nil && errors.Is(err, crusherr.ErrInternal) {
				panic(err)
			}
			finish(err)
		}()
	}

	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if first == nil {
			first = err
		} else if e.Logger != nil {
			e.Logger.Error("pipeline stage failed after first error", "err", err)
		}
	}
	return first
}

// emptyRowSource is the Input a pipeline's first stage gets when nothing
// upstream feeds it: Types returns an empty schema and Read always
// returns io.EOF immediately, so a source command (one that ignores
// Input entirely, like `ls`) never blocks on it.
type emptyRowSource struct{}

func (emptyRowSource) Types() (lang.Schema, error) { return nil, nil }
func (emptyRowSource) Read() (lang.Row, error)     { return nil, io.EOF }

// captureOneValue captures a job definition's single scalar result:
// exactly one value, failing on zero or several. It is only ever called
// after RunPipeline has returned (the producing goroutine has already
// finished), so checking out.Kind() cannot race.
func captureOneValue(ctx context.Context, out *streamio.Output) (lang.Value, error) {
	kind, used := out.Kind()
	if !used {
		return lang.Value{}, crusherr.Internalf("job definition's terminal stage produced no output")
	}
	switch kind {
	case streamio.KindValue:
		return out.Value(ctx)
	case streamio.KindRows:
		rs := out.RowSource()
		if _, err := rs.Types(); err != nil {
			return lang.Value{}, err
		}
		row, err := rs.Read()
		if err != nil {
			return lang.Value{}, crusherr.Argumentf("job definition's terminal stage produced zero rows")
		}
		if _, err := rs.Read(); err == nil {
			return lang.Value{}, crusherr.Argumentf("job definition's terminal stage produced more than one row")
		}
		return lang.List([]lang.Value(row)), nil
	default:
		return lang.Value{}, crusherr.Internalf("unknown output kind %q", kind)
	}
}

// drainOutput discards whatever a non-terminal job's last stage produced:
// used when a `{ }`/closure body runs several jobs back to back and only
// the final job's output is meaningful.
func drainOutput(ctx context.Context, out *streamio.Output) {
	kind, used := out.Kind()
	if !used {
		return
	}
	switch kind {
	case streamio.KindRows:
		rs := out.RowSource()
		if _, err := rs.Types(); err != nil {
			return
		}
		for {
			if _, err := rs.Read(); err != nil {
				return
			}
		}
	case streamio.KindValue:
		_, _ = out.Value(ctx)
	}
}

// materializeOutput drains the terminal stage's row stream into a Table.
// A terminal stage that produced a scalar instead of a row stream is
// wrapped as a single-column, single-row Table.
func materializeOutput(out *streamio.Output) (*lang.Table, error) {
	kind, used := out.Kind()
	if !used {
		return lang.NewTable(nil), nil
	}
	switch kind {
	case streamio.KindRows:
		rs := out.RowSource()
		schema, err := rs.Types()
		if err != nil {
			return nil, err
		}
		tbl := lang.NewTable(schema)
		for {
			row, err := rs.Read()
			if err != nil {
				break
			}
			tbl.Append(row)
		}
		return tbl, nil
	case streamio.KindValue:
		val, err := out.Value(context.Background())
		if err != nil {
			return nil, err
		}
		tbl := lang.NewTable(lang.Schema{{Name: "value", Type: val.Type()}})
		tbl.Append(lang.Row{val})
		return tbl, nil
	default:
		return nil, crusherr.Internalf("unknown output kind %q", kind)
	}
}
