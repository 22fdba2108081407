// Package streamio provides the concrete, channel-backed implementations
// of the channel abstractions internal/lang declares (RowSource, RowSink,
// RowSender, ValueSink, ValueSource), using Go channels and goroutines:
// a fixed-size buffered RowChannel between adjacent stages, whose Send
// blocks while the buffer is full, and an UnboundedRowChannel for group's
// per-key sub-streams, whose Send never blocks.
package streamio

import (
	"context"
	"fmt"
	"io"
	"sync"

	"crush/internal/crusherr"
	"crush/internal/lang"
)

// RowChannel is a bidirectional, schema-carrying row pipe: one goroutine
// sends via the RowSender it gets back from Initialize, another reads via
// Read. Closing the sender signals io.EOF to the reader, matching the
// RowSource/RowSink contract in internal/lang/stream.go.
type RowChannel struct {
	schema lang.Schema
	ch     chan lang.Row
	once   sync.Once
}

// NewRowChannel creates a row channel buffering up to buffer rows (at
// least one): Send blocks while the buffer is full, so a slow consumer
// holds back its producer.
func NewRowChannel(schema lang.Schema, buffer int) *RowChannel {
	if buffer < 1 {
		buffer = 1
	}
	return &RowChannel{schema: schema, ch: make(chan lang.Row, buffer)}
}

func (c *RowChannel) Types() (lang.Schema, error) { return c.schema, nil }

// Read implements lang.RowSource: blocks until a row is available, the
// channel is closed (io.EOF), or ctx note: Read takes no context since
// lang.RowSource doesn't carry one — callers wanting cancellation read
// via ReadContext instead.
func (c *RowChannel) Read() (lang.Row, error) {
	row, ok := <-c.ch
	if !ok {
		return nil, io.EOF
	}
	return row, nil
}

// ReadContext is Read with cooperative cancellation, so a reader blocked
// on an empty channel still observes ctx.Done().
func (c *RowChannel) ReadContext(ctx context.Context) (lang.Row, error) {
	select {
	case row, ok := <-c.ch:
		if !ok {
			return nil, io.EOF
		}
		return row, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("phase=cancelled: %s: %w", ctx.Err(), crusherr.ErrCancelled)
	}
}

// sender is the RowSender a producer holds after Initialize.
type sender struct {
	c *RowChannel
}

func (s *sender) Send(r lang.Row) error {
	if !r.Conforms(s.c.schema) {
		return crusherr.Typef("row does not conform to schema %s", s.c.schema)
	}
	s.c.ch <- r
	return nil
}

func (s *sender) Close() {
	s.c.once.Do(func() { close(s.c.ch) })
}

// Initialize implements lang.RowSink: the schema is fixed at channel
// creation time (unlike the Rust original's Initialize(Vec<ColumnType>),
// Go's RowChannel always knows its schema upfront), so Initialize only
// checks that the column count matches and hands back a sender.
func (c *RowChannel) Initialize(schema lang.Schema) (lang.RowSender, error) {
	if len(schema) != len(c.schema) {
		return nil, crusherr.Typef("schema mismatch: expected %s, got %s", c.schema, schema)
	}
	return &sender{c: c}, nil
}

// UnboundedRowChannel is the channel-layer primitive the group command
// needs for its per-key sub-streams: a slow or abandoned consumer of one
// bucket must never block the outer producer, so the sender appends to a
// growing in-memory queue instead of a fixed-capacity Go channel, and a
// condition variable wakes a blocked reader.
type UnboundedRowChannel struct {
	schema lang.Schema
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []lang.Row
	closed bool
}

func NewUnboundedRowChannel(schema lang.Schema) *UnboundedRowChannel {
	c := &UnboundedRowChannel{schema: schema}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *UnboundedRowChannel) Types() (lang.Schema, error) { return c.schema, nil }

// Read blocks until a row is queued or the channel is closed with an
// empty queue (io.EOF). Never blocks a concurrent Send.
func (c *UnboundedRowChannel) Read() (lang.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) == 0 && !c.closed {
		c.cond.Wait()
	}
	if len(c.queue) == 0 {
		return nil, io.EOF
	}
	row := c.queue[0]
	c.queue = c.queue[1:]
	return row, nil
}

// Send appends a row without ever blocking on a slow reader.
func (c *UnboundedRowChannel) Send(row lang.Row) error {
	if !row.Conforms(c.schema) {
		return crusherr.Typef("row does not conform to schema %s", c.schema)
	}
	c.mu.Lock()
	c.queue = append(c.queue, row)
	c.mu.Unlock()
	c.cond.Signal()
	return nil
}

// Close marks the channel closed; queued rows already present are still
// delivered before Read reports io.EOF.
func (c *UnboundedRowChannel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

// ValueChannel carries exactly one Value from a producer to a consumer,
// the Go shape of a ValueSender/ValueSource pair used for `{ ... }`
// substitution and ordinary (non-streaming) command results.
type ValueChannel struct {
	ch chan lang.Value
}

func NewValueChannel() *ValueChannel {
	return &ValueChannel{ch: make(chan lang.Value, 1)}
}

func (v *ValueChannel) SendValue(val lang.Value) error {
	select {
	case v.ch <- val:
		return nil
	default:
		return crusherr.Internalf("value channel already has a pending value")
	}
}

func (v *ValueChannel) RecvValue(ctx context.Context) (lang.Value, error) {
	select {
	case val, ok := <-v.ch:
		if !ok {
			return lang.Value{}, crusherr.IOf("value channel closed with no value sent")
		}
		return val, nil
	case <-ctx.Done():
		return lang.Value{}, fmt.Errorf("phase=cancelled: %s: %w", ctx.Err(), crusherr.ErrCancelled)
	}
}

func (v *ValueChannel) Close() { close(v.ch) }

// pendingRowSource lets a consumer goroutine hold a stable RowSource
// handle before the producer goroutine has called Output.Initialize:
// without it, a stage's Input would race reading o.rows before the
// producing stage's goroutine got scheduled. Every method blocks on
// ready, the same rendezvous a lang.ValueSender's buffered channel gives
// value sends for free.
type pendingRowSource struct {
	ready chan struct{}
	rs    lang.RowSource
}

func newPendingRowSource() *pendingRowSource {
	return &pendingRowSource{ready: make(chan struct{})}
}

func (p *pendingRowSource) resolve(rs lang.RowSource) {
	p.rs = rs
	close(p.ready)
}

func (p *pendingRowSource) Types() (lang.Schema, error) {
	<-p.ready
	return p.rs.Types()
}

func (p *pendingRowSource) Read() (lang.Row, error) {
	<-p.ready
	return p.rs.Read()
}

// Output bundles a RowChannel and ValueChannel behind the lang.Output
// interface: a command writes rows via Initialize/Send when producing a
// table stream, or a single value via SendValue, a single handle that
// supports both send modes since a command doesn't know in advance
// which one it will need.
type Output struct {
	pending *pendingRowSource
	rows    *RowChannel
	value   *ValueChannel

	kindOnce sync.Once
	kind     chan byte // 'r' for rows (Initialize called), 'v' for a scalar (SendValue called)
}

// KindRows and KindValue are the two bytes Output.Kind can report.
const (
	KindRows  byte = 'r'
	KindValue byte = 'v'
)

// NewOutput creates an Output capable of carrying either a row stream (if
// the caller later calls Initialize) or a single value (SendValue),
// exactly one of the two per command invocation. Its RowSource (for
// wiring into the next stage's Input) is available immediately via
// RowSource(), even though it blocks until Initialize is actually called.
func NewOutput() *Output {
	return &Output{pending: newPendingRowSource(), value: NewValueChannel(), kind: make(chan byte, 1)}
}

func (o *Output) Initialize(schema lang.Schema) (lang.RowSender, error) {
	o.rows = NewRowChannel(schema, 64)
	sender, err := o.rows.Initialize(schema)
	if err != nil {
		return nil, err
	}
	o.kindOnce.Do(func() { o.kind <- KindRows })
	o.pending.resolve(o.rows)
	return sender, nil
}

func (o *Output) SendValue(val lang.Value) error {
	o.kindOnce.Do(func() { o.kind <- KindValue })
	return o.value.SendValue(val)
}

// Kind reports which of Initialize/SendValue a finished stage's command
// used, without blocking: a caller inspecting Kind always does so after
// the producing goroutine has already returned from Invoke, so the
// channel either already has an entry or never will.
func (o *Output) Kind() (byte, bool) {
	select {
	case k := <-o.kind:
		return k, true
	default:
		return 0, false
	}
}

// CloseRows force-closes the row channel if Initialize was ever called,
// a safety net the executor applies after every stage's Invoke returns:
// a command that forgets to Close its RowSender would otherwise leave
// the downstream stage blocked on Read forever.
func (o *Output) CloseRows() {
	if o.rows != nil {
		o.rows.once.Do(func() { close(o.rows.ch) })
	}
}

// RowSource returns the stable, pre-Initialize-safe handle a downstream
// stage's Input should hold.
func (o *Output) RowSource() lang.RowSource { return o.pending }

// ValueChannel exposes the underlying value channel for wiring into a
// downstream Input.
func (o *Output) ValueChannel() *ValueChannel { return o.value }

// Value blocks for the single value a non-streaming command sends via
// SendValue.
func (o *Output) Value(ctx context.Context) (lang.Value, error) {
	return o.value.RecvValue(ctx)
}

// Input bundles a RowSource and ValueSource behind the lang.Input
// interface, the consumer-side counterpart of Output.
type Input struct {
	rows  lang.RowSource
	value *ValueChannel
}

func NewInput(rows lang.RowSource, value *ValueChannel) *Input {
	return &Input{rows: rows, value: value}
}

func (i *Input) Types() (lang.Schema, error) {
	if i.rows == nil {
		return nil, crusherr.Typef("no row stream on this input")
	}
	return i.rows.Types()
}

func (i *Input) Read() (lang.Row, error) {
	if i.rows == nil {
		return nil, crusherr.Typef("no row stream on this input")
	}
	return i.rows.Read()
}

func (i *Input) RecvValue(ctx context.Context) (lang.Value, error) {
	if i.value == nil {
		return lang.Value{}, crusherr.Typef("no value on this input")
	}
	return i.value.RecvValue(ctx)
}
