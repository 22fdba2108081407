// Package resolver turns a lang.ValueDefinition into a lang.Value against
// a lang.Scope: the runtime mirror of internal/ast's lowering, and the
// namespace-as-scope-value pattern for dotted Path resolution.
//
// resolver cannot import internal/executor to run a JobDefinition's job
// list (that would cycle back: executor needs resolver to resolve each
// stage's arguments). Instead it depends on the small JobRunner interface
// below, which internal/executor implements and wires in itself
// (executor.New) — the same dependency-inversion internal/lang uses for
// ClosureRunner.
package resolver

import (
	"context"
	"time"

	"crush/internal/crusherr"
	"crush/internal/lang"
)

// JobRunner executes a JobList synchronously, either capturing exactly one
// scalar output value (RunJob, for `{ ... }`) or materializing the
// terminal row stream into a Table (RunJobMaterialized, for
// `materialized{ ... }`). Both run jobs against a *child* of the given
// scope.
type JobRunner interface {
	RunJob(ctx context.Context, jobs lang.JobList, scope *lang.Scope) (lang.Value, error)
	RunJobMaterialized(ctx context.Context, jobs lang.JobList, scope *lang.Scope) (*lang.Table, error)
}

// Resolver resolves ValueDefinitions. It holds no state of its own besides
// the JobRunner collaborator, so the zero value is usable once Runner is
// set.
type Resolver struct {
	Runner JobRunner
}

// New constructs a Resolver with its JobRunner wired.
func New(runner JobRunner) *Resolver {
	return &Resolver{Runner: runner}
}

// Resolve turns one ValueDefinition into a Value, recursing into Base/
// Index/Elements as needed.
func (r *Resolver) Resolve(ctx context.Context, vd lang.ValueDefinition, scope *lang.Scope) (lang.Value, error) {
	switch vd.Kind {
	case lang.VDValue:
		return vd.Value, nil

	case lang.VDLookup:
		v, ok := scope.Lookup(vd.Name)
		if !ok {
			return lang.Value{}, crusherr.Namef("no such variable %q", vd.Name)
		}
		return v, nil

	case lang.VDPath:
		return r.resolvePath(vd.Path, scope)

	case lang.VDGet:
		return r.resolveGet(ctx, vd, scope)

	case lang.VDJobDefinition:
		if r.Runner == nil {
			return lang.Value{}, crusherr.Internalf("resolver has no job runner")
		}
		return r.Runner.RunJob(ctx, vd.Jobs, scope)

	case lang.VDMaterializedJobDefinition:
		if r.Runner == nil {
			return lang.Value{}, crusherr.Internalf("resolver has no job runner")
		}
		tbl, err := r.Runner.RunJobMaterialized(ctx, vd.Jobs, scope)
		if err != nil {
			return lang.Value{}, err
		}
		return lang.TableValue(tbl), nil

	case lang.VDClosureDefinition:
		return lang.CommandValue(&lang.Closure{Jobs: vd.Jobs, Scope: scope}), nil

	case lang.VDField:
		return lang.FieldValue(lang.Field(vd.Path)), nil

	case lang.VDList:
		vals, err := r.resolveElements(ctx, vd.Elements, scope)
		if err != nil {
			return lang.Value{}, err
		}
		return lang.List(vals), nil

	case lang.VDDuration:
		return r.resolveDuration(ctx, vd.Elements, scope)

	case lang.VDTime:
		return r.resolveTime(ctx, vd.Elements, scope)

	default:
		return lang.Value{}, crusherr.Internalf("unknown value definition kind %d", vd.Kind)
	}
}

func (r *Resolver) resolveElements(ctx context.Context, elems []lang.ValueDefinition, scope *lang.Scope) ([]lang.Value, error) {
	vals := make([]lang.Value, 0, len(elems))
	for _, e := range elems {
		v, err := r.Resolve(ctx, e, scope)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// resolvePath walks a dotted name through a chain of namespace scopes,
// e.g. ["var", "let"]: lookup "var" in scope (a Value of KindScope, per
// Scope.CreateNamespace), then lookup "let" inside that namespace's own
// scope. Every hop but the last must land on a KindScope value.
func (r *Resolver) resolvePath(path []string, scope *lang.Scope) (lang.Value, error) {
	if len(path) == 0 {
		return lang.Value{}, crusherr.Internalf("empty path")
	}
	v, ok := scope.Lookup(path[0])
	if !ok {
		return lang.Value{}, crusherr.Namef("no such variable %q", path[0])
	}
	for _, seg := range path[1:] {
		ns, ok := v.ScopeRef()
		if !ok {
			return lang.Value{}, crusherr.Namef("%q is not a namespace, cannot access %q on it", v.Type(), seg)
		}
		v, ok = ns.Lookup(seg)
		if !ok {
			return lang.Value{}, crusherr.Namef("no such variable %q", seg)
		}
	}
	return v, nil
}

// resolveGet resolves base[index]: resolve base, resolve the index
// (itself an arbitrary ValueDefinition — a sub-pipeline when it is a
// JobDefinition, a plain literal otherwise), then index base by it.
func (r *Resolver) resolveGet(ctx context.Context, vd lang.ValueDefinition, scope *lang.Scope) (lang.Value, error) {
	base, err := r.Resolve(ctx, *vd.Base, scope)
	if err != nil {
		return lang.Value{}, err
	}
	index, err := r.Resolve(ctx, *vd.Index, scope)
	if err != nil {
		return lang.Value{}, err
	}
	return indexValue(base, index)
}

// indexValue implements "table row by integer, column by field name, etc."
func indexValue(base, index lang.Value) (lang.Value, error) {
	switch base.Kind {
	case lang.KindTable:
		tbl, _ := base.Table()
		if n, ok := index.Integer(); ok {
			i := int(n.Int64())
			if i < 0 || i >= len(tbl.Rows) {
				return lang.Value{}, crusherr.Argumentf("row index %d out of range (table has %d rows)", i, len(tbl.Rows))
			}
			return lang.List([]lang.Value(tbl.Rows[i])), nil
		}
		if name, ok := index.Text(); ok {
			col, ok := tbl.Schema.IndexOf(name)
			if !ok {
				return lang.Value{}, crusherr.Namef("no such column %q", name)
			}
			vals := make([]lang.Value, len(tbl.Rows))
			for i, row := range tbl.Rows {
				vals[i] = row[col]
			}
			return lang.List(vals), nil
		}
		return lang.Value{}, crusherr.Typef("cannot index a table by %s", index.Type())

	case lang.KindList:
		items, _ := base.List()
		n, ok := index.Integer()
		if !ok {
			return lang.Value{}, crusherr.Typef("cannot index a list by %s", index.Type())
		}
		i := int(n.Int64())
		if i < 0 || i >= len(items) {
			return lang.Value{}, crusherr.Argumentf("list index %d out of range (len %d)", i, len(items))
		}
		return items[i], nil

	case lang.KindScope:
		ns, _ := base.ScopeRef()
		name, ok := index.Text()
		if !ok {
			return lang.Value{}, crusherr.Typef("cannot index a namespace by %s", index.Type())
		}
		v, ok := ns.Lookup(name)
		if !ok {
			return lang.Value{}, crusherr.Namef("no such variable %q in namespace %s", name, ns)
		}
		return v, nil

	default:
		return lang.Value{}, crusherr.Typef("cannot index a value of kind %s", base.Kind)
	}
}

// resolveDuration implements `duration{ N unit N unit ... }`: pairs of
// (integer, text-unit) elements summed into one time.Duration.
func (r *Resolver) resolveDuration(ctx context.Context, elems []lang.ValueDefinition, scope *lang.Scope) (lang.Value, error) {
	vals, err := r.resolveElements(ctx, elems, scope)
	if err != nil {
		return lang.Value{}, err
	}
	if len(vals)%2 != 0 {
		return lang.Value{}, crusherr.Argumentf("duration{} requires alternating number/unit pairs, got %d elements", len(vals))
	}
	var total time.Duration
	for i := 0; i < len(vals); i += 2 {
		n, ok := vals[i].Integer()
		if !ok {
			return lang.Value{}, crusherr.Typef("duration{} expects an integer magnitude, got %s", vals[i].Type())
		}
		unit, ok := vals[i+1].Text()
		if !ok {
			return lang.Value{}, crusherr.Typef("duration{} expects a text unit, got %s", vals[i+1].Type())
		}
		d, err := durationUnit(unit)
		if err != nil {
			return lang.Value{}, err
		}
		total += time.Duration(n.Int64()) * d
	}
	return lang.DurationValue(total), nil
}

func durationUnit(unit string) (time.Duration, error) {
	switch unit {
	case "ns", "nanosecond", "nanoseconds":
		return time.Nanosecond, nil
	case "us", "microsecond", "microseconds":
		return time.Microsecond, nil
	case "ms", "millisecond", "milliseconds":
		return time.Millisecond, nil
	case "s", "second", "seconds":
		return time.Second, nil
	case "m", "minute", "minutes":
		return time.Minute, nil
	case "h", "hour", "hours":
		return time.Hour, nil
	case "d", "day", "days":
		return 24 * time.Hour, nil
	default:
		return 0, crusherr.Argumentf("unknown duration unit %q", unit)
	}
}

// resolveTime implements `time{ year month day [hour minute second] }`, a
// fixed positional constructor (UTC, no timezone element in the minimal
// grammar).
func (r *Resolver) resolveTime(ctx context.Context, elems []lang.ValueDefinition, scope *lang.Scope) (lang.Value, error) {
	vals, err := r.resolveElements(ctx, elems, scope)
	if err != nil {
		return lang.Value{}, err
	}
	if len(vals) != 3 && len(vals) != 6 {
		return lang.Value{}, crusherr.Argumentf("time{} expects 3 (y m d) or 6 (y m d h m s) elements, got %d", len(vals))
	}
	ints := make([]int, len(vals))
	for i, v := range vals {
		n, ok := v.Integer()
		if !ok {
			return lang.Value{}, crusherr.Typef("time{} expects integer components, got %s at position %d", v.Type(), i)
		}
		ints[i] = int(n.Int64())
	}
	hour, min, sec := 0, 0, 0
	if len(ints) == 6 {
		hour, min, sec = ints[3], ints[4], ints[5]
	}
	t := time.Date(ints[0], time.Month(ints[1]), ints[2], hour, min, sec, 0, time.UTC)
	return lang.TimeValue(t), nil
}

// ResolveArguments resolves a CallDefinition's ArgumentDefinitions into
// runtime Arguments, the step internal/executor performs for each stage
// just before launching it.
func (r *Resolver) ResolveArguments(ctx context.Context, defs []lang.ArgumentDefinition, scope *lang.Scope) (lang.Arguments, error) {
	args := make(lang.Arguments, 0, len(defs))
	for _, d := range defs {
		v, err := r.Resolve(ctx, d.Value, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, lang.Argument{Name: d.Name, Value: v})
	}
	return args, nil
}
