package ast

import (
	"regexp"

	"crush/internal/crusherr"
	"crush/internal/lang"
)

// Lower converts a parsed JobList into crush's IR.
func (jl *JobList) Lower() (lang.JobList, error) {
	out := lang.JobList{Jobs: make([]lang.Job, 0, len(jl.Jobs))}
	for _, j := range jl.Jobs {
		lj, err := j.lower()
		if err != nil {
			return lang.JobList{}, err
		}
		out.Jobs = append(out.Jobs, lj)
	}
	return out, nil
}

func (j *Job) lower() (lang.Job, error) {
	calls := make([]lang.CallDefinition, 0, len(j.Commands))
	for i := range j.Commands {
		cd, err := j.Commands[i].generate()
		if err != nil {
			return lang.Job{}, err
		}
		calls = append(calls, cd)
	}
	return lang.Job{Calls: calls}, nil
}

// generate implements the "generate_standalone" contract at the Command
// level: an assignment consumes the whole command; otherwise, if the head
// expression alone is already a complete operator/not call, it becomes the
// call and any trailing Arguments are a "Stray arguments" error; otherwise
// the head is the command name and Arguments become the call's arguments.
func (c *Command) generate() (lang.CallDefinition, error) {
	if c.Head.Kind != AssignNone {
		if len(c.Arguments) > 0 {
			return lang.CallDefinition{}, crusherr.Parsef("stray arguments after assignment")
		}
		return c.Head.generateAssignCall()
	}

	cd, ok, err := c.Head.Passthrough.generateStandalone()
	if err != nil {
		return lang.CallDefinition{}, err
	}
	if ok {
		if len(c.Arguments) > 0 {
			return lang.CallDefinition{}, crusherr.Parsef("stray arguments")
		}
		return cd, nil
	}

	headVD, err := c.Head.Passthrough.generateArgument()
	if err != nil {
		return lang.CallDefinition{}, err
	}
	args := make([]lang.ArgumentDefinition, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		vd, err := a.Value.generateArgument()
		if err != nil {
			return lang.CallDefinition{}, err
		}
		args = append(args, lang.ArgumentDefinition{Name: a.Name, Value: vd})
	}
	return lang.CallDefinition{Command: headVD, Arguments: args}, nil
}

// generateAssignCall lowers `lhs = rhs` / `lhs := rhs` to the `set`/`let`
// builtin, rejecting any lhs that is not a bare Label.
func (a *Assignment) generateAssignCall() (lang.CallDefinition, error) {
	if a.LHS.Kind != ItemLabel {
		return lang.CallDefinition{}, crusherr.Parsef("invalid left side in assignment")
	}
	rhsVD, err := a.RHS.generateArgument()
	if err != nil {
		return lang.CallDefinition{}, err
	}
	op := lang.OpSet
	if a.Kind == AssignDeclare {
		op = lang.OpLet
	}
	return lang.CallDefinition{
		Command:   lang.LookupDef(op),
		Arguments: []lang.ArgumentDefinition{{Name: a.LHS.Label, Value: rhsVD}},
	}, nil
}

// generateArgument is Assignment's half of the lowering contract: always
// produces a ValueDefinition, wrapping an assignment's call in a nested
// job when an assignment itself appears in argument position.
func (a *Assignment) generateArgument() (lang.ValueDefinition, error) {
	if a.Kind != AssignNone {
		cd, err := a.generateAssignCall()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return wrapAsJobDefinition(cd), nil
	}
	return a.Passthrough.generateArgument()
}

// generateStandalone implements the lowering contract for Expr: only
// binary operators and the not-operator (Negate on a leaf) produce a
// standalone call; a bare Item passthrough returns ok=false.
func (e *Expr) generateStandalone() (lang.CallDefinition, bool, error) {
	switch e.Kind {
	case ExprBinary:
		leftVD, err := e.Left.generateArgument()
		if err != nil {
			return lang.CallDefinition{}, false, err
		}
		rightVD, err := e.Right.generateArgument()
		if err != nil {
			return lang.CallDefinition{}, false, err
		}
		return lang.CallDefinition{
			Command:   lang.LookupDef(e.Op),
			Arguments: []lang.ArgumentDefinition{{Value: leftVD}, {Value: rightVD}},
		}, true, nil
	case ExprItem:
		if e.Negate {
			vd, err := e.Item.generateArgument()
			if err != nil {
				return lang.CallDefinition{}, false, err
			}
			return lang.CallDefinition{
				Command:   lang.LookupDef(lang.OpNot),
				Arguments: []lang.ArgumentDefinition{{Value: vd}},
			}, true, nil
		}
		return lang.CallDefinition{}, false, nil
	default:
		return lang.CallDefinition{}, false, crusherr.Internalf("unknown expr kind %d", e.Kind)
	}
}

// generateArgument is Expr's half of the lowering contract: operator
// expressions and not-expressions become nested JobDefinitions (so the
// resolver substitutes their single computed value); a bare leaf Item
// delegates straight through.
func (e *Expr) generateArgument() (lang.ValueDefinition, error) {
	cd, ok, err := e.generateStandalone()
	if err != nil {
		return lang.ValueDefinition{}, err
	}
	if ok {
		return wrapAsJobDefinition(cd), nil
	}
	return e.Item.generateArgument()
}

func lowerElements(elems []Expr) ([]lang.ValueDefinition, error) {
	defs := make([]lang.ValueDefinition, len(elems))
	for i := range elems {
		d, err := elems[i].generateArgument()
		if err != nil {
			return nil, err
		}
		defs[i] = d
	}
	return defs, nil
}

func wrapAsJobDefinition(cd lang.CallDefinition) lang.ValueDefinition {
	return lang.JobDefinitionDef(lang.JobList{Jobs: []lang.Job{{Calls: []lang.CallDefinition{cd}}}})
}

// generateArgument is Item's half of the lowering contract: every leaf
// kind always produces a ValueDefinition.
func (it *Item) generateArgument() (lang.ValueDefinition, error) {
	switch it.Kind {
	case ItemLabel:
		return lang.LookupDef(it.Label), nil
	case ItemText:
		return lang.ValueDef(lang.Text(it.Text)), nil
	case ItemInteger:
		return lang.ValueDef(*it.Integer), nil
	case ItemFloat:
		return lang.ValueDef(lang.Float(it.Float)), nil
	case ItemGlob:
		return lang.ValueDef(lang.Glob(it.Text)), nil
	case ItemRegex:
		re, err := regexp.Compile(it.RegexSrc)
		if err != nil {
			return lang.ValueDefinition{}, crusherr.Parsef("invalid regex %q: %v", it.RegexSrc, err)
		}
		return lang.ValueDef(lang.Regex(it.RegexSrc, re)), nil
	case ItemField:
		return lang.FieldDef(it.Path), nil
	case ItemVariable:
		if len(it.Path) == 1 {
			return lang.LookupDef(it.Path[0]), nil
		}
		return lang.PathDef(it.Path), nil
	case ItemList:
		defs, err := lowerElements(it.Elements)
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.ListDef(defs), nil
	case ItemDuration:
		defs, err := lowerElements(it.Elements)
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.DurationDef(defs), nil
	case ItemTime:
		defs, err := lowerElements(it.Elements)
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.TimeDef(defs), nil
	case ItemSubstitution:
		jl, err := it.Jobs.Lower()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.JobDefinitionDef(jl), nil
	case ItemMaterialized:
		jl, err := it.Jobs.Lower()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.MaterializedJobDefinitionDef(jl), nil
	case ItemClosure:
		jl, err := it.Jobs.Lower()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.ClosureDefinitionDef(jl), nil
	case ItemGet:
		baseVD, err := it.Base.generateArgument()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		idxVD, err := it.Index.generateArgument()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.GetDef(&baseVD, &idxVD), nil
	case ItemPath:
		baseVD, err := it.Base.generateArgument()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		idxVD := lang.ValueDef(lang.Text(it.Label))
		return lang.GetDef(&baseVD, &idxVD), nil
	default:
		return lang.ValueDefinition{}, crusherr.Internalf("unknown item kind %d", it.Kind)
	}
}
