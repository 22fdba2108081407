// Package parser implements crush's first, flat front end: a direct
// recursive-descent grammar with no infix-operator support, producing
// lang.JobList straight away rather than going through a separate
// AST/lowering pass the way internal/ast does.
package parser

import (
	"regexp"

	"crush/internal/crusherr"
	"crush/internal/lang"
	"crush/internal/lexer"
)

type Parser struct {
	lx *lexer.Lexer
}

func New(input string) *Parser {
	return &Parser{lx: lexer.New(input)}
}

func (p *Parser) peek() lexer.Token { return p.lx.Peek() }
func (p *Parser) pop() lexer.Token  { return p.lx.Pop() }

// Parse consumes the whole input as a JobList, erroring if anything is
// left besides EOF.
func (p *Parser) Parse() (lang.JobList, error) {
	jl, err := p.parseJobList()
	if err != nil {
		return lang.JobList{}, err
	}
	if p.peek().Type != lexer.EOF {
		return lang.JobList{}, p.lx.ParseError("expected end of file")
	}
	return jl, nil
}

func (p *Parser) parseJobList() (lang.JobList, error) {
	var jl lang.JobList
	for {
		for p.peek().Type == lexer.Separator {
			p.pop()
		}
		switch p.peek().Type {
		case lexer.EOF, lexer.ModeEnd:
			return jl, nil
		}
		if p.peek().Type != lexer.String {
			return lang.JobList{}, crusherr.Parsef(
				"wrong token type, expected command name, got %v", p.peek().Type)
		}
		job, err := p.parseJob()
		if err != nil {
			return lang.JobList{}, err
		}
		jl.Jobs = append(jl.Jobs, job)
		switch p.peek().Type {
		case lexer.EOF, lexer.ModeEnd:
			return jl, nil
		case lexer.Separator:
			p.pop()
		case lexer.Error:
			return lang.JobList{}, p.lx.ParseError("bad token")
		default:
			return lang.JobList{}, p.lx.ParseError("expected end of command")
		}
	}
}

func (p *Parser) parseJob() (lang.Job, error) {
	var j lang.Job
	for {
		call, err := p.parseCommand()
		if err != nil {
			return lang.Job{}, err
		}
		j.Calls = append(j.Calls, call)
		if p.peek().Type != lexer.Pipe {
			break
		}
		p.pop()
	}
	return j, nil
}

func (p *Parser) parseCommand() (lang.CallDefinition, error) {
	if p.peek().Type != lexer.String {
		return lang.CallDefinition{}, p.lx.ParseError("expected command name")
	}
	name, err := p.parseNameFromLexer(false)
	if err != nil {
		return lang.CallDefinition{}, err
	}
	var args []lang.ArgumentDefinition
	for {
		switch p.peek().Type {
		case lexer.Error:
			return lang.CallDefinition{}, p.lx.ParseError("bad token")
		case lexer.Separator, lexer.EOF, lexer.Pipe, lexer.ModeEnd:
			return lang.CallDefinition{
				Command:   commandValueDefinition(name),
				Arguments: args,
			}, nil
		default:
			arg, err := p.parseArgument()
			if err != nil {
				return lang.CallDefinition{}, err
			}
			args = append(args, arg)
		}
	}
}

// commandValueDefinition turns a dotted command name into either a
// VDLookup (single segment, the common case) or a VDPath (a.b.c naming a
// command nested in a namespace).
func commandValueDefinition(name []string) lang.ValueDefinition {
	if len(name) == 1 {
		return lang.LookupDef(name[0])
	}
	return lang.PathDef(name)
}

func (p *Parser) parseArgument() (lang.ArgumentDefinition, error) {
	if p.peek().Type == lexer.String {
		ss := p.pop().Literal
		if p.peek().Type == lexer.Assign {
			p.pop()
			val, err := p.parseUnnamedArgument()
			if err != nil {
				return lang.ArgumentDefinition{}, err
			}
			return lang.ArgumentDefinition{Name: ss, Value: val}, nil
		}
		return lang.ArgumentDefinition{Value: lang.ValueDef(lang.Text(ss))}, nil
	}
	val, err := p.parseUnnamedArgument()
	if err != nil {
		return lang.ArgumentDefinition{}, err
	}
	return lang.ArgumentDefinition{Value: val}, nil
}

// parseUnnamedArgument parses one value and chains any trailing [index]
// subscripts onto it.
func (p *Parser) parseUnnamedArgument() (lang.ValueDefinition, error) {
	cell, err := p.parseUnnamedArgumentWithoutSubscript()
	if err != nil {
		return lang.ValueDefinition{}, err
	}
	for p.peek().Type == lexer.SubscriptStart {
		p.pop()
		idx, err := p.parseUnnamedArgument()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		if p.peek().Type != lexer.SubscriptEnd {
			return lang.ValueDefinition{}, p.lx.ParseError("expected ']'")
		}
		p.pop()
		base := cell
		index := idx
		cell = lang.GetDef(&base, &index)
	}
	return cell, nil
}

func (p *Parser) parseUnnamedArgumentWithoutSubscript() (lang.ValueDefinition, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.String:
		p.pop()
		return lang.ValueDef(lang.Text(tok.Literal)), nil
	case lexer.Glob:
		p.pop()
		return lang.ValueDef(lang.Glob(tok.Literal)), nil
	case lexer.Integer:
		p.pop()
		v, ok := parseBigInt(tok.Literal)
		if !ok {
			return lang.ValueDefinition{}, p.lx.ParseError("invalid number")
		}
		return lang.ValueDef(v), nil
	case lexer.Float:
		p.pop()
		f, ok := parseFloat(tok.Literal)
		if !ok {
			return lang.ValueDefinition{}, p.lx.ParseError("invalid number")
		}
		return lang.ValueDef(lang.Float(f)), nil
	case lexer.Eq, lexer.Neq, lexer.Gt, lexer.Gte, lexer.Lt, lexer.Lte:
		// The flat grammar has no infix operators: a comparison token
		// appearing in value position names the comparison *command*
		// itself as Text, e.g. in `where %x > 10` the `>` is passed to
		// where as the argument "gt", not applied as an infix operator
		// (mirrors ValueDefinition::op in the original).
		p.pop()
		return lang.ValueDef(lang.Text(opName(tok.Type))), nil
	case lexer.ModeStart:
		return p.parseModeValue()
	case lexer.Field:
		path, err := p.parseNameFromLexer(true)
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.FieldDef(path), nil
	case lexer.Variable:
		path, err := p.parseNameFromLexer(true)
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		if len(path) == 1 {
			return lang.LookupDef(path[0]), nil
		}
		return lang.PathDef(path), nil
	case lexer.Regex:
		p.pop()
		re, err := regexp.Compile(tok.Literal)
		if err != nil {
			return lang.ValueDefinition{}, crusherr.Argumentf("invalid regex %q: %v", tok.Literal, err)
		}
		return lang.ValueDef(lang.Regex(tok.Literal, re)), nil
	case lexer.QuotedString:
		p.pop()
		return lang.ValueDef(lang.Text(tok.Literal)), nil
	case lexer.SubscriptStart:
		p.pop()
		var elems []lang.ValueDefinition
		for p.peek().Type != lexer.SubscriptEnd {
			v, err := p.parseUnnamedArgument()
			if err != nil {
				return lang.ValueDefinition{}, err
			}
			elems = append(elems, v)
		}
		p.pop()
		return lang.ListDef(elems), nil
	default:
		p.pop()
		return lang.ValueDefinition{}, p.lx.ParseError("unknown token")
	}
}

func (p *Parser) parseModeValue() (lang.ValueDefinition, error) {
	sigil := p.pop().Literal
	switch sigil {
	case "{":
		job, err := p.parseJob()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		p.pop() // ModeEnd
		return lang.JobDefinitionDef(lang.JobList{Jobs: []lang.Job{job}}), nil
	case "materialized{":
		job, err := p.parseJob()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		p.pop() // ModeEnd
		return lang.MaterializedJobDefinitionDef(lang.JobList{Jobs: []lang.Job{job}}), nil
	case "`{":
		jl, err := p.parseJobList()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		p.pop() // ModeEnd
		return lang.ClosureDefinitionDef(jl), nil
	case "*{":
		if p.peek().Type != lexer.Glob {
			return lang.ValueDefinition{}, p.lx.ParseError("expected string token")
		}
		g := p.pop().Literal
		if p.peek().Type != lexer.ModeEnd {
			return lang.ValueDefinition{}, p.lx.ParseError("expected '}'")
		}
		p.pop()
		return lang.ValueDef(lang.Glob(g)), nil
	case "duration{":
		elems, err := p.parseModeElements()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.DurationDef(elems), nil
	case "time{":
		elems, err := p.parseModeElements()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.TimeDef(elems), nil
	case "list{":
		elems, err := p.parseModeElements()
		if err != nil {
			return lang.ValueDefinition{}, err
		}
		return lang.ListDef(elems), nil
	default:
		return lang.ValueDefinition{}, crusherr.Parsef("cannot handle mode with sigil %s", sigil)
	}
}

// parseModeElements parses the space-separated value list inside
// duration{}/time{}/list{}, matching parse_mode in the original.
func (p *Parser) parseModeElements() ([]lang.ValueDefinition, error) {
	var cells []lang.ValueDefinition
	for p.peek().Type != lexer.ModeEnd {
		v, err := p.parseUnnamedArgument()
		if err != nil {
			return nil, err
		}
		cells = append(cells, v)
	}
	p.pop()
	return cells, nil
}

// parseNameFromLexer reads the current token as a dotted a.b.c name. When
// stripLeadingSigil is true, the token's literal has already had its
// leading %/$ stripped by the lexer, so it is used as-is (the original
// Rust lexer keeps the sigil in the token text and strips it here
// instead; internal/lexer strips it during scanning).
func (p *Parser) parseNameFromLexer(stripLeadingSigil bool) ([]string, error) {
	tok := p.pop()
	name := splitDotted(tok.Literal)
	for _, seg := range name {
		if seg == "" {
			return nil, p.lx.ParseError("illegal variable name")
		}
	}
	return name, nil
}

func opName(t lexer.TokenType) string {
	switch t {
	case lexer.Eq:
		return lang.OpEq
	case lexer.Neq:
		return lang.OpNeq
	case lexer.Gt:
		return lang.OpGt
	case lexer.Gte:
		return lang.OpGte
	case lexer.Lt:
		return lang.OpLt
	case lexer.Lte:
		return lang.OpLte
	default:
		return "?"
	}
}

func splitDotted(s string) []string {
	var parts []string
	start := 0
	for i, c := range s {
		if c == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
