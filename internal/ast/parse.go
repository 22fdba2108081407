package ast

import (
	"crush/internal/lang"
	"crush/internal/lexer"
)

// Parser builds a JobList from a token stream via recursive-descent
// operator-precedence climbing: Logical > Comparison > Term > Factor >
// Unary > Item. The surrounding Job/JobList/argument-loop shape (pop-
// then-peek token handling, command/pipe chaining, mode-sigil dispatch)
// matches internal/parser's flat grammar.
type Parser struct {
	lx *lexer.Lexer
}

func NewParser(input string) *Parser {
	return &Parser{lx: lexer.New(input)}
}

func (p *Parser) peek() lexer.Token { return p.lx.Peek() }
func (p *Parser) pop() lexer.Token  { return p.lx.Pop() }

// Parse consumes the entire input as a JobList, erroring if anything is
// left over besides EOF.
func (p *Parser) Parse() (*JobList, error) {
	jl, err := p.parseJobList()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != lexer.EOF {
		return nil, p.lx.ParseError("expected end of file")
	}
	return jl, nil
}

func (p *Parser) parseJobList() (*JobList, error) {
	jl := &JobList{}
	for {
		for p.peek().Type == lexer.Separator {
			p.pop()
		}
		switch p.peek().Type {
		case lexer.EOF, lexer.ModeEnd:
			return jl, nil
		}
		job, err := p.parseJob()
		if err != nil {
			return nil, err
		}
		jl.Jobs = append(jl.Jobs, *job)
		switch p.peek().Type {
		case lexer.EOF, lexer.ModeEnd:
			return jl, nil
		case lexer.Separator:
			p.pop()
		case lexer.Error:
			return nil, p.lx.ParseError("bad token")
		default:
			return nil, p.lx.ParseError("expected end of command")
		}
	}
}

func (p *Parser) parseJob() (*Job, error) {
	j := &Job{}
	for {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		j.Commands = append(j.Commands, *cmd)
		if p.peek().Type != lexer.Pipe {
			break
		}
		p.pop()
	}
	return j, nil
}

func (p *Parser) parseCommand() (*Command, error) {
	head, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	cmd := &Command{Head: head}
	if head.Kind != AssignNone {
		return cmd, nil
	}
	for !isCommandEnd(p.peek().Type) {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		cmd.Arguments = append(cmd.Arguments, *arg)
	}
	return cmd, nil
}

func isCommandEnd(t lexer.TokenType) bool {
	switch t {
	case lexer.Separator, lexer.EOF, lexer.Pipe, lexer.ModeEnd, lexer.Error:
		return true
	default:
		return false
	}
}

// parseAssignment detects `label = expr` / `label := expr` by speculatively
// popping a leading String and checking what follows: if the lookahead
// isn't Assign/Declare, the already-popped token is folded back in as
// the start of an ordinary expression instead of being discarded.
func (p *Parser) parseAssignment() (*Assignment, error) {
	if p.peek().Type == lexer.String {
		label := p.pop().Literal
		switch p.peek().Type {
		case lexer.Assign:
			p.pop()
			rhs, err := p.parseLogical()
			if err != nil {
				return nil, err
			}
			return &Assignment{Kind: AssignSet, LHS: &Item{Kind: ItemLabel, Label: label}, RHS: rhs}, nil
		case lexer.Declare:
			p.pop()
			rhs, err := p.parseLogical()
			if err != nil {
				return nil, err
			}
			return &Assignment{Kind: AssignDeclare, LHS: &Item{Kind: ItemLabel, Label: label}, RHS: rhs}, nil
		default:
			leaf := &Item{Kind: ItemLabel, Label: label}
			item, err := p.parseItemTrailer(leaf)
			if err != nil {
				return nil, err
			}
			expr, err := p.climbFrom(&Expr{Kind: ExprItem, Item: item})
			if err != nil {
				return nil, err
			}
			return &Assignment{Kind: AssignNone, Passthrough: expr}, nil
		}
	}
	expr, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	return &Assignment{Kind: AssignNone, Passthrough: expr}, nil
}

// parseArgument parses one command argument: an optional `name=value`
// prefix (same speculative pop-then-peek trick as parseAssignment, scoped
// to a single argument instead of the whole command), or a bare
// expression.
func (p *Parser) parseArgument() (*Argument, error) {
	if p.peek().Type == lexer.String {
		name := p.pop().Literal
		if p.peek().Type == lexer.Assign {
			p.pop()
			val, err := p.parseLogical()
			if err != nil {
				return nil, err
			}
			return &Argument{Name: name, Value: val}, nil
		}
		// A bareword argument that isn't a `name=value` prefix is a
		// literal Text value, not a Label lookup — only a Command's own
		// head name resolves by lookup.
		leaf := &Item{Kind: ItemText, Text: name}
		item, err := p.parseItemTrailer(leaf)
		if err != nil {
			return nil, err
		}
		expr, err := p.climbFrom(&Expr{Kind: ExprItem, Item: item})
		if err != nil {
			return nil, err
		}
		return &Argument{Value: expr}, nil
	}
	val, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	return &Argument{Value: val}, nil
}

// climbFrom continues precedence climbing given an already-parsed leaf
// expression, propagating it upward through Factor, Term, Comparison and
// Logical in turn so trailing operators (`foo + 1`, `foo == bar`) are
// still recognized after a label has already been consumed speculatively.
func (p *Parser) climbFrom(leaf *Expr) (*Expr, error) {
	factor, err := p.parseFactorWith(leaf)
	if err != nil {
		return nil, err
	}
	term, err := p.parseTermWith(factor)
	if err != nil {
		return nil, err
	}
	comparison, err := p.parseComparisonWith(term)
	if err != nil {
		return nil, err
	}
	return p.parseLogicalWith(comparison)
}

var logicalOps = map[lexer.TokenType]string{
	lexer.LogicalAnd: lang.OpAnd,
	lexer.LogicalOr:  lang.OpOr,
}

var comparisonOps = map[lexer.TokenType]string{
	lexer.Lt:  lang.OpLt,
	lexer.Lte: lang.OpLte,
	lexer.Gt:  lang.OpGt,
	lexer.Gte: lang.OpGte,
	lexer.Eq:  lang.OpEq,
	lexer.Neq: lang.OpNeq,
}

var termOps = map[lexer.TokenType]string{
	lexer.Plus:  lang.OpAdd,
	lexer.Minus: lang.OpSub,
}

var factorOps = map[lexer.TokenType]string{
	lexer.Star:  lang.OpMul,
	lexer.Slash: lang.OpDiv,
}

func (p *Parser) parseLogical() (*Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	return p.parseLogicalWith(left)
}

func (p *Parser) parseLogicalWith(left *Expr) (*Expr, error) {
	for {
		op, ok := logicalOps[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.pop()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseComparison() (*Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return p.parseComparisonWith(left)
}

func (p *Parser) parseComparisonWith(left *Expr) (*Expr, error) {
	for {
		op, ok := comparisonOps[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.pop()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseTerm() (*Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return p.parseTermWith(left)
}

func (p *Parser) parseTermWith(left *Expr) (*Expr, error) {
	for {
		op, ok := termOps[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.pop()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseFactor() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseFactorWith(left)
}

func (p *Parser) parseFactorWith(left *Expr) (*Expr, error) {
	for {
		op, ok := factorOps[p.peek().Type]
		if !ok {
			return left, nil
		}
		p.pop()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (*Expr, error) {
	if p.peek().Type == lexer.LogicalNot {
		p.pop()
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprItem, Negate: true, Item: item}, nil
	}
	item, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: ExprItem, Item: item}, nil
}

// parseItem parses one leaf value and any trailing subscript/path
// chaining ([index], .label).
func (p *Parser) parseItem() (*Item, error) {
	leaf, err := p.parseItemLeaf()
	if err != nil {
		return nil, err
	}
	return p.parseItemTrailer(leaf)
}

func (p *Parser) parseItemLeaf() (*Item, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.String:
		// A bareword encountered in value position (arithmetic operand,
		// subscript index, assignment rhs, list element) is literal Text.
		// Only a Command's own head name resolves by lookup, and that
		// case is built directly in parseAssignment/parseArgument rather
		// than routed through here.
		p.pop()
		return &Item{Kind: ItemText, Text: tok.Literal}, nil
	case lexer.QuotedString:
		p.pop()
		return &Item{Kind: ItemText, Text: tok.Literal}, nil
	case lexer.Integer:
		p.pop()
		v, ok := parseBigInt(tok.Literal)
		if !ok {
			return nil, p.lx.ParseError("invalid integer literal " + tok.Literal)
		}
		return &Item{Kind: ItemInteger, Integer: &v}, nil
	case lexer.Float:
		p.pop()
		f, ok := parseFloat(tok.Literal)
		if !ok {
			return nil, p.lx.ParseError("invalid float literal " + tok.Literal)
		}
		return &Item{Kind: ItemFloat, Float: f}, nil
	case lexer.Glob:
		p.pop()
		return &Item{Kind: ItemGlob, Text: tok.Literal}, nil
	case lexer.Regex:
		p.pop()
		return &Item{Kind: ItemRegex, RegexSrc: tok.Literal}, nil
	case lexer.Field:
		p.pop()
		return &Item{Kind: ItemField, Path: splitDotted(tok.Literal)}, nil
	case lexer.Variable:
		p.pop()
		return &Item{Kind: ItemVariable, Path: splitDotted(tok.Literal)}, nil
	case lexer.SubscriptStart:
		return nil, p.lx.ParseError("unexpected '['")
	case lexer.ModeStart:
		return p.parseModeItem()
	default:
		p.pop()
		return nil, p.lx.ParseError("unexpected token")
	}
}

// parseItemTrailer chains zero or more [index] subscripts onto base.
// Dotted field access inside %a.b.c / $a.b.c is already handled by the
// lexer's dotted-name scanning, so only bracket subscripts remain here.
func (p *Parser) parseItemTrailer(base *Item) (*Item, error) {
	for p.peek().Type == lexer.SubscriptStart {
		p.pop()
		idx, err := p.parseLogical()
		if err != nil {
			return nil, err
		}
		if p.peek().Type != lexer.SubscriptEnd {
			return nil, p.lx.ParseError("expected ']'")
		}
		p.pop()
		base = &Item{Kind: ItemGet, Base: base, Index: idx}
	}
	return base, nil
}

func (p *Parser) parseModeItem() (*Item, error) {
	tok := p.pop()
	switch tok.Literal {
	case "{":
		jl, err := p.parseJobList()
		if err != nil {
			return nil, err
		}
		if err := p.expectModeEnd(); err != nil {
			return nil, err
		}
		return &Item{Kind: ItemSubstitution, Jobs: *jl}, nil
	case "materialized{":
		jl, err := p.parseJobList()
		if err != nil {
			return nil, err
		}
		if err := p.expectModeEnd(); err != nil {
			return nil, err
		}
		return &Item{Kind: ItemMaterialized, Jobs: *jl}, nil
	case "`{":
		jl, err := p.parseJobList()
		if err != nil {
			return nil, err
		}
		if err := p.expectModeEnd(); err != nil {
			return nil, err
		}
		return &Item{Kind: ItemClosure, Jobs: *jl}, nil
	case "list{":
		elems, err := p.parseElementList()
		if err != nil {
			return nil, err
		}
		return &Item{Kind: ItemList, Elements: elems}, nil
	case "duration{":
		elems, err := p.parseElementList()
		if err != nil {
			return nil, err
		}
		return &Item{Kind: ItemDuration, Elements: elems}, nil
	case "time{":
		elems, err := p.parseElementList()
		if err != nil {
			return nil, err
		}
		return &Item{Kind: ItemTime, Elements: elems}, nil
	default:
		return nil, p.lx.ParseError("unknown mode sigil " + tok.Literal)
	}
}

// parseElementList parses comma-or-space-separated argument-level
// expressions up to ModeEnd, used by list{}/duration{}/time{}.
func (p *Parser) parseElementList() ([]Expr, error) {
	var elems []Expr
	for p.peek().Type != lexer.ModeEnd {
		if p.peek().Type == lexer.Comma {
			p.pop()
			continue
		}
		expr, err := p.parseLogical()
		if err != nil {
			return nil, err
		}
		elems = append(elems, *expr)
	}
	p.pop()
	return elems, nil
}

func (p *Parser) expectModeEnd() error {
	if p.peek().Type != lexer.ModeEnd {
		return p.lx.ParseError("expected '}'")
	}
	p.pop()
	return nil
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
