package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Icarogamer2441/snake/internal/ast"
	"github.com/Icarogamer2441/snake/internal/lexer"
	"github.com/Icarogamer2441/snake/internal/token"
)

// Parser parses canonical (fully lowered) host text into an ast.Module.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []string
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// init cur/peek
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []string {
	errs := append([]string{}, p.l.Errors()...)
	return append(errs, p.errors...)
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	msg := fmt.Sprintf("%d:%d: ", pos.Line, pos.Column) + fmt.Sprintf(format, args...)
	p.errors = append(p.errors, msg)
}

func (p *Parser) expect(kind token.Kind) token.Token {
	if p.cur.Kind != kind {
		p.errorf(p.cur.Pos, "expected %s, got %s (%q)", kind, p.cur.Kind, p.cur.Lexeme)
	}
	tok := p.cur
	p.nextToken()
	return tok
}

// skipToNewline advances past the rest of a broken statement line.
func (p *Parser) skipToNewline() {
	for p.cur.Kind != token.Newline && p.cur.Kind != token.EOF {
		p.nextToken()
	}
	if p.cur.Kind == token.Newline {
		p.nextToken()
	}
}

// ---------- Top-level ----------

func (p *Parser) ParseModule() *ast.Module {
	mod := &ast.Module{}

	for p.cur.Kind != token.EOF {
		if p.cur.Kind == token.Newline {
			p.nextToken()
			continue
		}
		st := p.parseStatement()
		if st != nil {
			mod.Stmts = append(mod.Stmts, st)
		}
	}
	return mod
}

// parseBlock parses ":" NEWLINE INDENT stmts DEDENT.
func (p *Parser) parseBlock() []ast.Stmt {
	p.expect(token.Colon)

	// Single-line suite: "if x: return y"
	if p.cur.Kind != token.Newline {
		st := p.parseSimpleStatement()
		if p.cur.Kind == token.Newline {
			p.nextToken()
		}
		if st == nil {
			return nil
		}
		return []ast.Stmt{st}
	}

	p.expect(token.Newline)
	p.expect(token.Indent)

	var stmts []ast.Stmt
	for p.cur.Kind != token.Dedent && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.Newline {
			p.nextToken()
			continue
		}
		st := p.parseStatement()
		if st != nil {
			stmts = append(stmts, st)
		}
	}
	p.expect(token.Dedent)
	return stmts
}

// ---------- Statements ----------

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.Import, token.From:
		return p.parseImport()
	case token.At, token.Def:
		return p.parseFunctionDef()
	case token.Class:
		return p.parseClassDef()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	case token.Try:
		return p.parseTry()
	default:
		st := p.parseSimpleStatement()
		if p.cur.Kind == token.Semicolon {
			p.nextToken()
		}
		if p.cur.Kind == token.Newline {
			p.nextToken()
		}
		return st
	}
}

// parseSimpleStatement parses a one-line statement without its terminator.
func (p *Parser) parseSimpleStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.Return:
		pos := p.cur.Pos
		p.nextToken()
		var val ast.Expr
		if p.cur.Kind != token.Newline && p.cur.Kind != token.Semicolon && p.cur.Kind != token.EOF {
			val = p.parseExprTuple()
		}
		return &ast.ReturnStmt{ReturnPos: pos, Value: val}
	case token.Raise:
		pos := p.cur.Pos
		p.nextToken()
		var exc ast.Expr
		if p.cur.Kind != token.Newline && p.cur.Kind != token.Semicolon && p.cur.Kind != token.EOF {
			exc = p.parseExpr()
		}
		return &ast.RaiseStmt{RaisePos: pos, Exc: exc}
	case token.Pass:
		pos := p.cur.Pos
		p.nextToken()
		return &ast.PassStmt{PassPos: pos}
	case token.Break:
		pos := p.cur.Pos
		p.nextToken()
		return &ast.BreakStmt{BreakPos: pos}
	case token.Continue:
		pos := p.cur.Pos
		p.nextToken()
		return &ast.ContinueStmt{ContinuePos: pos}
	default:
		return p.parseExprOrAssign()
	}
}

// parseExprOrAssign parses "expr", "target = expr" or "name: type = expr".
// Either side of the '=' may be a bare comma-separated tuple, as in
// "a, b = b, a".
func (p *Parser) parseExprOrAssign() ast.Stmt {
	target := p.parseExprTuple()
	if target == nil {
		p.skipToNewline()
		return nil
	}

	switch p.cur.Kind {
	case token.Colon:
		// Annotated assignment: only a bare name target is valid.
		if _, ok := target.(*ast.NameExpr); !ok {
			p.errorf(p.cur.Pos, "annotated assignment target must be a name")
		}
		p.nextToken()
		annot := p.collectTypeText(token.Assign, token.Newline, token.Semicolon)
		var val ast.Expr
		if p.cur.Kind == token.Assign {
			p.nextToken()
			val = p.parseExpr()
		}
		return &ast.AnnAssignStmt{Target: target, Annotation: annot, Value: val}

	case token.Assign:
		p.nextToken()
		val := p.parseExprTuple()
		switch target.(type) {
		case *ast.NameExpr, *ast.AttributeExpr, *ast.SubscriptExpr, *ast.TupleLit:
		default:
			p.errorf(target.Pos(), "cannot assign to this expression")
		}
		return &ast.AssignStmt{Target: target, Value: val}

	default:
		return &ast.ExprStmt{Expression: target}
	}
}

// parseExprTuple parses one expression, folding a trailing comma-separated
// list into a bare tuple.
func (p *Parser) parseExprTuple() ast.Expr {
	first := p.parseExpr()
	if first == nil || p.cur.Kind != token.Comma {
		return first
	}
	elems := []ast.Expr{first}
	for p.cur.Kind == token.Comma {
		p.nextToken()
		elems = append(elems, p.parseExpr())
	}
	return &ast.TupleLit{Lparen: first.Pos(), Elements: elems}
}

func (p *Parser) parseImport() ast.Stmt {
	pos := p.cur.Pos
	st := &ast.ImportStmt{ImportPos: pos}

	if p.cur.Kind == token.From {
		p.nextToken()
		st.From = p.parseDottedName()
		p.expect(token.Import)
	} else {
		p.expect(token.Import)
	}

	st.Names = append(st.Names, p.parseDottedName())
	for p.cur.Kind == token.Comma {
		p.nextToken()
		st.Names = append(st.Names, p.parseDottedName())
	}

	if p.cur.Kind == token.Newline {
		p.nextToken()
	}
	return st
}

func (p *Parser) parseDottedName() string {
	var b strings.Builder
	tok := p.expect(token.Ident)
	b.WriteString(tok.Lexeme)
	for p.cur.Kind == token.Dot {
		p.nextToken()
		tok = p.expect(token.Ident)
		b.WriteByte('.')
		b.WriteString(tok.Lexeme)
	}
	return b.String()
}

func (p *Parser) parseFunctionDef() ast.Stmt {
	var decorators []string
	for p.cur.Kind == token.At {
		p.nextToken()
		name := p.expect(token.Ident)
		decorators = append(decorators, name.Lexeme)
		if p.cur.Kind == token.Newline {
			p.nextToken()
		}
	}

	defPos := p.cur.Pos
	p.expect(token.Def)
	name := p.expect(token.Ident)

	p.expect(token.LParen)
	var params []*ast.Param
	for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
		param := p.parseParam()
		if param != nil {
			params = append(params, param)
		}
		if p.cur.Kind == token.Comma {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(token.RParen)

	ret := ""
	if p.cur.Kind == token.Arrow {
		p.nextToken()
		ret = p.collectTypeText(token.Colon)
	}

	body := p.parseBlock()
	return &ast.FunctionDef{
		DefPos:     defPos,
		Name:       name.Lexeme,
		Decorators: decorators,
		Params:     params,
		Returns:    ret,
		Body:       body,
	}
}

func (p *Parser) parseParam() *ast.Param {
	name := p.expect(token.Ident)
	param := &ast.Param{Name: name.Lexeme, NamePos: name.Pos}

	if p.cur.Kind == token.Colon {
		p.nextToken()
		param.Annotation = p.collectTypeText(token.Assign, token.Comma, token.RParen)
	}
	if p.cur.Kind == token.Assign {
		p.nextToken()
		param.Default = p.collectTypeText(token.Comma, token.RParen)
	}
	return param
}

func (p *Parser) parseClassDef() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.Class)
	name := p.expect(token.Ident)

	var bases []string
	if p.cur.Kind == token.LParen {
		p.nextToken()
		for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
			bases = append(bases, p.parseDottedName())
			if p.cur.Kind == token.Comma {
				p.nextToken()
			}
		}
		p.expect(token.RParen)
	}

	body := p.parseBlock()
	return &ast.ClassDef{ClassPos: pos, Name: name.Lexeme, Bases: bases, Body: body}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.cur.Pos
	p.nextToken() // consume if/elif
	cond := p.parseExpr()
	then := p.parseBlock()

	st := &ast.IfStmt{IfPos: pos, Cond: cond, Then: then}

	switch p.cur.Kind {
	case token.Elif:
		st.Else = []ast.Stmt{p.parseIf()}
	case token.Else:
		p.nextToken()
		st.Else = p.parseBlock()
	}
	return st
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.While)
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.WhileStmt{WhilePos: pos, Cond: cond, Body: body}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.For)

	var vars []string
	name := p.expect(token.Ident)
	vars = append(vars, name.Lexeme)
	for p.cur.Kind == token.Comma {
		p.nextToken()
		name = p.expect(token.Ident)
		vars = append(vars, name.Lexeme)
	}

	p.expect(token.In)
	iter := p.parseExpr()
	body := p.parseBlock()
	return &ast.ForStmt{ForPos: pos, Vars: vars, Iter: iter, Body: body}
}

func (p *Parser) parseTry() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.Try)
	body := p.parseBlock()

	st := &ast.TryStmt{TryPos: pos, Body: body}
	if p.cur.Kind == token.Except {
		p.nextToken()
		if p.cur.Kind == token.Ident {
			st.ExceptType = p.cur.Lexeme
			p.nextToken()
			// "as name"
			if p.cur.Kind == token.Ident && p.cur.Lexeme == "as" {
				p.nextToken()
				asName := p.expect(token.Ident)
				st.ExceptName = asName.Lexeme
			}
		}
		st.Handler = p.parseBlock()
	}
	return st
}

// collectTypeText consumes tokens up to one of the stop kinds at bracket
// depth zero and reconstructs the source text. Used for type annotations and
// default-value fragments, which the annotation table stores as strings.
func (p *Parser) collectTypeText(stops ...token.Kind) string {
	depth := 0
	var b strings.Builder

	stop := func(k token.Kind) bool {
		for _, s := range stops {
			if k == s {
				return true
			}
		}
		return false
	}

	for p.cur.Kind != token.EOF && p.cur.Kind != token.Newline {
		if depth == 0 && stop(p.cur.Kind) {
			break
		}
		switch p.cur.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		}
		switch p.cur.Kind {
		case token.Comma:
			b.WriteString(", ")
		case token.String:
			b.WriteString(strconv.Quote(p.cur.Lexeme))
		case token.FString:
			b.WriteString("f" + strconv.Quote(p.cur.Lexeme))
		default:
			b.WriteString(p.cur.Lexeme)
		}
		p.nextToken()
	}
	return strings.TrimSpace(b.String())
}

// ---------- Expressions ----------

func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if p.cur.Kind != token.Or {
		return left
	}
	values := []ast.Expr{left}
	for p.cur.Kind == token.Or {
		p.nextToken()
		values = append(values, p.parseAnd())
	}
	return &ast.BoolExpr{Op: token.Or, Values: values}
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	if p.cur.Kind != token.And {
		return left
	}
	values := []ast.Expr{left}
	for p.cur.Kind == token.And {
		p.nextToken()
		values = append(values, p.parseNot())
	}
	return &ast.BoolExpr{Op: token.And, Values: values}
}

func (p *Parser) parseNot() ast.Expr {
	if p.cur.Kind == token.Not {
		pos := p.cur.Pos
		p.nextToken()
		return &ast.UnaryExpr{OpPos: pos, Op: token.Not, X: p.parseNot()}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()

	var ops []token.Kind
	var rs []ast.Expr
	for {
		switch p.cur.Kind {
		case token.Eq, token.NotEq, token.Lt, token.LtEq, token.Gt, token.GtEq, token.In:
			op := p.cur.Kind
			p.nextToken()
			ops = append(ops, op)
			rs = append(rs, p.parseAdditive())
		case token.Not:
			// "not in"
			if p.peek.Kind == token.In {
				p.nextToken()
				p.nextToken()
				ops = append(ops, token.NotIn)
				rs = append(rs, p.parseAdditive())
				continue
			}
			if len(ops) == 0 {
				return left
			}
			return &ast.CompareExpr{L: left, Ops: ops, Rs: rs}
		default:
			if len(ops) == 0 {
				return left
			}
			return &ast.CompareExpr{L: left, Ops: ops, Rs: rs}
		}
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur.Kind == token.Plus || p.cur.Kind == token.Minus {
		op := p.cur.Kind
		p.nextToken()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Op: op, L: left, R: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.cur.Kind == token.Star || p.cur.Kind == token.Slash ||
		p.cur.Kind == token.DoubleSlash || p.cur.Kind == token.Percent {
		op := p.cur.Kind
		p.nextToken()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Op: op, L: left, R: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.cur.Kind == token.Minus || p.cur.Kind == token.Plus {
		pos := p.cur.Pos
		op := p.cur.Kind
		p.nextToken()
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: p.parseUnary()}
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.Expr {
	left := p.parsePostfix()
	if p.cur.Kind == token.Power {
		p.nextToken()
		// Right-associative.
		right := p.parseUnary()
		return &ast.BinaryExpr{Op: token.Power, L: left, R: right}
	}
	return left
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch p.cur.Kind {
		case token.Dot:
			p.nextToken()
			name := p.expect(token.Ident)
			expr = &ast.AttributeExpr{X: expr, Name: name.Lexeme, NamePos: name.Pos}

		case token.LParen:
			p.nextToken()
			call := &ast.CallExpr{Func: expr}
			for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
				// Keyword argument: name = expr
				if p.cur.Kind == token.Ident && p.peek.Kind == token.Assign {
					kwName := p.cur.Lexeme
					p.nextToken()
					p.nextToken()
					call.Keywords = append(call.Keywords, &ast.Keyword{
						Name:  kwName,
						Value: p.parseExpr(),
					})
				} else {
					call.Args = append(call.Args, p.parseExpr())
				}
				if p.cur.Kind == token.Comma {
					p.nextToken()
					continue
				}
				break
			}
			p.expect(token.RParen)
			expr = call

		case token.LBracket:
			p.nextToken()
			idx := p.parseExpr()
			p.expect(token.RBracket)
			expr = &ast.SubscriptExpr{X: expr, Index: idx}

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos

	switch p.cur.Kind {
	case token.Ident:
		name := p.cur.Lexeme
		p.nextToken()
		return &ast.NameExpr{NamePos: pos, Name: name}

	case token.Int:
		raw := p.cur.Lexeme
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			p.errorf(pos, "invalid integer literal %q", raw)
		}
		p.nextToken()
		return &ast.IntLit{ValuePos: pos, Value: v, Raw: raw}

	case token.Float:
		raw := p.cur.Lexeme
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			p.errorf(pos, "invalid float literal %q", raw)
		}
		p.nextToken()
		return &ast.FloatLit{ValuePos: pos, Value: v, Raw: raw}

	case token.String:
		v := p.cur.Lexeme
		p.nextToken()
		return &ast.StringLit{ValuePos: pos, Value: v}

	case token.FString:
		v := p.cur.Lexeme
		p.nextToken()
		return &ast.StringLit{ValuePos: pos, Value: v, Formatted: true}

	case token.True:
		p.nextToken()
		return &ast.BoolLit{ValuePos: pos, Value: true}

	case token.False:
		p.nextToken()
		return &ast.BoolLit{ValuePos: pos, Value: false}

	case token.None:
		p.nextToken()
		return &ast.NoneLit{ValuePos: pos}

	case token.LParen:
		p.nextToken()
		if p.cur.Kind == token.RParen {
			p.nextToken()
			return &ast.TupleLit{Lparen: pos}
		}
		first := p.parseExpr()
		if p.cur.Kind == token.Comma {
			elems := []ast.Expr{first}
			for p.cur.Kind == token.Comma {
				p.nextToken()
				if p.cur.Kind == token.RParen {
					break
				}
				elems = append(elems, p.parseExpr())
			}
			p.expect(token.RParen)
			return &ast.TupleLit{Lparen: pos, Elements: elems}
		}
		p.expect(token.RParen)
		return first

	case token.LBracket:
		p.nextToken()
		lit := &ast.ListLit{Lbracket: pos}
		for p.cur.Kind != token.RBracket && p.cur.Kind != token.EOF {
			lit.Elements = append(lit.Elements, p.parseExpr())
			if p.cur.Kind == token.Comma {
				p.nextToken()
				continue
			}
			break
		}
		p.expect(token.RBracket)
		return lit

	case token.LBrace:
		p.nextToken()
		lit := &ast.DictLit{Lbrace: pos}
		for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
			key := p.parseExpr()
			p.expect(token.Colon)
			val := p.parseExpr()
			lit.Keys = append(lit.Keys, key)
			lit.Values = append(lit.Values, val)
			if p.cur.Kind == token.Comma {
				p.nextToken()
				continue
			}
			break
		}
		p.expect(token.RBrace)
		return lit

	default:
		p.errorf(pos, "unexpected token %s (%q)", p.cur.Kind, p.cur.Lexeme)
		p.nextToken()
		return nil
	}
}
