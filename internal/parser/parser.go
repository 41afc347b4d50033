// Package parser implements a recursive-descent parser over the lexer's
// token stream, producing the AST defined in package ast. Parsing
// aborts at the first error, per the grammar's contract.
package parser

import (
	"fmt"
	"strconv"

	"github.com/irisbuild/iris/internal/ast"
	"github.com/irisbuild/iris/internal/ireerrors"
	"github.com/irisbuild/iris/internal/lexer"
)

// Parser consumes a token stream and produces a *ast.Block representing
// the whole program.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	filename string
	source   string
}

// New creates a parser over source, tagging errors with filename.
func New(source, filename string) *Parser {
	toks := lexer.New(source).Tokenize()
	return &Parser{tokens: toks, filename: filename, source: source}
}

// ParseProgram parses the whole token stream into a top-level Block.
func (p *Parser) ParseProgram() (*ast.Block, error) {
	block := &ast.Block{}
	p.skipNewlines()
	for !p.isAtEnd() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
		p.skipNewlines()
	}
	return block, nil
}

// ---- token helpers ----

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.EOF
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType, context string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	return tok, p.errorAt(tok, fmt.Sprintf("expected %s %s, got %s %q", t, context, tok.Type, tok.Lexeme))
}

func (p *Parser) errorAt(tok lexer.Token, message string) error {
	return &ireerrors.ParseError{
		Message:  message,
		Pos:      ireerrors.Position{Line: tok.Line, Column: tok.Column},
		Filename: p.filename,
		Source:   p.source,
	}
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.NEWLINE) {
		p.advance()
	}
}

// isBlockEnd reports whether t is a keyword token that terminates a
// do...end body at the statement-list level, without being consumed here.
func isBlockEnd(t lexer.TokenType) bool {
	return t == lexer.END || t == lexer.ELSE || t == lexer.EOF
}

// parseBlockBody parses statements until an END/ELSE/EOF is seen, each
// separated by one or more NEWLINEs (or the start of input).
func (p *Parser) parseBlockBody() (*ast.Block, error) {
	block := &ast.Block{}
	p.skipNewlines()
	for !isBlockEnd(p.peek().Type) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
		p.skipNewlines()
	}
	return block, nil
}

// ---- statements ----

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.peek().Type {
	case lexer.PROJECT:
		return p.parseProjectBlock()
	case lexer.EXECUTABLE, lexer.LIBRARY, lexer.SHARED_LIBRARY, lexer.STATIC_LIBRARY:
		return p.parseTargetBlock()
	case lexer.COMPILER:
		return p.parseCompilerBlock()
	case lexer.DEPENDENCY:
		return p.parseDependencyBlock()
	case lexer.TASK:
		return p.parseTaskBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.UNLESS:
		return p.parseUnless()
	case lexer.FOR:
		return p.parseFor()
	case lexer.FN:
		return p.parseFunctionDef()
	case lexer.RETURN:
		return p.parseReturn()
	default:
		return p.parseAssignmentOrExpr()
	}
}

func (p *Parser) parseProjectBlock() (ast.Stmt, error) {
	tok := p.advance() // 'project'
	nameTok, err := p.expect(lexer.STRING, "after 'project'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "after project name"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close project block"); err != nil {
		return nil, err
	}
	return &ast.ProjectBlock{Base: ast.Base{Token: tok}, Name: nameTok.Lexeme, Body: body}, nil
}

func (p *Parser) parseTargetBlock() (ast.Stmt, error) {
	tok := p.advance()
	var kind ast.TargetKind
	switch tok.Type {
	case lexer.EXECUTABLE:
		kind = ast.KindExecutable
	case lexer.LIBRARY:
		kind = ast.KindLibrary
	case lexer.SHARED_LIBRARY:
		kind = ast.KindSharedLibrary
	case lexer.STATIC_LIBRARY:
		kind = ast.KindStaticLibrary
	}
	nameTok, err := p.expect(lexer.STRING, "after target kind")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "after target name"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close target block"); err != nil {
		return nil, err
	}
	return &ast.TargetBlock{Base: ast.Base{Token: tok}, Kind: kind, Name: nameTok.Lexeme, Body: body}, nil
}

func (p *Parser) parseCompilerBlock() (ast.Stmt, error) {
	tok := p.advance()
	if _, err := p.expect(lexer.DO, "after 'compiler'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close compiler block"); err != nil {
		return nil, err
	}
	return &ast.CompilerBlock{Base: ast.Base{Token: tok}, Body: body}, nil
}

func (p *Parser) parseDependencyBlock() (ast.Stmt, error) {
	tok := p.advance()
	var name string
	switch p.peek().Type {
	case lexer.STRING, lexer.IDENT:
		name = p.advance().Lexeme
	default:
		t := p.peek()
		return nil, p.errorAt(t, fmt.Sprintf("expected string or identifier after 'dependency', got %s", t.Type))
	}
	if _, err := p.expect(lexer.DO, "after dependency name"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close dependency block"); err != nil {
		return nil, err
	}
	return &ast.DependencyBlock{Base: ast.Base{Token: tok}, Name: name, Body: body}, nil
}

func (p *Parser) parseTaskBlock() (ast.Stmt, error) {
	tok := p.advance()
	var name string
	switch p.peek().Type {
	case lexer.SYMBOL, lexer.STRING:
		name = p.advance().Lexeme
	default:
		t := p.peek()
		return nil, p.errorAt(t, fmt.Sprintf("expected symbol or string after 'task', got %s", t.Type))
	}
	if _, err := p.expect(lexer.DO, "after task name"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close task block"); err != nil {
		return nil, err
	}
	return &ast.TaskBlock{Base: ast.Base{Token: tok}, Name: name, Body: body}, nil
}

// parseIf handles both real `if` statements and the synthetic inner
// `if` produced when desugaring an `else if` chain (see parseElseTail).
func (p *Parser) parseIf() (ast.Stmt, error) {
	tok := p.advance() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "after if condition"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}

	node := &ast.If{Base: ast.Base{Token: tok}, Condition: cond, Then: thenBlock}

	if p.check(lexer.ELSE) {
		elseStmt, consumedEnd, err := p.parseElseTail()
		if err != nil {
			return nil, err
		}
		node.Else = elseStmt
		if consumedEnd {
			return node, nil
		}
	}

	if _, err := p.expect(lexer.END, "to close if statement"); err != nil {
		return nil, err
	}
	return node, nil
}

// parseElseTail consumes the 'else' keyword and what follows it. Plain
// `else ... end` (no `do` after `else`) returns a *ast.Block and the caller still needs to
// consume the outer 'end'. `else if ...` desugars into a Block wrapping
// a single nested If statement; per the grammar's own `end`-omission
// rule, the inner if consumes its own `end` (or further else-tail) and
// the outer statement must NOT expect a second `end` — so this reports
// whether the closing `end` was already consumed by the nested if.
func (p *Parser) parseElseTail() (ast.Stmt, bool, error) {
	p.advance() // 'else'

	if p.check(lexer.IF) {
		inner, err := p.parseIf()
		if err != nil {
			return nil, false, err
		}
		wrapper := &ast.Block{Statements: []ast.Stmt{inner}}
		return wrapper, true, nil
	}

	body, err := p.parseBlockBody()
	if err != nil {
		return nil, false, err
	}
	return body, false, nil
}

func (p *Parser) parseUnless() (ast.Stmt, error) {
	tok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "after unless condition"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close unless statement"); err != nil {
		return nil, err
	}
	return &ast.Unless{Base: ast.Base{Token: tok}, Condition: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	tok := p.advance()
	varTok, err := p.expect(lexer.IDENT, "after 'for'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN, "after for-loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "after for-loop iterable"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close for loop"); err != nil {
		return nil, err
	}
	return &ast.For{Base: ast.Base{Token: tok}, Variable: varTok.Lexeme, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseFunctionDef() (ast.Stmt, error) {
	tok := p.advance()
	nameTok, err := p.expect(lexer.IDENT, "after 'fn'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(lexer.RPAREN) {
		for {
			paramTok, err := p.expect(lexer.IDENT, "in parameter list")
			if err != nil {
				return nil, err
			}
			params = append(params, paramTok.Lexeme)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RPAREN, "to close parameter list"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "after function parameters"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "to close function body"); err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Base: ast.Base{Token: tok}, Name: nameTok.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.advance()
	if p.check(lexer.NEWLINE) || isBlockEnd(p.peek().Type) {
		return &ast.Return{Base: ast.Base{Token: tok}}, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Base: ast.Base{Token: tok}, Value: val}, nil
}

// parseAssignmentOrExpr distinguishes `IDENT = Expr` / `IDENT += Expr`
// from a bare expression statement, by lookahead on the token after an
// identifier.
func (p *Parser) parseAssignmentOrExpr() (ast.Stmt, error) {
	if p.check(lexer.IDENT) {
		next := p.peekAt(1).Type
		if next == lexer.ASSIGN || next == lexer.PLUSEQ {
			nameTok := p.advance()
			opTok := p.advance()
			rhs, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if opTok.Type == lexer.PLUSEQ {
				rhs = &ast.BinaryOp{
					Base:  ast.Base{Token: opTok},
					Op:    "+",
					Left:  &ast.Identifier{Base: ast.Base{Token: nameTok}, Name: nameTok.Lexeme},
					Right: rhs,
				}
			}
			return &ast.Assignment{Base: ast.Base{Token: nameTok}, Name: nameTok.Lexeme, Value: rhs}, nil
		}
	}

	tok := p.peek()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Base: ast.Base{Token: tok}, Expr: expr}, nil
}

// ---- expressions, precedence climbing ----

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.OR) {
		tok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Base: ast.Base{Token: tok}, Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEq()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.AND) {
		tok := p.advance()
		right, err := p.parseEq()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Base: ast.Base{Token: tok}, Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEq() (ast.Expr, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.EQ) || p.check(lexer.NEQ) {
		tok := p.advance()
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Base: ast.Base{Token: tok}, Op: opText(tok.Type), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseCmp() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.LT) || p.check(lexer.GT) || p.check(lexer.LTE) || p.check(lexer.GTE) {
		tok := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Base: ast.Base{Token: tok}, Op: opText(tok.Type), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.PLUS) || p.check(lexer.MINUS) {
		tok := p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Base: ast.Base{Token: tok}, Op: opText(tok.Type), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.STAR) || p.check(lexer.SLASH) || p.check(lexer.PERCENT) {
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Base: ast.Base{Token: tok}, Op: opText(tok.Type), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.check(lexer.MINUS) || p.check(lexer.NOT) {
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Base: ast.Base{Token: tok}, Op: opText(tok.Type), Operand: operand}, nil
	}
	return p.parseCall()
}

func (p *Parser) parseCall() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.check(lexer.LPAREN):
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				return expr, nil
			}
			tok := p.advance()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN, "to close call arguments"); err != nil {
				return nil, err
			}
			expr = &ast.Call{Base: ast.Base{Token: tok}, Name: ident.Name, Args: args}
		case p.check(lexer.DOT):
			p.advance()
			nameTok, err := p.expect(lexer.IDENT, "after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.Member{Base: ast.Base{Token: nameTok}, Object: expr, Name: nameTok.Lexeme}
		case p.check(lexer.LBRACKET):
			tok := p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "to close index expression"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Base: ast.Base{Token: tok}, Object: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.check(lexer.RPAREN) {
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.STRING:
		p.advance()
		return &ast.StringLit{Base: ast.Base{Token: tok}, Value: tok.Lexeme}, nil
	case lexer.NUMBER:
		p.advance()
		return p.parseNumberLit(tok)
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Base: ast.Base{Token: tok}, Value: true}, nil
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Base: ast.Base{Token: tok}, Value: false}, nil
	case lexer.NIL:
		p.advance()
		return &ast.NilLit{Base: ast.Base{Token: tok}}, nil
	case lexer.SYMBOL:
		p.advance()
		return &ast.Symbol{Base: ast.Base{Token: tok}, Name: tok.Lexeme}, nil
	case lexer.IDENT:
		p.advance()
		return &ast.Identifier{Base: ast.Base{Token: tok}, Name: tok.Lexeme}, nil
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.LBRACE:
		return p.parseMapLit()
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorAt(tok, fmt.Sprintf("unexpected token %s %q in expression", tok.Type, tok.Lexeme))
}

func (p *Parser) parseNumberLit(tok lexer.Token) (ast.Expr, error) {
	n, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, p.errorAt(tok, fmt.Sprintf("malformed number literal %q", tok.Lexeme))
	}
	isInteger := true
	for _, c := range tok.Lexeme {
		if c == '.' {
			isInteger = false
			break
		}
	}
	return &ast.NumberLit{Base: ast.Base{Token: tok}, Value: n, IsInteger: isInteger}, nil
}

func (p *Parser) parseArrayLit() (ast.Expr, error) {
	tok := p.advance() // '['
	var elems []ast.Expr
	for !p.check(lexer.RBRACKET) {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACKET, "to close array literal"); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Base: ast.Base{Token: tok}, Elements: elems}, nil
}

func (p *Parser) parseMapLit() (ast.Expr, error) {
	tok := p.advance() // '{'
	var pairs []ast.MapLitPair
	for !p.check(lexer.RBRACE) {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "after map key"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ast.MapLitPair{Key: key, Value: val})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACE, "to close map literal"); err != nil {
		return nil, err
	}
	return &ast.MapLit{Base: ast.Base{Token: tok}, Pairs: pairs}, nil
}

func opText(t lexer.TokenType) string {
	switch t {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.PERCENT:
		return "%"
	case lexer.EQ:
		return "=="
	case lexer.NEQ:
		return "!="
	case lexer.LT:
		return "<"
	case lexer.GT:
		return ">"
	case lexer.LTE:
		return "<="
	case lexer.GTE:
		return ">="
	case lexer.NOT:
		return "not"
	case lexer.AND:
		return "and"
	case lexer.OR:
		return "or"
	}
	return ""
}
