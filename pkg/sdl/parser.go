package sdl

import (
	"fmt"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Parser is a recursive descent parser for scenescript programs.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse tokenizes and parses a complete program.
func Parse(src string) (Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &Parser{tokens: tokens}
	var prog Program
	for p.current().Type != TokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog = append(prog, stmt)
	}
	return prog, nil
}

// ParseExpression tokenizes and parses a single expression, used by the
// REPL. Trailing tokens are an error.
func ParseExpression(src string) (Expr, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &Parser{tokens: tokens}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.current(); tok.Type != TokenEOF {
		return nil, types.NewParseError(
			fmt.Sprintf("unexpected token %s (%q) after expression", tok.Type, tok.Text)).At(tok.Line, tok.Col)
	}
	return expr, nil
}

// current returns the current token.
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without consuming it.
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

// advance consumes the current token and returns it.
func (p *Parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

// expect consumes a token of the expected type or returns a ParseError.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != tt {
		return tok, types.NewParseError(
			fmt.Sprintf("expected %s, got %s (%q)", tt, tok.Type, tok.Text)).At(tok.Line, tok.Col)
	}
	p.advance()
	return tok, nil
}

// at builds the position of a token for attaching to AST nodes.
func at(tok Token) position {
	return position{Line: tok.Line, Col: tok.Col}
}

// --- Statements ---

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.current()

	switch tok.Type {
	case TokenLet:
		return p.parseLet()
	case TokenFn:
		return p.parseFn()
	case TokenIf:
		return p.parseIf()
	case TokenFor:
		return p.parseFor()
	case TokenReturn:
		return p.parseReturn()
	case TokenLBrace:
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{position: at(tok), Body: body}, nil
	case TokenIdent:
		// An identifier directly followed by '{' is always an object
		// declaration, never an expression statement.
		switch p.peek().Type {
		case TokenLBrace:
			return p.parseObject()
		case TokenAssign:
			p.advance() // name
			p.advance() // =
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &AssignStmt{position: at(tok), Name: tok.Text, Value: value}, nil
		}
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{position: at(tok), Expr: expr}, nil
}

func (p *Parser) parseLet() (Stmt, error) {
	tok := p.advance() // let
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenAssign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &LetStmt{position: at(tok), Name: name.Text, Value: value}, nil
}

func (p *Parser) parseFn() (Stmt, error) {
	tok := p.advance() // fn
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var params []string
	for p.current().Type != TokenRParen {
		param, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, param.Text)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FnStmt{position: at(tok), Name: name.Text, Params: params, Body: body}, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	tok := p.advance() // if

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{position: at(tok), Branches: []IfBranch{{Cond: cond, Body: body}}}

	for p.current().Type == TokenElse {
		p.advance()
		if p.current().Type == TokenIf {
			p.advance()
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Branches = append(stmt.Branches, IfBranch{Cond: cond, Body: body})
			continue
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, IfBranch{Cond: nil, Body: body})
		break
	}
	return stmt, nil
}

func (p *Parser) parseFor() (Stmt, error) {
	tok := p.advance() // for
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenIn); err != nil {
		return nil, err
	}
	from, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenTo); err != nil {
		return nil, err
	}
	to, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{position: at(tok), Var: name.Text, From: from, To: to, Body: body}, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	tok := p.advance() // return
	// A return directly before '}' (or at end of source) returns unit.
	if t := p.current().Type; t == TokenRBrace || t == TokenEOF {
		return &ReturnStmt{position: at(tok)}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{position: at(tok), Value: value}, nil
}

func (p *Parser) parseObject() (Stmt, error) {
	tok := p.advance() // kind
	body, err := p.parseDictLiteral()
	if err != nil {
		return nil, err
	}
	return &ObjectStmt{position: at(tok), Kind: tok.Text, Body: body}, nil
}

// parseBlock parses { stmt* }.
func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	var body []Stmt
	for p.current().Type != TokenRBrace {
		if p.current().Type == TokenEOF {
			tok := p.current()
			return nil, types.NewParseError("unterminated block, expected '}'").At(tok.Line, tok.Col)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance() // }
	return body, nil
}

// --- Expressions ---

// parseExpr is the entry point: handles the lowest precedence operators.
// Precedence (low to high):
//
//	||
//	&&
//	==, !=
//	<, >, <=, >=
//	+, -
//	*, /, %
//	unary -, unary !
//	call, index
//	literals, identifiers, (expr), <x,y,z>, [...], {...}
func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		tok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(tok), Op: TokenOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		tok := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(tok), Op: TokenAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenEq || p.current().Type == TokenNeq {
		tok := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(tok), Op: tok.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current().Type {
		case TokenLt, TokenGt, TokenLte, TokenGte:
			tok := p.advance()
			right, err := p.parseAddition()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{position: at(tok), Op: tok.Type, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseAddition() (Expr, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		tok := p.advance()
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(tok), Op: tok.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplication() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenStar || p.current().Type == TokenSlash ||
		p.current().Type == TokenPercent {
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(tok), Op: tok.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if tok := p.current(); tok.Type == TokenMinus || tok.Type == TokenBang {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{position: at(tok), Op: tok.Type, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenLBracket {
		tok := p.advance()
		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
		node = &IndexExpr{position: at(tok), Target: node, Index: index}
	}
	return node, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return &LiteralExpr{position: at(tok), Token: TokenNumber, NumVal: tok.NumVal}, nil
	case TokenString:
		p.advance()
		return &LiteralExpr{position: at(tok), Token: TokenString, StrVal: tok.StrVal}, nil
	case TokenTrue:
		p.advance()
		return &LiteralExpr{position: at(tok), Token: TokenTrue}, nil
	case TokenFalse:
		p.advance()
		return &LiteralExpr{position: at(tok), Token: TokenFalse}, nil
	case TokenIdent:
		p.advance()
		if p.current().Type == TokenLParen {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &CallExpr{position: at(tok), Name: tok.Text, Args: args}, nil
		}
		return &IdentExpr{position: at(tok), Name: tok.Text}, nil
	case TokenLParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenLt:
		return p.parseVectorLiteral()
	case TokenLBracket:
		return p.parseArrayLiteral()
	case TokenLBrace:
		return p.parseDictLiteral()
	default:
		return nil, types.NewParseError(
			fmt.Sprintf("unexpected token %s (%q)", tok.Type, tok.Text)).At(tok.Line, tok.Col)
	}
}

// parseVectorLiteral parses <x, y, z>: exactly three components. The
// components parse at additive precedence so a relational '>' cannot be
// mistaken for the closing bracket; parenthesize to compare inside a
// vector literal.
func (p *Parser) parseVectorLiteral() (Expr, error) {
	tok := p.advance() // <

	x, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	y, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	z, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	if p.current().Type == TokenComma {
		p.advance()
	}
	if _, err := p.expect(TokenGt); err != nil {
		return nil, err
	}

	return &VectorExpr{position: at(tok), X: x, Y: y, Z: z}, nil
}

// parseArrayLiteral parses [expr, expr, ...]. Trailing commas are fine.
func (p *Parser) parseArrayLiteral() (Expr, error) {
	tok := p.advance() // [

	var elems []Expr
	for p.current().Type != TokenRBracket {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}

	return &ArrayExpr{position: at(tok), Elems: elems}, nil
}

// parseDictLiteral parses { key: value, ... }. Keys are identifiers; a
// bare identifier entry is shorthand for key: key, reading the value from
// the enclosing scope.
func (p *Parser) parseDictLiteral() (*DictExpr, error) {
	tok := p.current()
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}

	var entries []DictEntry
	for p.current().Type != TokenRBrace {
		key, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}

		var value Expr
		if p.current().Type == TokenColon {
			p.advance()
			value, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		} else {
			// Field shorthand: radius is sugar for radius: radius.
			value = &IdentExpr{position: at(key), Name: key.Text}
		}
		entries = append(entries, DictEntry{Key: key.Text, Value: value})

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}

	return &DictExpr{position: at(tok), Entries: entries}, nil
}

// parseArgList parses (expr, expr, ...).
func (p *Parser) parseArgList() ([]Expr, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var args []Expr
	for p.current().Type != TokenRParen {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	return args, nil
}
