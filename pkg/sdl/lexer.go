package sdl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// Lexer tokenizes scenescript source text.
type Lexer struct {
	input  string
	pos    int
	line   int
	col    int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize scans the entire source and returns all tokens, ending with an
// EOF token. The first malformed token aborts the scan with a LexError.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the entire input and returns all tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return l.tokens, nil
}

// bump advances the cursor by n bytes within the current line.
func (l *Lexer) bump(n int) {
	l.pos += n
	l.col += n
}

// next returns the next token from the input.
func (l *Lexer) next() (Token, error) {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}, nil
	}

	line, col := l.line, l.col
	ch := l.input[l.pos]

	// String literals
	if ch == '"' {
		return l.readString()
	}

	// Number literals
	if ch >= '0' && ch <= '9' {
		return l.readNumber()
	}

	// Two-character operators
	if l.pos+1 < len(l.input) {
		two := l.input[l.pos : l.pos+2]
		switch two {
		case "==":
			l.bump(2)
			return Token{Type: TokenEq, Text: "==", Line: line, Col: col}, nil
		case "!=":
			l.bump(2)
			return Token{Type: TokenNeq, Text: "!=", Line: line, Col: col}, nil
		case "<=":
			l.bump(2)
			return Token{Type: TokenLte, Text: "<=", Line: line, Col: col}, nil
		case ">=":
			l.bump(2)
			return Token{Type: TokenGte, Text: ">=", Line: line, Col: col}, nil
		case "&&":
			l.bump(2)
			return Token{Type: TokenAnd, Text: "&&", Line: line, Col: col}, nil
		case "||":
			l.bump(2)
			return Token{Type: TokenOr, Text: "||", Line: line, Col: col}, nil
		}
	}

	// Single-character tokens
	var typ TokenType
	switch ch {
	case '+':
		typ = TokenPlus
	case '-':
		typ = TokenMinus
	case '*':
		typ = TokenStar
	case '/':
		typ = TokenSlash
	case '%':
		typ = TokenPercent
	case '<':
		typ = TokenLt
	case '>':
		typ = TokenGt
	case '{':
		typ = TokenLBrace
	case '}':
		typ = TokenRBrace
	case '(':
		typ = TokenLParen
	case ')':
		typ = TokenRParen
	case '[':
		typ = TokenLBracket
	case ']':
		typ = TokenRBracket
	case ',':
		typ = TokenComma
	case ':':
		typ = TokenColon
	case '.':
		typ = TokenDot
	case '=':
		typ = TokenAssign
	case '!':
		typ = TokenBang
	default:
		// Identifiers and keywords
		if isIdentStart(ch) {
			return l.readIdentifier(), nil
		}
		return Token{}, types.NewLexError(
			fmt.Sprintf("unexpected character %q", string(ch))).At(line, col)
	}

	l.bump(1)
	return Token{Type: typ, Text: string(ch), Line: line, Col: col}, nil
}

// readString reads a double-quoted string literal.
func (l *Lexer) readString() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	l.bump(1) // skip opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			escaped := l.input[l.pos+1]
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(escaped)
			}
			l.bump(2)
			continue
		}
		if ch == '\n' {
			break
		}
		if ch == '"' {
			l.bump(1) // skip closing quote
			return Token{
				Type:   TokenString,
				Text:   l.input[start:l.pos],
				StrVal: sb.String(),
				Line:   line,
				Col:    col,
			}, nil
		}
		sb.WriteByte(ch)
		l.bump(1)
	}

	return Token{}, types.NewLexError("unterminated string").At(line, col)
}

// readNumber reads a numeric literal. Negative numbers come from unary
// minus in the parser.
func (l *Lexer) readNumber() (Token, error) {
	line, col := l.line, l.col
	start := l.pos
	sawDot := false

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= '0' && ch <= '9' {
			l.bump(1)
		} else if ch == '.' && !sawDot {
			// Only part of the number when a digit follows.
			if l.pos+1 < len(l.input) && l.input[l.pos+1] >= '0' && l.input[l.pos+1] <= '9' {
				sawDot = true
				l.bump(1)
			} else {
				break
			}
		} else {
			break
		}
	}

	raw := l.input[start:l.pos]
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Token{}, types.NewLexError(
			fmt.Sprintf("invalid number %q", raw)).At(line, col)
	}
	return Token{Type: TokenNumber, Text: raw, NumVal: f, Line: line, Col: col}, nil
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.bump(1)
	}

	word := l.input[start:l.pos]
	if typ, ok := keywords[word]; ok {
		return Token{Type: typ, Text: word, Line: line, Col: col}
	}
	return Token{Type: TokenIdent, Text: word, Line: line, Col: col}
}

// skipWhitespaceAndComments advances past whitespace and # comments,
// tracking line boundaries.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		switch ch := l.input[l.pos]; {
		case ch == '\n':
			l.pos++
			l.line++
			l.col = 1
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.bump(1)
		case ch == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
