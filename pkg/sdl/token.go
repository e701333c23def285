// Package sdl implements the scenescript language front-end: the lexer,
// the AST, and the statement and expression parsers. Parsing produces an
// immutable Program that the runtime package evaluates.
package sdl

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Literals
	TokenNumber TokenType = iota // numeric literal
	TokenString                  // string literal

	// Identifiers and keywords
	TokenIdent  // identifier
	TokenLet    // let
	TokenFn     // fn
	TokenIf     // if
	TokenElse   // else
	TokenFor    // for
	TokenIn     // in
	TokenTo     // to
	TokenReturn // return
	TokenTrue   // true, yes
	TokenFalse  // false, no

	// Brackets
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]

	// Punctuation
	TokenComma // ,
	TokenColon // :
	TokenDot   // .

	// Arithmetic
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // *
	TokenSlash   // /
	TokenPercent // %

	// Comparison
	TokenEq  // ==
	TokenNeq // !=
	TokenLt  // <  (also opens vector literals)
	TokenGt  // >
	TokenLte // <=
	TokenGte // >=

	// Logical
	TokenAnd  // &&
	TokenOr   // ||
	TokenBang // !

	// Assignment
	TokenAssign // =

	// Special
	TokenEOF // end of source
)

// Token represents a single lexical token with its source position.
type Token struct {
	Type   TokenType
	Text   string  // raw source text
	NumVal float64 // parsed number (for TokenNumber)
	StrVal string  // parsed string with escapes resolved (for TokenString)
	Line   int     // 1-based
	Col    int     // 1-based
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenIdent:
		return "IDENT"
	case TokenLet:
		return "LET"
	case TokenFn:
		return "FN"
	case TokenIf:
		return "IF"
	case TokenElse:
		return "ELSE"
	case TokenFor:
		return "FOR"
	case TokenIn:
		return "IN"
	case TokenTo:
		return "TO"
	case TokenReturn:
		return "RETURN"
	case TokenTrue:
		return "TRUE"
	case TokenFalse:
		return "FALSE"
	case TokenLBrace:
		return "LBRACE"
	case TokenRBrace:
		return "RBRACE"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenLBracket:
		return "LBRACKET"
	case TokenRBracket:
		return "RBRACKET"
	case TokenComma:
		return "COMMA"
	case TokenColon:
		return "COLON"
	case TokenDot:
		return "DOT"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenStar:
		return "STAR"
	case TokenSlash:
		return "SLASH"
	case TokenPercent:
		return "PERCENT"
	case TokenEq:
		return "EQ"
	case TokenNeq:
		return "NEQ"
	case TokenLt:
		return "LT"
	case TokenGt:
		return "GT"
	case TokenLte:
		return "LTE"
	case TokenGte:
		return "GTE"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenBang:
		return "BANG"
	case TokenAssign:
		return "ASSIGN"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// keywords maps reserved words to their token types. yes/no are literal
// aliases for true/false.
var keywords = map[string]TokenType{
	"let":    TokenLet,
	"fn":     TokenFn,
	"if":     TokenIf,
	"else":   TokenElse,
	"for":    TokenFor,
	"in":     TokenIn,
	"to":     TokenTo,
	"return": TokenReturn,
	"true":   TokenTrue,
	"yes":    TokenTrue,
	"false":  TokenFalse,
	"no":     TokenFalse,
}
