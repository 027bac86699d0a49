package guard

import "fmt"

// TokenType identifies a lexical token class.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenOperator // + - * / % ! && || == != < <= > >=
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenIllegal
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenComma:
		return ","
	default:
		return "illegal"
	}
}

// Token is one lexical token with its position in the input.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

// Lexer tokenizes a guard expression.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token, advancing the lexer.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case isLetter(c):
		for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
			l.pos++
		}
		return Token{Type: TokenIdent, Literal: l.input[start:l.pos], Pos: start}

	case isDigit(c):
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: start}

	case c == '"' || c == '\'':
		quote := c
		l.pos++
		strStart := l.pos
		for l.pos < len(l.input) && l.input[l.pos] != quote {
			l.pos++
		}
		if l.pos >= len(l.input) {
			return Token{Type: TokenIllegal, Literal: "unterminated string", Pos: start}
		}
		lit := l.input[strStart:l.pos]
		l.pos++ // closing quote
		return Token{Type: TokenString, Literal: lit, Pos: start}

	case c == '(':
		l.pos++
		return Token{Type: TokenLParen, Literal: "(", Pos: start}
	case c == ')':
		l.pos++
		return Token{Type: TokenRParen, Literal: ")", Pos: start}
	case c == '[':
		l.pos++
		return Token{Type: TokenLBracket, Literal: "[", Pos: start}
	case c == ']':
		l.pos++
		return Token{Type: TokenRBracket, Literal: "]", Pos: start}
	case c == ',':
		l.pos++
		return Token{Type: TokenComma, Literal: ",", Pos: start}

	case c == '&' || c == '|':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == c {
			l.pos += 2
			return Token{Type: TokenOperator, Literal: l.input[start:l.pos], Pos: start}
		}
		l.pos++
		return Token{Type: TokenIllegal, Literal: string(c), Pos: start}

	case c == '=' || c == '!' || c == '<' || c == '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
		}
		lit := l.input[start:l.pos]
		if lit == "=" {
			return Token{Type: TokenIllegal, Literal: "=", Pos: start}
		}
		return Token{Type: TokenOperator, Literal: lit, Pos: start}

	case c == '+' || c == '-' || c == '*' || c == '/' || c == '%':
		l.pos++
		return Token{Type: TokenOperator, Literal: string(c), Pos: start}

	default:
		l.pos++
		return Token{Type: TokenIllegal, Literal: fmt.Sprintf("%c", c), Pos: start}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
