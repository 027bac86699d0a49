package guard

import (
	"fmt"
	"strconv"
)

// Parser parses guard expressions into an AST using precedence climbing.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// Parse parses the full expression and requires that all input is consumed.
func (p *Parser) Parse() (Node, error) {
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %v %q at position %d", p.cur.Type, p.cur.Literal, p.cur.Pos)
	}
	return node, nil
}

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOperator && p.cur.Literal == "||" {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOperator && p.cur.Literal == "&&" {
		p.nextToken()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Node, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOperator && (p.cur.Literal == "==" || p.cur.Literal == "!=") {
		op := p.cur.Literal
		p.nextToken()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOperator && isRelational(p.cur.Literal) {
		op := p.cur.Literal
		p.nextToken()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOperator && (p.cur.Literal == "+" || p.cur.Literal == "-") {
		op := p.cur.Literal
		p.nextToken()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenOperator &&
		(p.cur.Literal == "*" || p.cur.Literal == "/" || p.cur.Literal == "%") {
		op := p.cur.Literal
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur.Type == TokenOperator && p.cur.Literal == "!" {
		p.nextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "!", Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles indexing after a primary: obj[key], obj[a][b].
func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenLBracket {
		p.nextToken()
		index, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRBracket {
			return nil, fmt.Errorf("expected ], got %v at position %d", p.cur.Type, p.cur.Pos)
		}
		p.nextToken()
		node = &IndexExpr{Object: node, Index: index}
	}
	return node, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	switch p.cur.Type {
	case TokenNumber:
		n, err := strconv.ParseUint(p.cur.Literal, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q at position %d", p.cur.Literal, p.cur.Pos)
		}
		p.nextToken()
		return &NumberLit{Value: n}, nil

	case TokenString:
		s := p.cur.Literal
		p.nextToken()
		return &StringLit{Value: s}, nil

	case TokenIdent:
		name := p.cur.Literal
		p.nextToken()

		switch name {
		case "true":
			return &BoolLit{Value: true}, nil
		case "false":
			return &BoolLit{Value: false}, nil
		}

		// Function call
		if p.cur.Type == TokenLParen {
			p.nextToken()
			var args []Node
			for p.cur.Type != TokenRParen {
				arg, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.Type == TokenComma {
					p.nextToken()
				}
			}
			p.nextToken() // consume )
			return &CallExpr{Func: name, Args: args}, nil
		}

		return &Identifier{Name: name}, nil

	case TokenLParen:
		p.nextToken()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRParen {
			return nil, fmt.Errorf("expected ), got %v at position %d", p.cur.Type, p.cur.Pos)
		}
		p.nextToken()
		return node, nil

	case TokenIllegal:
		return nil, fmt.Errorf("illegal token %q at position %d", p.cur.Literal, p.cur.Pos)

	default:
		return nil, fmt.Errorf("unexpected %v at position %d", p.cur.Type, p.cur.Pos)
	}
}

func isRelational(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}
