// Package guard implements a small expression language for gating
// operations: boolean and arithmetic expressions over caller-supplied
// bindings, with 256-bit unsigned arithmetic.
//
// Expressions look like:
//
//	balances[caller] >= 2 && to != address(0)
//	sum("balances") == totalSupply
package guard

// Node is an AST node of a parsed guard expression.
type Node interface {
	node()
}

// BoolLit is a boolean literal (true/false).
type BoolLit struct {
	Value bool
}

// NumberLit is an unsigned decimal integer literal.
type NumberLit struct {
	Value uint64
}

// StringLit is a double- or single-quoted string literal.
type StringLit struct {
	Value string
}

// Identifier resolves against the evaluation bindings.
type Identifier struct {
	Name string
}

// UnaryOp is logical negation: !x.
type UnaryOp struct {
	Op      string
	Operand Node
}

// BinaryOp is a binary operation: arithmetic, relational, or logical.
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

// IndexExpr is map indexing: object[index].
type IndexExpr struct {
	Object Node
	Index  Node
}

// CallExpr invokes a named function from the evaluation context.
type CallExpr struct {
	Func string
	Args []Node
}

func (*BoolLit) node()    {}
func (*NumberLit) node()  {}
func (*StringLit) node()  {}
func (*Identifier) node() {}
func (*UnaryOp) node()    {}
func (*BinaryOp) node()   {}
func (*IndexExpr) node()  {}
func (*CallExpr) node()   {}
