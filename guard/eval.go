package guard

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Func is a function callable from guard expressions.
type Func func(args ...interface{}) (interface{}, error)

// Context holds bindings and functions for guard evaluation.
type Context struct {
	Bindings map[string]interface{}
	Funcs    map[string]Func
}

// Eval evaluates an AST node in the given context.
// Arithmetic is 256-bit unsigned; numeric bindings of Go integer types
// are promoted to *uint256.Int.
func Eval(node Node, ctx *Context) (interface{}, error) {
	if node == nil {
		return nil, fmt.Errorf("nil node")
	}

	switch n := node.(type) {
	case *BoolLit:
		return n.Value, nil

	case *NumberLit:
		return uint256.NewInt(n.Value), nil

	case *StringLit:
		return n.Value, nil

	case *Identifier:
		val, ok := ctx.Bindings[n.Name]
		if !ok {
			return nil, fmt.Errorf("unknown identifier: %s", n.Name)
		}
		return val, nil

	case *UnaryOp:
		operand, err := Eval(n.Operand, ctx)
		if err != nil {
			return nil, err
		}
		b, ok := toBool(operand)
		if !ok {
			return nil, fmt.Errorf("operand of ! must be boolean")
		}
		return !b, nil

	case *BinaryOp:
		// Short-circuit evaluation for && and ||
		if n.Op == "&&" || n.Op == "||" {
			return evalLogical(n, ctx)
		}

		left, err := Eval(n.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := Eval(n.Right, ctx)
		if err != nil {
			return nil, err
		}
		return evalBinary(n.Op, left, right)

	case *IndexExpr:
		obj, err := Eval(n.Object, ctx)
		if err != nil {
			return nil, err
		}
		index, err := Eval(n.Index, ctx)
		if err != nil {
			return nil, err
		}
		return evalIndex(obj, index)

	case *CallExpr:
		fn, ok := ctx.Funcs[n.Func]
		if !ok {
			return nil, fmt.Errorf("unknown function: %s", n.Func)
		}
		args := make([]interface{}, len(n.Args))
		for i, arg := range n.Args {
			val, err := Eval(arg, ctx)
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		return fn(args...)

	default:
		return nil, fmt.Errorf("unknown node type: %T", node)
	}
}

func evalLogical(n *BinaryOp, ctx *Context) (interface{}, error) {
	left, err := Eval(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	leftBool, ok := toBool(left)
	if !ok {
		return nil, fmt.Errorf("left operand of %s must be boolean", n.Op)
	}

	if n.Op == "&&" && !leftBool {
		return false, nil
	}
	if n.Op == "||" && leftBool {
		return true, nil
	}

	right, err := Eval(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	rightBool, ok := toBool(right)
	if !ok {
		return nil, fmt.Errorf("right operand of %s must be boolean", n.Op)
	}
	return rightBool, nil
}

func evalBinary(op string, left, right interface{}) (interface{}, error) {
	switch op {
	case "+", "-", "*", "/", "%":
		return evalArithmetic(op, left, right)
	case ">", "<", ">=", "<=":
		return evalRelational(op, left, right)
	case "==", "!=":
		return evalEquality(op, left, right)
	default:
		return nil, fmt.Errorf("unknown binary operator: %s", op)
	}
}

func evalArithmetic(op string, left, right interface{}) (interface{}, error) {
	l, lok := toU256(left)
	r, rok := toU256(right)
	if !lok || !rok {
		return nil, fmt.Errorf("arithmetic operands must be numeric")
	}

	result := new(uint256.Int)
	switch op {
	case "+":
		result.Add(l, r)
	case "-":
		if l.Lt(r) {
			return nil, fmt.Errorf("arithmetic underflow: %s - %s", l.Dec(), r.Dec())
		}
		result.Sub(l, r)
	case "*":
		result.Mul(l, r)
	case "/":
		if r.IsZero() {
			return nil, fmt.Errorf("division by zero")
		}
		result.Div(l, r)
	case "%":
		if r.IsZero() {
			return nil, fmt.Errorf("modulo by zero")
		}
		result.Mod(l, r)
	default:
		return nil, fmt.Errorf("unknown arithmetic operator: %s", op)
	}
	return result, nil
}

func evalRelational(op string, left, right interface{}) (interface{}, error) {
	l, lok := toU256(left)
	r, rok := toU256(right)
	if !lok || !rok {
		return nil, fmt.Errorf("relational operands must be numeric")
	}

	cmp := l.Cmp(r)
	switch op {
	case ">":
		return cmp > 0, nil
	case "<":
		return cmp < 0, nil
	case ">=":
		return cmp >= 0, nil
	case "<=":
		return cmp <= 0, nil
	default:
		return nil, fmt.Errorf("unknown relational operator: %s", op)
	}
}

func evalEquality(op string, left, right interface{}) (interface{}, error) {
	equal := compareValues(left, right)
	if op == "==" {
		return equal, nil
	}
	return !equal, nil
}

func compareValues(left, right interface{}) bool {
	// Numeric comparison first
	l, lok := toU256(left)
	r, rok := toU256(right)
	if lok && rok {
		return l.Cmp(r) == 0
	}

	lb, lok := toBool(left)
	rb, rok := toBool(right)
	if lok && rok {
		return lb == rb
	}

	ls, lok := toString(left)
	rs, rok := toString(right)
	if lok && rok {
		return ls == rs
	}

	return left == right
}

// evalIndex resolves map indexing. Missing keys and nil objects read as
// zero, so guards can probe balances of unknown accounts.
func evalIndex(obj, index interface{}) (interface{}, error) {
	if obj == nil {
		return uint256.NewInt(0), nil
	}

	key, ok := toString(index)
	if !ok {
		return nil, fmt.Errorf("map index must be string")
	}

	switch o := obj.(type) {
	case map[string]interface{}:
		val, exists := o[key]
		if !exists {
			return uint256.NewInt(0), nil
		}
		return val, nil

	case map[string]*uint256.Int:
		val, exists := o[key]
		if !exists {
			return uint256.NewInt(0), nil
		}
		return val, nil

	case map[string]uint64:
		val, exists := o[key]
		if !exists {
			return uint256.NewInt(0), nil
		}
		return uint256.NewInt(val), nil

	default:
		return nil, fmt.Errorf("cannot index type %T", obj)
	}
}

// Type converters. Bindings may carry Go integers; they promote to u256.

func toU256(v interface{}) (*uint256.Int, bool) {
	switch n := v.(type) {
	case *uint256.Int:
		return n, true
	case uint256.Int:
		return &n, true
	case uint64:
		return uint256.NewInt(n), true
	case uint:
		return uint256.NewInt(uint64(n)), true
	case int:
		if n < 0 {
			return nil, false
		}
		return uint256.NewInt(uint64(n)), true
	case int64:
		if n < 0 {
			return nil, false
		}
		return uint256.NewInt(uint64(n)), true
	default:
		return nil, false
	}
}

func toBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
