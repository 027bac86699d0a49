package guard

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Compiled represents a pre-compiled guard expression.
type Compiled struct {
	expr string
	ast  Node
}

// Compile parses a guard expression into a compiled form for repeated
// evaluation.
func Compile(expr string) (*Compiled, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	parser := NewParser(expr)
	ast, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return &Compiled{
		expr: expr,
		ast:  ast,
	}, nil
}

// String returns the original expression.
func (c *Compiled) String() string {
	return c.expr
}

// AST returns the parsed abstract syntax tree.
func (c *Compiled) AST() Node {
	return c.ast
}

// Evaluate parses and evaluates a guard expression.
// Returns true if the guard passes, false if it fails, error if invalid.
func Evaluate(expr string, bindings map[string]interface{}, funcs map[string]Func) (bool, error) {
	if expr == "" {
		return true, nil // Empty guard always passes
	}

	compiled, err := Compile(expr)
	if err != nil {
		return false, err
	}

	return EvalCompiled(compiled, bindings, funcs)
}

// EvalCompiled evaluates a pre-compiled guard expression.
func EvalCompiled(compiled *Compiled, bindings map[string]interface{}, funcs map[string]Func) (bool, error) {
	if compiled == nil || compiled.ast == nil {
		return true, nil // Nil guard always passes
	}

	ctx := &Context{
		Bindings: bindings,
		Funcs:    funcs,
	}
	if ctx.Bindings == nil {
		ctx.Bindings = make(map[string]interface{})
	}
	if ctx.Funcs == nil {
		ctx.Funcs = make(map[string]Func)
	}

	addBuiltins(ctx)

	result, err := Eval(compiled.ast, ctx)
	if err != nil {
		return false, err
	}

	b, ok := toBool(result)
	if !ok {
		return false, fmt.Errorf("guard expression must evaluate to boolean, got %T", result)
	}

	return b, nil
}

// addBuiltins adds built-in functions to the context.
func addBuiltins(ctx *Context) {
	// address(n) - returns an address literal; address(0) is the zero address.
	if _, exists := ctx.Funcs["address"]; !exists {
		ctx.Funcs["address"] = func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("address() requires exactly 1 argument")
			}
			n, ok := toU256(args[0])
			if !ok {
				return nil, fmt.Errorf("address() argument must be numeric")
			}
			if n.IsZero() {
				return "0x0000000000000000000000000000000000000000", nil
			}
			return fmt.Sprintf("0x%040x", n.Bytes()), nil
		}
	}

	// sum(m) - sums the numeric values of a map binding.
	if _, exists := ctx.Funcs["sum"]; !exists {
		ctx.Funcs["sum"] = func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("sum() requires exactly 1 argument")
			}
			total := uint256.NewInt(0)
			switch m := args[0].(type) {
			case map[string]*uint256.Int:
				for _, v := range m {
					total.Add(total, v)
				}
			case map[string]uint64:
				for _, v := range m {
					total.Add(total, uint256.NewInt(v))
				}
			case map[string]interface{}:
				for k, v := range m {
					n, ok := toU256(v)
					if !ok {
						return nil, fmt.Errorf("sum() value %q is not numeric", k)
					}
					total.Add(total, n)
				}
			default:
				return nil, fmt.Errorf("sum() argument must be a map, got %T", args[0])
			}
			return total, nil
		}
	}
}
