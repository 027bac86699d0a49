package guard

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
)

func TestEvaluateBasics(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		bindings map[string]interface{}
		want     bool
	}{
		{"true literal", "true", nil, true},
		{"false literal", "false", nil, false},
		{"number comparison", "2 >= 2", nil, true},
		{"strict comparison", "1 > 2", nil, false},
		{"arithmetic", "2 * 3 + 1 == 7", nil, true},
		{"precedence", "2 + 3 * 4 == 14", nil, true},
		{"parens", "(2 + 3) * 4 == 20", nil, true},
		{"modulo", "10 % 3 == 1", nil, true},
		{"division", "9 / 2 == 4", nil, true},
		{"negation", "!(1 == 2)", nil, true},
		{"and", "true && 1 < 2", nil, true},
		{"or", "false || 2 == 2", nil, true},
		{
			"identifier binding",
			"amount >= 4",
			map[string]interface{}{"amount": uint256.NewInt(4)},
			true,
		},
		{
			"uint64 binding promotes",
			"amount * 2 == 10",
			map[string]interface{}{"amount": uint64(5)},
			true,
		},
		{
			"string equality",
			"caller == 'alice'",
			map[string]interface{}{"caller": "alice"},
			true,
		},
		{
			"map index",
			"balances['alice'] >= 2",
			map[string]interface{}{
				"balances": map[string]*uint256.Int{"alice": uint256.NewInt(3)},
			},
			true,
		},
		{
			"missing map key reads zero",
			"balances['nobody'] == 0",
			map[string]interface{}{
				"balances": map[string]*uint256.Int{},
			},
			true,
		},
		{
			"index with binding key",
			"balances[caller] >= 2",
			map[string]interface{}{
				"caller":   "bob",
				"balances": map[string]uint64{"bob": 7},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, tt.bindings, nil)
			if err != nil {
				t.Fatalf("Evaluate(%q) failed: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"unknown identifier", "nonesuch > 0"},
		{"division by zero", "1 / 0 == 0"},
		{"modulo by zero", "1 % 0 == 0"},
		{"underflow", "1 - 2 == 0"},
		{"unknown function", "frobnicate(1) == 0"},
		{"non boolean result", "1 + 1"},
		{"dangling operator", "1 +"},
		{"unterminated string", "'abc"},
		{"single ampersand", "true & false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Evaluate(tt.expr, nil, nil); err == nil {
				t.Errorf("Evaluate(%q) should fail", tt.expr)
			}
		})
	}
}

func TestShortCircuit(t *testing.T) {
	// Right side would error (unknown identifier); short circuit must skip it.
	got, err := Evaluate("false && nonesuch > 0", nil, nil)
	if err != nil {
		t.Fatalf("&& should short-circuit: %v", err)
	}
	if got {
		t.Error("Expected false")
	}

	got, err = Evaluate("true || nonesuch > 0", nil, nil)
	if err != nil {
		t.Fatalf("|| should short-circuit: %v", err)
	}
	if !got {
		t.Error("Expected true")
	}
}

func TestCompileReuse(t *testing.T) {
	compiled, err := Compile("balances[caller] >= need")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if compiled.String() != "balances[caller] >= need" {
		t.Errorf("String() = %q", compiled.String())
	}
	if compiled.AST() == nil {
		t.Fatal("AST() should not be nil")
	}

	balances := map[string]*uint256.Int{"a": uint256.NewInt(5)}
	for _, tc := range []struct {
		need uint64
		want bool
	}{{4, true}, {5, true}, {6, false}} {
		got, err := EvalCompiled(compiled, map[string]interface{}{
			"caller":   "a",
			"balances": balances,
			"need":     tc.need,
		}, nil)
		if err != nil {
			t.Fatalf("EvalCompiled failed: %v", err)
		}
		if got != tc.want {
			t.Errorf("need=%d: got %v, want %v", tc.need, got, tc.want)
		}
	}
}

func TestAddressBuiltin(t *testing.T) {
	got, err := Evaluate("to != address(0)", map[string]interface{}{
		"to": "0xa11ce",
	}, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !got {
		t.Error("Non-zero address should differ from address(0)")
	}

	got, err = Evaluate("to == address(0)", map[string]interface{}{
		"to": "0x0000000000000000000000000000000000000000",
	}, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !got {
		t.Error("Zero address should equal address(0)")
	}
}

func TestCustomFuncs(t *testing.T) {
	funcs := map[string]Func{
		"sum": func(args ...interface{}) (interface{}, error) {
			total := uint256.NewInt(0)
			for _, a := range args {
				if n, ok := toU256(a); ok {
					total.Add(total, n)
				}
			}
			return total, nil
		},
	}

	got, err := Evaluate("sum(1, 2, 3) == 6", nil, funcs)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !got {
		t.Error("sum(1,2,3) should equal 6")
	}
}

func TestEmptyGuardPasses(t *testing.T) {
	got, err := Evaluate("", nil, nil)
	if err != nil || !got {
		t.Errorf("Empty guard should pass, got (%v, %v)", got, err)
	}

	if _, err := Compile(""); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("Compile(\"\") should report empty expression, got %v", err)
	}
}
