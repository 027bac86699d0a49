package kinetics

import (
	"math"
	"testing"

	"github.com/221-V/NIICHAVO/stoich"
)

func hydrogenProblem(tspan [2]float64) *Problem {
	initial := map[string]float64{
		stoich.Hydrogen1: 1000.0,
		stoich.Hydrogen2: 0.0,
	}
	return NewProblem(stoich.HydrogenEquilibrium(), initial, tspan, nil)
}

func TestNewProblem(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 10})

	if prob.U0[stoich.Hydrogen1] != 1000.0 {
		t.Errorf("U0[hydrogen] = %f, want 1000", prob.U0[stoich.Hydrogen1])
	}
	if prob.Tspan[0] != 0 || prob.Tspan[1] != 10 {
		t.Errorf("Tspan = %v, want [0 10]", prob.Tspan)
	}
	labels := prob.Labels()
	if len(labels) != 2 || labels[0] != stoich.Hydrogen1 || labels[1] != stoich.Hydrogen2 {
		t.Errorf("labels = %v", labels)
	}
}

func TestRateOverride(t *testing.T) {
	net := stoich.HydrogenEquilibrium()
	initial := map[string]float64{stoich.Hydrogen1: 10.0}
	prob := NewProblem(net, initial, [2]float64{0, 1}, map[string]float64{
		stoich.Bind:       0.0,
		stoich.Dissociate: 0.0,
	})

	sol := Solve(prob, nil, nil)
	final := sol.GetFinalState()
	if math.Abs(final[stoich.Hydrogen1]-10.0) > 1e-9 {
		t.Errorf("hydrogen changed with zero rates: %f", final[stoich.Hydrogen1])
	}
}

func TestSolveConservesMass(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 1})
	sol := Solve(prob, Tsit5(), DefaultOptions())

	if len(sol.T) < 2 {
		t.Fatal("no integration steps taken")
	}

	initialMass := prob.TotalMass(sol.U[0])
	for i, state := range sol.U {
		mass := prob.TotalMass(state)
		if math.Abs(mass-initialMass) > 1e-3*initialMass {
			t.Fatalf("mass at step %d = %f, want %f", i, mass, initialMass)
		}
	}
}

func TestSolveMonotonicTime(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 0.5})
	sol := Solve(prob, nil, nil)

	for i := 1; i < len(sol.T); i++ {
		if sol.T[i] <= sol.T[i-1] {
			t.Fatalf("time not increasing at step %d: %f <= %f", i, sol.T[i], sol.T[i-1])
		}
	}
	if final := sol.T[len(sol.T)-1]; math.Abs(final-0.5) > 1e-9 {
		t.Errorf("final time = %f, want 0.5", final)
	}
}

func TestSolveBindConsumesHydrogen(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 0.01})
	sol := Solve(prob, nil, nil)

	final := sol.GetFinalState()
	if final[stoich.Hydrogen1] >= 1000.0 {
		t.Errorf("hydrogen did not decrease: %f", final[stoich.Hydrogen1])
	}
	if final[stoich.Hydrogen2] <= 0.0 {
		t.Errorf("h2 did not form: %f", final[stoich.Hydrogen2])
	}
}

func TestSolveFixedStepRK4(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 0.1})
	opts := &Options{Dt: 0.001, Maxiters: 1000, Adaptive: false}
	sol := Solve(prob, RK4(), opts)

	initialMass := prob.TotalMass(sol.U[0])
	finalMass := prob.TotalMass(sol.GetFinalState())
	if math.Abs(finalMass-initialMass) > 1e-3*initialMass {
		t.Errorf("final mass = %f, want %f", finalMass, initialMass)
	}
}

func TestSolversAgree(t *testing.T) {
	tsolve := func(solver *Solver) float64 {
		prob := hydrogenProblem([2]float64{0, 0.05})
		sol := Solve(prob, solver, AccurateOptions())
		return sol.GetFinalState()[stoich.Hydrogen1]
	}

	a := tsolve(Tsit5())
	b := tsolve(RK45())
	if math.Abs(a-b) > 1e-2 {
		t.Errorf("Tsit5 and RK45 disagree: %f vs %f", a, b)
	}
}

func TestGetVariable(t *testing.T) {
	sol := &Solution{
		T: []float64{0, 1, 2},
		U: []map[string]float64{
			{"a": 10.0, "b": 0.0},
			{"a": 5.0, "b": 5.0},
			{"a": 0.0, "b": 10.0},
		},
		Labels: []string{"a", "b"},
	}

	a := sol.GetVariable("a")
	if len(a) != 3 || a[0] != 10.0 || a[2] != 0.0 {
		t.Errorf("GetVariable(a) = %v", a)
	}
	if final := sol.GetFinalState(); final["b"] != 10.0 {
		t.Errorf("final b = %f", final["b"])
	}

	empty := &Solution{}
	if empty.GetFinalState() != nil {
		t.Error("expected nil final state for empty solution")
	}
}

func TestMethodByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"rk45", "RK45"},
		{"rk4", "RK4"},
		{"euler", "Euler"},
		{"", "Tsit5"},
		{"unknown", "Tsit5"},
	}
	for _, tt := range tests {
		if got := MethodByName(tt.name).Name; got != tt.want {
			t.Errorf("MethodByName(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestSolveUntilEquilibrium(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 1000})
	sol, result := SolveUntilEquilibrium(prob, nil, nil, nil)

	if !result.Reached {
		t.Fatalf("equilibrium not reached: %s (max change %g)", result.Reason, result.MaxChange)
	}
	if result.Reason != "equilibrium_reached" {
		t.Errorf("reason = %q", result.Reason)
	}
	if result.Time >= 1000 {
		t.Errorf("equilibrium time = %f, expected early stop", result.Time)
	}
	if len(sol.T) == 0 {
		t.Fatal("empty trajectory")
	}

	// At equilibrium the bind and dissociate fluxes cancel:
	// 1.0*H == 0.5*H2.
	h := result.State[stoich.Hydrogen1]
	h2 := result.State[stoich.Hydrogen2]
	if math.Abs(1.0*h-0.5*h2) > 1e-2 {
		t.Errorf("detailed balance violated: H=%f H2=%f", h, h2)
	}

	initialMass := prob.TotalMass(sol.U[0])
	if mass := prob.TotalMass(result.State); math.Abs(mass-initialMass) > 1e-3*initialMass {
		t.Errorf("mass at equilibrium = %f, want %f", mass, initialMass)
	}
}

func TestIsEquilibrium(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 1})

	if IsEquilibrium(prob, map[string]float64{stoich.Hydrogen1: 1000.0, stoich.Hydrogen2: 0.0}, 1e-6) {
		t.Error("initial state should not be equilibrium")
	}
	if !IsEquilibrium(prob, map[string]float64{stoich.Hydrogen1: 0.0, stoich.Hydrogen2: 0.0}, 1e-6) {
		t.Error("empty state should be equilibrium")
	}
}

func TestFindEquilibrium(t *testing.T) {
	prob := hydrogenProblem([2]float64{0, 1000})
	state, ok := FindEquilibrium(prob)
	if !ok {
		t.Fatal("FindEquilibrium did not converge")
	}
	if state[stoich.Hydrogen2] <= 0 {
		t.Errorf("no H2 at equilibrium: %f", state[stoich.Hydrogen2])
	}
}
