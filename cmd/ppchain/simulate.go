package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/221-V/NIICHAVO/kinetics"
)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	timeEnd := fs.Float64("time", 0, "End time (overrides config tspan)")
	initial := fs.String("initial", "", `Initial quantities, e.g. "hydrogen=1000"`)
	equilibrium := fs.Bool("equilibrium", false, "Stop when the system stabilizes")
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ppchain simulate [options]

Integrate the configured net under mass-action kinetics and report
the final state.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	net, err := netForSystem(cfg.System)
	if err != nil {
		return err
	}

	tspan := [2]float64{0, 10}
	method := "tsit5"
	var rates map[string]float64
	if cfg.Solver != nil {
		if cfg.Solver.Tspan[1] > cfg.Solver.Tspan[0] {
			tspan = cfg.Solver.Tspan
		}
		if cfg.Solver.Method != "" {
			method = cfg.Solver.Method
		}
		rates = cfg.Solver.Rates
	}
	if *timeEnd > 0 {
		tspan[1] = *timeEnd
	}

	state := make(map[string]float64)
	if cfg.Genesis != nil {
		for id, n := range cfg.Genesis.Supplies {
			state[id] = float64(n)
		}
	}
	overrides, err := parsePairs(*initial)
	if err != nil {
		return err
	}
	for id, n := range overrides {
		if net.SpeciesByID(id) == nil {
			return fmt.Errorf("unknown species %q", id)
		}
		state[id] = float64(n)
	}

	prob := kinetics.NewProblem(net, state, tspan, rates)
	solver := kinetics.MethodByName(method)

	var final map[string]float64
	if *equilibrium {
		sol, result := kinetics.SolveUntilEquilibrium(prob, solver, nil, nil)
		final = sol.GetFinalState()
		if result.Reached {
			fmt.Printf("Equilibrium reached at t=%.4f after %d steps\n", result.Time, result.Steps)
		} else {
			fmt.Printf("No equilibrium (%s), stopped at t=%.4f\n", result.Reason, result.Time)
		}
	} else {
		sol := kinetics.Solve(prob, solver, nil)
		final = sol.GetFinalState()
		fmt.Printf("Integrated [%g, %g] with %s (%d points)\n",
			tspan[0], tspan[1], solver.Name, len(sol.T))
	}

	fmt.Println("Final state:")
	for _, id := range prob.Labels() {
		fmt.Printf("  %-12s %12.4f\n", id, final[id])
	}
	fmt.Printf("Total mass: %.4f\n", prob.TotalMass(final))
	return nil
}
