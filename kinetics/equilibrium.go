package kinetics

import "math"

// EquilibriumOptions configures equilibrium detection during solving.
type EquilibriumOptions struct {
	// Tolerance is the max derivative magnitude counted as stable.
	Tolerance float64
	// ConsecutiveSteps below tolerance required before declaring
	// equilibrium.
	ConsecutiveSteps int
	// MinTime before checking starts.
	MinTime float64
	// CheckInterval checks every N accepted steps (0 = every step).
	CheckInterval int
}

// DefaultEquilibriumOptions returns sensible detection defaults.
func DefaultEquilibriumOptions() *EquilibriumOptions {
	return &EquilibriumOptions{
		Tolerance:        1e-6,
		ConsecutiveSteps: 5,
		MinTime:          0.1,
		CheckInterval:    10,
	}
}

// EquilibriumResult describes how and where integration stopped.
type EquilibriumResult struct {
	Reached   bool
	Time      float64
	State     map[string]float64
	MaxChange float64
	Steps     int
	Reason    string
}

// SolveUntilEquilibrium integrates until the derivatives stay below
// tolerance for enough consecutive checks, or the time span runs out.
func SolveUntilEquilibrium(prob *Problem, solver *Solver, opts *Options, eqOpts *EquilibriumOptions) (*Solution, *EquilibriumResult) {
	if solver == nil {
		solver = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if eqOpts == nil {
		eqOpts = DefaultEquilibriumOptions()
	}

	t0, tf := prob.Tspan[0], prob.Tspan[1]
	f := prob.deriv
	n := len(prob.vecU0)
	numStages := len(solver.C)

	tOut := []float64{t0}
	uOut := [][]float64{append([]float64(nil), prob.vecU0...)}
	tcur := t0
	ucur := append([]float64(nil), prob.vecU0...)
	dtcur := opts.Dt
	nsteps := 0
	consecutiveSmall := 0
	checkCounter := 0

	result := &EquilibriumResult{Reason: "time_exhausted"}

	for tcur < tf && nsteps < opts.Maxiters {
		if tcur+dtcur > tf {
			dtcur = tf - tcur
		}

		k := make([][]float64, numStages)
		k[0] = f(tcur, ucur)
		for stage := 1; stage < numStages; stage++ {
			ustage := append([]float64(nil), ucur...)
			for j := 0; j < stage; j++ {
				aj := 0.0
				if len(solver.A) > stage && len(solver.A[stage]) > j {
					aj = solver.A[stage][j]
				}
				if aj != 0 {
					scale := dtcur * aj
					for i := 0; i < n; i++ {
						ustage[i] += scale * k[j][i]
					}
				}
			}
			k[stage] = f(tcur+solver.C[stage]*dtcur, ustage)
		}

		unext := append([]float64(nil), ucur...)
		for j := 0; j < len(solver.B); j++ {
			if solver.B[j] != 0 {
				scale := dtcur * solver.B[j]
				for i := 0; i < n; i++ {
					unext[i] += scale * k[j][i]
				}
			}
		}

		stepErr := 0.0
		if opts.Adaptive {
			for i := 0; i < n; i++ {
				errest := 0.0
				for j := 0; j < len(solver.Bhat); j++ {
					errest += dtcur * solver.Bhat[j] * k[j][i]
				}
				scale := opts.Abstol + opts.Reltol*math.Max(math.Abs(ucur[i]), math.Abs(unext[i]))
				if scale == 0 {
					scale = opts.Abstol
				}
				if val := math.Abs(errest) / scale; val > stepErr {
					stepErr = val
				}
			}
		}

		if !opts.Adaptive || stepErr <= 1.0 || dtcur <= opts.Dtmin {
			tcur += dtcur
			ucur = unext
			tOut = append(tOut, tcur)
			uOut = append(uOut, append([]float64(nil), ucur...))
			nsteps++

			checkCounter++
			if tcur >= t0+eqOpts.MinTime && (eqOpts.CheckInterval == 0 || checkCounter >= eqOpts.CheckInterval) {
				checkCounter = 0
				maxChange := maxAbs(k[0])
				if maxChange < eqOpts.Tolerance {
					consecutiveSmall++
					if consecutiveSmall >= eqOpts.ConsecutiveSteps {
						result.Reached = true
						result.Time = tcur
						result.State = vecToState(ucur, prob.labels)
						result.MaxChange = maxChange
						result.Reason = "equilibrium_reached"
						break
					}
				} else {
					consecutiveSmall = 0
				}
			}

			if opts.Adaptive && stepErr > 0 {
				factor := 0.9 * math.Pow(1.0/stepErr, 1.0/float64(solver.Order+1))
				factor = math.Min(factor, 5.0)
				dtcur = math.Min(opts.Dtmax, math.Max(opts.Dtmin, dtcur*factor))
			}
		} else {
			factor := 0.9 * math.Pow(1.0/stepErr, 1.0/float64(solver.Order+1))
			factor = math.Max(factor, 0.1)
			dtcur = math.Max(opts.Dtmin, dtcur*factor)
		}
	}

	if nsteps >= opts.Maxiters {
		result.Reason = "max_iterations"
	}
	result.Steps = nsteps
	if !result.Reached {
		result.Time = tcur
		result.State = vecToState(ucur, prob.labels)
		result.MaxChange = maxAbs(f(tcur, ucur))
	}

	states := make([]map[string]float64, len(uOut))
	for i, v := range uOut {
		states[i] = vecToState(v, prob.labels)
	}
	return &Solution{T: tOut, U: states, Labels: prob.labels}, result
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// IsEquilibrium reports whether a state's derivatives are all below
// tolerance.
func IsEquilibrium(prob *Problem, state map[string]float64, tolerance float64) bool {
	v := make([]float64, len(prob.labels))
	for i, id := range prob.labels {
		v[i] = state[id]
	}
	return maxAbs(prob.deriv(0, v)) < tolerance
}

// FindEquilibrium solves until equilibrium and returns the final
// state and whether equilibrium was formally reached.
func FindEquilibrium(prob *Problem) (map[string]float64, bool) {
	_, result := SolveUntilEquilibrium(prob, nil, nil, nil)
	return result.State, result.Reached
}
