// Package kinetics simulates a stoichiometric net as a continuous
// system under mass-action kinetics: each reaction's flux is its rate
// times the product of its input quantities, and species evolve by the
// signed sum of fluxes weighted by their stoichiometric coefficients.
package kinetics

import (
	"math"

	"github.com/221-V/NIICHAVO/stoich"
)

// DerivFunc computes du/dt for a dense state vector at time t.
type DerivFunc func(t float64, u []float64) []float64

type termEntry struct {
	idx    int
	weight float64
}

type reactionEntry struct {
	rate    float64
	inputs  []termEntry
	outputs []termEntry
}

// Problem is an initial value problem over a stoichiometric net.
type Problem struct {
	Net   *stoich.Net
	U0    map[string]float64 // initial quantity per species ID
	Tspan [2]float64
	Rates map[string]float64 // per-reaction rate overrides

	labels     []string
	labelIndex map[string]int
	vecU0      []float64
	deriv      DerivFunc
	masses     []float64
}

// NewProblem builds a problem from a net. Species order follows the
// net's declaration order; species missing from initialState start at
// zero. Rates default to each reaction's declared Rate and may be
// overridden per reaction ID.
func NewProblem(net *stoich.Net, initialState map[string]float64, tspan [2]float64, rates map[string]float64) *Problem {
	p := &Problem{
		Net:   net,
		U0:    initialState,
		Tspan: tspan,
		Rates: rates,
	}

	p.labels = net.SpeciesIDs()
	p.labelIndex = make(map[string]int, len(p.labels))
	for i, id := range p.labels {
		p.labelIndex[id] = i
	}

	n := len(p.labels)
	p.vecU0 = make([]float64, n)
	for i, id := range p.labels {
		p.vecU0[i] = initialState[id]
	}

	p.masses = make([]float64, n)
	for i, sp := range net.Species {
		p.masses[i] = float64(sp.MassNumber)
	}

	entries := make([]reactionEntry, 0, len(net.Reactions))
	for _, r := range net.Reactions {
		rate := r.Rate
		if override, ok := rates[r.ID]; ok {
			rate = override
		}
		entry := reactionEntry{rate: rate}
		for _, t := range r.Consumes {
			entry.inputs = append(entry.inputs, termEntry{p.labelIndex[t.Species], float64(t.Amount)})
		}
		for _, t := range r.Produces {
			entry.outputs = append(entry.outputs, termEntry{p.labelIndex[t.Species], float64(t.Amount)})
		}
		entries = append(entries, entry)
	}

	p.deriv = func(_ float64, u []float64) []float64 {
		du := make([]float64, n)
		for i := range entries {
			e := &entries[i]
			flux := e.rate
			for _, inp := range e.inputs {
				v := u[inp.idx]
				if v <= 0 {
					flux = 0
					break
				}
				flux *= v
			}
			if flux > 0 {
				for _, inp := range e.inputs {
					du[inp.idx] -= flux * inp.weight
				}
				for _, out := range e.outputs {
					du[out.idx] += flux * out.weight
				}
			}
		}
		return du
	}

	return p
}

// Labels returns the species IDs in state-vector order.
func (p *Problem) Labels() []string {
	return append([]string(nil), p.labels...)
}

// TotalMass returns the baryon-number-weighted total of a state.
// Mass-action dynamics conserve it whenever every reaction balances
// baryon number.
func (p *Problem) TotalMass(state map[string]float64) float64 {
	total := 0.0
	for i, id := range p.labels {
		total += p.masses[i] * state[id]
	}
	return total
}

// Solution is a recorded trajectory.
type Solution struct {
	T      []float64
	U      []map[string]float64
	Labels []string
}

// GetVariable extracts the time series of one species.
func (s *Solution) GetVariable(speciesID string) []float64 {
	out := make([]float64, 0, len(s.U))
	for _, state := range s.U {
		out = append(out, state[speciesID])
	}
	return out
}

// GetFinalState returns the last recorded state.
func (s *Solution) GetFinalState() map[string]float64 {
	if len(s.U) == 0 {
		return nil
	}
	return s.U[len(s.U)-1]
}

// Options configures the integration loop.
type Options struct {
	Dt       float64 // initial step
	Dtmin    float64
	Dtmax    float64
	Abstol   float64
	Reltol   float64
	Maxiters int
	Adaptive bool
}

// DefaultOptions returns balanced settings suitable for most nets.
func DefaultOptions() *Options {
	return &Options{
		Dt:       0.01,
		Dtmin:    1e-6,
		Dtmax:    0.1,
		Abstol:   1e-6,
		Reltol:   1e-3,
		Maxiters: 100000,
		Adaptive: true,
	}
}

// FastOptions trades precision for speed.
func FastOptions() *Options {
	return &Options{
		Dt:       0.1,
		Dtmin:    1e-4,
		Dtmax:    1.0,
		Abstol:   1e-2,
		Reltol:   1e-2,
		Maxiters: 1000,
		Adaptive: true,
	}
}

// AccurateOptions returns high-precision settings.
func AccurateOptions() *Options {
	return &Options{
		Dt:       0.001,
		Dtmin:    1e-8,
		Dtmax:    0.1,
		Abstol:   1e-9,
		Reltol:   1e-6,
		Maxiters: 1000000,
		Adaptive: true,
	}
}

func vecToState(v []float64, labels []string) map[string]float64 {
	m := make(map[string]float64, len(labels))
	for i, id := range labels {
		m[id] = v[i]
	}
	return m
}

// Solve integrates the problem with the given method and options.
// With nil arguments it uses Tsit5 and DefaultOptions.
func Solve(prob *Problem, solver *Solver, opts *Options) *Solution {
	if solver == nil {
		solver = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions()
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

	states := make([]map[string]float64, len(uOut))
	for i, v := range uOut {
		states[i] = vecToState(v, prob.labels)
	}
	return &Solution{T: tOut, U: states, Labels: prob.labels}
}
