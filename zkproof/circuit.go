// Package zkproof proves in zero knowledge that a batch of reaction
// firings transforms a public pre-balance vector into a public
// post-balance vector according to a declared stoichiometric net,
// without revealing how many times each reaction fired.
package zkproof

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/221-V/NIICHAVO/stoich"
)

// Bounds for range checks inside the circuit. Quantities and firing
// counts must stay well below the field modulus so that sums cannot
// wrap.
const (
	maxQuantityBits = 62
	maxCountBits    = 32
)

// BatchCircuit proves Post == Pre + S·Counts for the stoichiometric
// matrix S of a net, with Counts kept private. A public
// baryon-weighted sum check ties the two balance vectors together
// independently of the counts.
type BatchCircuit struct {
	// Public balance vectors, one entry per species in net order.
	Pre  []frontend.Variable `gnark:",public"`
	Post []frontend.Variable `gnark:",public"`

	// Private firing counts, one entry per reaction in net order.
	Counts []frontend.Variable

	// Circuit constants baked in at compile time, not witness data.
	consumes [][]uint64 // [reaction][species]
	produces [][]uint64
	masses   []uint64
}

// NewCircuit builds the circuit shape for a net. The net must be
// valid; species and reactions keep their declaration order.
func NewCircuit(net *stoich.Net) (*BatchCircuit, error) {
	if err := net.Validate(); err != nil {
		return nil, err
	}

	n := len(net.Species)
	m := len(net.Reactions)

	index := make(map[string]int, n)
	for i, sp := range net.Species {
		index[sp.ID] = i
	}

	c := &BatchCircuit{
		Pre:      make([]frontend.Variable, n),
		Post:     make([]frontend.Variable, n),
		Counts:   make([]frontend.Variable, m),
		consumes: make([][]uint64, m),
		produces: make([][]uint64, m),
		masses:   make([]uint64, n),
	}
	for i, sp := range net.Species {
		c.masses[i] = uint64(sp.MassNumber)
	}
	for r, reaction := range net.Reactions {
		c.consumes[r] = make([]uint64, n)
		c.produces[r] = make([]uint64, n)
		for _, t := range reaction.Consumes {
			c.consumes[r][index[t.Species]] += t.Amount
		}
		for _, t := range reaction.Produces {
			c.produces[r][index[t.Species]] += t.Amount
		}
	}
	return c, nil
}

// Define implements frontend.Circuit.
func (c *BatchCircuit) Define(api frontend.API) error {
	maxQuantity := new(big.Int).Lsh(big.NewInt(1), maxQuantityBits)
	maxCount := new(big.Int).Lsh(big.NewInt(1), maxCountBits)

	for r := range c.Counts {
		api.AssertIsLessOrEqual(c.Counts[r], maxCount)
	}
	for i := range c.Pre {
		api.AssertIsLessOrEqual(c.Pre[i], maxQuantity)
		api.AssertIsLessOrEqual(c.Post[i], maxQuantity)
	}

	// Per species: Pre[i] + Σ_r Counts[r]·produces[r][i] ==
	// Post[i] + Σ_r Counts[r]·consumes[r][i]. Keeping production and
	// consumption on separate sides avoids negative terms.
	for i := range c.Pre {
		lhs := frontend.Variable(c.Pre[i])
		rhs := frontend.Variable(c.Post[i])
		for r := range c.Counts {
			if w := c.produces[r][i]; w != 0 {
				lhs = api.Add(lhs, api.Mul(c.Counts[r], w))
			}
			if w := c.consumes[r][i]; w != 0 {
				rhs = api.Add(rhs, api.Mul(c.Counts[r], w))
			}
		}
		api.AssertIsEqual(lhs, rhs)
	}

	// Baryon conservation over the public vectors alone.
	preMass := frontend.Variable(0)
	postMass := frontend.Variable(0)
	for i := range c.Pre {
		if c.masses[i] == 0 {
			continue
		}
		preMass = api.Add(preMass, api.Mul(c.Pre[i], c.masses[i]))
		postMass = api.Add(postMass, api.Mul(c.Post[i], c.masses[i]))
	}
	api.AssertIsEqual(preMass, postMass)

	return nil
}

// NewAssignment builds a witness assignment for a circuit of the same
// shape. pre and post are per-species balances in net order; counts
// are per-reaction firing counts in net order.
func NewAssignment(pre, post, counts []uint64) *BatchCircuit {
	a := &BatchCircuit{
		Pre:    make([]frontend.Variable, len(pre)),
		Post:   make([]frontend.Variable, len(post)),
		Counts: make([]frontend.Variable, len(counts)),
	}
	for i, v := range pre {
		a.Pre[i] = v
	}
	for i, v := range post {
		a.Post[i] = v
	}
	for i, v := range counts {
		a.Counts[i] = v
	}
	return a
}
