// Package stoich implements stoichiometric reaction networks.
// A network declares a set of token species and a set of reactions
// (fixed-ratio conversions), each consuming integer quantities of input
// species and producing integer quantities of output species.
package stoich

import (
	"fmt"
	"sort"
)

// Species describes one fungible unit type in a network.
// The conserved-quantity fields (MassNumber, Charge, LeptonNumber) are
// per-unit values used by conservation checking.
type Species struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	MassNumber   int    `json:"mass_number"`
	Charge       int    `json:"charge"`
	LeptonNumber int    `json:"lepton_number"`
}

// Term is one side entry of a reaction: a species and a quantity.
type Term struct {
	Species string `json:"species"`
	Amount  uint64 `json:"amount"`
}

// Reaction is an atomic fixed-ratio conversion between species.
// EnergyMeV is the amount added to the coordinator's energy accumulator
// each time the reaction fires. Rate is the mass-action rate constant
// used by kinetic simulation.
type Reaction struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	Consumes    []Term  `json:"consumes"`
	Produces    []Term  `json:"produces"`
	EnergyMeV   uint64  `json:"energy_mev,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
}

// Net is a complete reaction network: an ordered set of species and an
// ordered set of reactions over them.
type Net struct {
	Name      string     `json:"name"`
	Species   []Species  `json:"species"`
	Reactions []Reaction `json:"reactions"`

	speciesIndex  map[string]int
	reactionIndex map[string]int
}

// NewNet creates an empty network.
func NewNet(name string) *Net {
	return &Net{
		Name:          name,
		speciesIndex:  make(map[string]int),
		reactionIndex: make(map[string]int),
	}
}

// AddSpecies adds a species to the network and returns the net for chaining.
// Adding a duplicate ID is reported by Validate, not here.
func (n *Net) AddSpecies(s Species) *Net {
	if n.speciesIndex == nil {
		n.speciesIndex = make(map[string]int)
	}
	if _, dup := n.speciesIndex[s.ID]; !dup {
		n.speciesIndex[s.ID] = len(n.Species)
	}
	n.Species = append(n.Species, s)
	return n
}

// AddReaction adds a reaction to the network and returns the net for chaining.
func (n *Net) AddReaction(r Reaction) *Net {
	if n.reactionIndex == nil {
		n.reactionIndex = make(map[string]int)
	}
	if _, dup := n.reactionIndex[r.ID]; !dup {
		n.reactionIndex[r.ID] = len(n.Reactions)
	}
	n.Reactions = append(n.Reactions, r)
	return n
}

// SpeciesByID returns the species with the given ID, or nil.
func (n *Net) SpeciesByID(id string) *Species {
	i, ok := n.speciesIndex[id]
	if !ok {
		return nil
	}
	return &n.Species[i]
}

// ReactionByID returns the reaction with the given ID, or nil.
func (n *Net) ReactionByID(id string) *Reaction {
	i, ok := n.reactionIndex[id]
	if !ok {
		return nil
	}
	return &n.Reactions[i]
}

// SpeciesIDs returns the species IDs in declaration order.
func (n *Net) SpeciesIDs() []string {
	ids := make([]string, len(n.Species))
	for i, s := range n.Species {
		ids[i] = s.ID
	}
	return ids
}

// ReactionIDs returns the reaction IDs in declaration order.
func (n *Net) ReactionIDs() []string {
	ids := make([]string, len(n.Reactions))
	for i, r := range n.Reactions {
		ids[i] = r.ID
	}
	return ids
}

// Delta returns the net per-species change of one firing of the reaction:
// produced minus consumed, keyed by species ID. Species untouched by the
// reaction are absent from the map.
func (n *Net) Delta(reactionID string) (map[string]int64, error) {
	r := n.ReactionByID(reactionID)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReaction, reactionID)
	}
	delta := make(map[string]int64)
	for _, t := range r.Consumes {
		delta[t.Species] -= int64(t.Amount)
	}
	for _, t := range r.Produces {
		delta[t.Species] += int64(t.Amount)
	}
	return delta, nil
}

// Validate checks structural well-formedness: non-empty IDs, no duplicate
// species or reaction IDs, every term referencing a declared species with
// a positive amount, and every reaction having at least one input and one
// output term.
func (n *Net) Validate() error {
	seen := make(map[string]bool, len(n.Species))
	for _, s := range n.Species {
		if s.ID == "" {
			return ErrEmptyID
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: species %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = true
	}

	seenR := make(map[string]bool, len(n.Reactions))
	for _, r := range n.Reactions {
		if r.ID == "" {
			return ErrEmptyID
		}
		if seenR[r.ID] {
			return fmt.Errorf("%w: reaction %s", ErrDuplicateID, r.ID)
		}
		seenR[r.ID] = true

		if len(r.Consumes) == 0 || len(r.Produces) == 0 {
			return fmt.Errorf("%w: reaction %s", ErrEmptySide, r.ID)
		}
		for _, t := range append(append([]Term{}, r.Consumes...), r.Produces...) {
			if !seen[t.Species] {
				return fmt.Errorf("%w: reaction %s references %s", ErrUnknownSpecies, r.ID, t.Species)
			}
			if t.Amount == 0 {
				return fmt.Errorf("%w: reaction %s term %s", ErrZeroAmount, r.ID, t.Species)
			}
		}
	}
	return nil
}

// sortedTerms returns a copy of terms ordered by species ID, for
// deterministic serialization.
func sortedTerms(terms []Term) []Term {
	out := make([]Term, len(terms))
	copy(out, terms)
	sort.Slice(out, func(i, j int) bool { return out[i].Species < out[j].Species })
	return out
}
