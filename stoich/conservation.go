package stoich

import "fmt"

// Quantity identifies a conserved per-unit quantity of a species.
type Quantity int

const (
	// Baryon is the nucleon (mass number) count.
	Baryon Quantity = iota
	// Charge is the electric charge in units of e.
	Charge
	// Lepton is the lepton number.
	Lepton
)

func (q Quantity) String() string {
	switch q {
	case Baryon:
		return "baryon"
	case Charge:
		return "charge"
	case Lepton:
		return "lepton"
	default:
		return "?"
	}
}

// unitValue returns the per-unit amount of quantity q carried by species s.
func unitValue(s *Species, q Quantity) int {
	switch q {
	case Baryon:
		return s.MassNumber
	case Charge:
		return s.Charge
	case Lepton:
		return s.LeptonNumber
	default:
		return 0
	}
}

// Balance computes the total of quantity q on each side of a reaction.
// Consumed quantities count toward in, produced toward out.
func (n *Net) Balance(r *Reaction, q Quantity) (in, out int64) {
	for _, t := range r.Consumes {
		if s := n.SpeciesByID(t.Species); s != nil {
			in += int64(unitValue(s, q)) * int64(t.Amount)
		}
	}
	for _, t := range r.Produces {
		if s := n.SpeciesByID(t.Species); s != nil {
			out += int64(unitValue(s, q)) * int64(t.Amount)
		}
	}
	return in, out
}

// CheckConservation verifies that every reaction in the network balances
// each of the given quantities. With no quantities it checks baryon
// number, charge, and lepton number.
func (n *Net) CheckConservation(quantities ...Quantity) error {
	if len(quantities) == 0 {
		quantities = []Quantity{Baryon, Charge, Lepton}
	}
	for i := range n.Reactions {
		r := &n.Reactions[i]
		for _, q := range quantities {
			in, out := n.Balance(r, q)
			if in != out {
				return fmt.Errorf("%w: reaction %s: %s %d -> %d", ErrNotConserved, r.ID, q, in, out)
			}
		}
	}
	return nil
}
