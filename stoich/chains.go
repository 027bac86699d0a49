package stoich

// Canonical reaction networks.

// Species IDs used by the proton-proton chain network.
const (
	Proton   = "proton"
	Deuteron = "deuterium"
	Helium3  = "helium3"
	Helium4  = "helium4"
	Positron = "positron"
	Neutrino = "neutrino"
	Gamma    = "gamma"
)

// Reaction IDs used by the proton-proton chain network.
const (
	PPFusion        = "pp-fusion"
	PDFusion        = "pd-fusion"
	He3Fusion       = "he3-fusion"
	CompletePPChain = "complete-pp-chain"
	AlphaDecay      = "alpha-decay"
)

// PPChain returns the proton-proton fusion chain network.
//
// The complete-pp-chain reaction is a shortcut performing the net
// conversion of the whole chain in one firing. Its counter and energy
// bookkeeping are independent of the sub-reactions: firing the shortcut
// once does not equal firing the decomposed steps, and the energy
// constants are not required to sum up.
func PPChain() *Net {
	n := NewNet("pp-chain")

	n.AddSpecies(Species{ID: Proton, Name: "Proton", Symbol: "P", MassNumber: 1, Charge: 1}).
		AddSpecies(Species{ID: Deuteron, Name: "Deuterium", Symbol: "D", MassNumber: 2, Charge: 1}).
		AddSpecies(Species{ID: Helium3, Name: "Helium-3", Symbol: "HE3", MassNumber: 3, Charge: 2}).
		AddSpecies(Species{ID: Helium4, Name: "Helium-4", Symbol: "HE4", MassNumber: 4, Charge: 2}).
		AddSpecies(Species{ID: Positron, Name: "Positron", Symbol: "POS", Charge: 1, LeptonNumber: -1}).
		AddSpecies(Species{ID: Neutrino, Name: "Neutrino", Symbol: "NU", LeptonNumber: 1}).
		AddSpecies(Species{ID: Gamma, Name: "Gamma", Symbol: "GAM"})

	n.AddReaction(Reaction{
		ID:          PPFusion,
		Description: "2 p -> d + e+ + nu",
		Consumes:    []Term{{Proton, 2}},
		Produces:    []Term{{Deuteron, 1}, {Positron, 1}, {Neutrino, 1}},
		EnergyMeV:   1,
		Rate:        1.0,
	}).AddReaction(Reaction{
		ID:          PDFusion,
		Description: "d + p -> he3 + gamma",
		Consumes:    []Term{{Deuteron, 1}, {Proton, 1}},
		Produces:    []Term{{Helium3, 1}, {Gamma, 1}},
		EnergyMeV:   5,
		Rate:        1.0,
	}).AddReaction(Reaction{
		ID:          He3Fusion,
		Description: "2 he3 -> he4 + 2 p",
		Consumes:    []Term{{Helium3, 2}},
		Produces:    []Term{{Helium4, 1}, {Proton, 2}},
		EnergyMeV:   12,
		Rate:        1.0,
	}).AddReaction(Reaction{
		ID:          CompletePPChain,
		Description: "4 p -> he4 + 2 e+ + 2 nu",
		Consumes:    []Term{{Proton, 4}},
		Produces:    []Term{{Helium4, 1}, {Positron, 2}, {Neutrino, 2}},
		EnergyMeV:   26,
		Rate:        0.1,
	}).AddReaction(Reaction{
		ID:          AlphaDecay,
		Description: "he4 -> 2 d",
		Consumes:    []Term{{Helium4, 1}},
		Produces:    []Term{{Deuteron, 2}},
		Rate:        0.01,
	})

	return n
}

// Species and reaction IDs used by the hydrogen equilibrium network.
const (
	Hydrogen1  = "hydrogen"
	Hydrogen2  = "h2"
	Bind       = "bind"
	Dissociate = "dissociate"
)

// HydrogenEquilibrium returns the two-species equilibrium network:
// 2 H <-> H2. The forward reaction binds two hydrogen units into one
// molecule, the reverse dissociates it.
func HydrogenEquilibrium() *Net {
	n := NewNet("h2-equilibrium")

	n.AddSpecies(Species{ID: Hydrogen1, Name: "Hydrogen", Symbol: "H", MassNumber: 1}).
		AddSpecies(Species{ID: Hydrogen2, Name: "Molecular Hydrogen", Symbol: "H2", MassNumber: 2})

	n.AddReaction(Reaction{
		ID:          Bind,
		Description: "2 h -> h2",
		Consumes:    []Term{{Hydrogen1, 2}},
		Produces:    []Term{{Hydrogen2, 1}},
		Rate:        1.0,
	}).AddReaction(Reaction{
		ID:          Dissociate,
		Description: "h2 -> 2 h",
		Consumes:    []Term{{Hydrogen2, 1}},
		Produces:    []Term{{Hydrogen1, 2}},
		Rate:        0.5,
	})

	return n
}
