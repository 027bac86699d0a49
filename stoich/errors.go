package stoich

import "errors"

var (
	// Structural errors reported by Validate.
	ErrEmptyID        = errors.New("stoich: element has empty ID")
	ErrDuplicateID    = errors.New("stoich: duplicate element ID")
	ErrUnknownSpecies = errors.New("stoich: unknown species")
	ErrEmptySide      = errors.New("stoich: reaction side has no terms")
	ErrZeroAmount     = errors.New("stoich: reaction term has zero amount")

	// Lookup errors.
	ErrUnknownReaction = errors.New("stoich: unknown reaction")

	// Conservation errors.
	ErrNotConserved = errors.New("stoich: conserved quantity not balanced")
)
