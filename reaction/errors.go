package reaction

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	// ErrUnknownReaction is returned when a reaction ID is not
	// declared in the coordinator's net.
	ErrUnknownReaction = errors.New("reaction: unknown reaction")

	// ErrGuardNotSatisfied is returned when a reaction's guard
	// expression evaluates to false for the caller.
	ErrGuardNotSatisfied = errors.New("reaction: guard not satisfied")

	// ErrConstraintViolated is returned when a post-fire constraint
	// check fails. State is inconsistent if this ever fires.
	ErrConstraintViolated = errors.New("reaction: constraint violated")
)

// InsufficientReactantError reports which input species the caller
// lacks and by how much.
type InsufficientReactantError struct {
	Species  string
	Required *uint256.Int
	Held     *uint256.Int
}

func (e *InsufficientReactantError) Error() string {
	return fmt.Sprintf("reaction: insufficient %s: required %s, held %s",
		e.Species, e.Required.Dec(), e.Held.Dec())
}

// ConstraintError names the violated constraint and the ledger it was
// checked against.
type ConstraintError struct {
	Constraint string
	Species    string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("reaction: constraint %q violated on %s", e.Constraint, e.Species)
}

func (e *ConstraintError) Unwrap() error { return ErrConstraintViolated }
