package ssa

import "fmt"

// State is the species vector: one non-negative copy number per species,
// indexed in network declaration order.
type State []int64

// NewState returns a zero state sized for n species.
func NewState(n int) State {
	return make(State, n)
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Validate checks that the state has the expected dimension and no
// negative entries.
func (s State) Validate(species int) error {
	if len(s) != species {
		return fmt.Errorf("%w: state has %d entries, network has %d species", ErrInvalidState, len(s), species)
	}
	for i, v := range s {
		if v < 0 {
			return fmt.Errorf("%w: species %d has negative count %d", ErrInvalidState, i, v)
		}
	}
	return nil
}

// apply adds a stoichiometry delta in place.
func (s State) apply(delta []int64) {
	for i, d := range delta {
		s[i] += d
	}
}
