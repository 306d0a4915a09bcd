package ssa

// Channel is one reaction channel: a rate law, the reactants gating it and the
// stoichiometry delta added to the state when it fires.
type Channel struct {
	ID        string
	Name      string
	Law       RateLaw
	Reactants []Reactant
	Delta     []int64
}

// propensity evaluates the channel for the state. It is 0 whenever a reactant
// count is below its coefficient, regardless of the rate law.
func (c *Channel) propensity(state State, params Parameters) float64 {
	for _, r := range c.Reactants {
		if state[r.Species] < r.Coefficient {
			return 0
		}
	}
	return c.Law.Propensity(state, params, c.Reactants)
}

// requires returns the coefficient the channel declares for species, or 0.
func (c *Channel) requires(species int) int64 {
	var total int64
	for _, r := range c.Reactants {
		if r.Species == species {
			total += r.Coefficient
		}
	}
	return total
}
