package ssa

import (
	"fmt"
	"slices"
)

// Network is a reaction network: ordered species, ordered channels and the
// default parameters they are evaluated with. A Network is immutable after
// construction and safe to share between concurrent runs.
type Network struct {
	Name     string
	species  []Species
	index    map[SpeciesName]int
	channels []Channel
	params   Parameters
}

// NewNetwork validates the description and returns the network. Every problem
// found is reported in a single *ValidationError matching ErrInvalidNetwork.
func NewNetwork(name string, species []Species, channels []Channel, params Parameters) (*Network, error) {
	n := &Network{
		Name:     name,
		species:  slices.Clone(species),
		index:    make(map[SpeciesName]int, len(species)),
		channels: make([]Channel, len(channels)),
		params:   params,
	}
	for i, ch := range channels {
		ch.Reactants = slices.Clone(ch.Reactants)
		ch.Delta = slices.Clone(ch.Delta)
		n.channels[i] = ch
	}

	err := &ValidationError{}
	n.validateStructure(err)
	if !err.HasIssues() {
		n.validateParams(params, err)
	}
	if err.HasIssues() {
		return nil, err
	}
	return n, nil
}

func (n *Network) validateStructure(err *ValidationError) {
	if len(n.species) == 0 {
		err.Add("network has no species")
	}
	if len(n.channels) == 0 {
		err.Add("network has no reaction channels")
	}

	for i, sp := range n.species {
		if sp.Name == "" {
			err.Add(fmt.Sprintf("species at index %d: name is required", i))
			continue
		}
		if _, dup := n.index[sp.Name]; dup {
			err.Add("duplicate species name: " + string(sp.Name))
			continue
		}
		n.index[sp.Name] = i
	}

	ids := make(map[string]bool, len(n.channels))
	for i := range n.channels {
		ch := &n.channels[i]
		prefix := channelPrefix(ch.ID, i)
		if ch.ID == "" {
			err.Add(prefix + ": channel ID is required")
		} else if ids[ch.ID] {
			err.Add("duplicate channel ID: " + ch.ID)
		} else {
			ids[ch.ID] = true
		}
		if ch.Law == nil {
			err.Add(prefix + ": rate law is required")
		}
		if len(ch.Delta) != len(n.species) {
			err.Add(fmt.Sprintf("%s: stoichiometry has %d entries, network has %d species", prefix, len(ch.Delta), len(n.species)))
			continue
		}
		validReactants := true
		for j, r := range ch.Reactants {
			if r.Species < 0 || r.Species >= len(n.species) {
				err.Add(fmt.Sprintf("%s reactant at index %d: species index %d out of range", prefix, j, r.Species))
				validReactants = false
			} else if r.Coefficient <= 0 {
				err.Add(fmt.Sprintf("%s reactant at index %d: coefficient must be positive, got %d", prefix, j, r.Coefficient))
				validReactants = false
			}
		}
		if !validReactants {
			continue
		}
		for s, d := range ch.Delta {
			if d < 0 && ch.requires(s) < -d {
				err.Add(fmt.Sprintf("%s: consumes %d of species '%s' but requires only %d as reactant", prefix, -d, n.species[s].Name, ch.requires(s)))
			}
		}
	}
}

func (n *Network) validateParams(params Parameters, err *ValidationError) {
	for i := range n.channels {
		ch := &n.channels[i]
		if lerr := ch.Law.Validate(params, len(n.species)); lerr != nil {
			err.AddError(channelPrefix(ch.ID, i), lerr)
		}
	}
}

// Validate checks params against every rate law of the network. Use it before
// running with parameters other than the defaults.
func (n *Network) Validate(params Parameters) error {
	err := &ValidationError{}
	n.validateParams(params, err)
	if err.HasIssues() {
		return err
	}
	return nil
}

// Parameters returns the default parameters the network was built with.
func (n *Network) Parameters() Parameters {
	return n.params
}

// Species returns the species in declaration order.
func (n *Network) Species() []Species {
	return slices.Clone(n.species)
}

// SpeciesNames returns the species names in declaration order.
func (n *Network) SpeciesNames() []SpeciesName {
	names := make([]SpeciesName, len(n.species))
	for i, sp := range n.species {
		names[i] = sp.Name
	}
	return names
}

// SpeciesIndex returns the state index of a species.
func (n *Network) SpeciesIndex(name SpeciesName) (int, bool) {
	i, ok := n.index[name]
	return i, ok
}

// Channels returns the channels in declaration order.
func (n *Network) Channels() []Channel {
	out := make([]Channel, len(n.channels))
	for i, ch := range n.channels {
		ch.Reactants = slices.Clone(ch.Reactants)
		ch.Delta = slices.Clone(ch.Delta)
		out[i] = ch
	}
	return out
}

// NumSpecies returns the state dimension.
func (n *Network) NumSpecies() int { return len(n.species) }

// NumChannels returns the number of reaction channels.
func (n *Network) NumChannels() int { return len(n.channels) }

// Propensities evaluates every channel for the state and writes the rates
// into out, which is grown if needed. It has no side effects.
func (n *Network) Propensities(state State, params Parameters, out []float64) []float64 {
	if cap(out) < len(n.channels) {
		out = make([]float64, len(n.channels))
	}
	out = out[:len(n.channels)]
	for i := range n.channels {
		out[i] = n.channels[i].propensity(state, params)
	}
	return out
}

// StateOf builds a state from named counts. Species left out start at 0.
func (n *Network) StateOf(counts map[SpeciesName]int64) (State, error) {
	s := NewState(len(n.species))
	for name, c := range counts {
		i, ok := n.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown species '%s'", ErrInvalidState, name)
		}
		s[i] = c
	}
	if err := s.Validate(len(n.species)); err != nil {
		return nil, err
	}
	return s, nil
}

func channelPrefix(id string, i int) string {
	if id != "" {
		return "channel '" + id + "'"
	}
	return fmt.Sprintf("channel at index %d", i)
}
