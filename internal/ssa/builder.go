package ssa

import "maps"

// NetworkBuilder provides a fluent API for building network configurations.
// Build validates the result exactly like a config file would be.
type NetworkBuilder struct {
	name     string
	species  []SpeciesConfig
	params   map[string]float64
	initial  map[string]int64
	channels []*ChannelBuilder
}

// NewNetworkBuilder creates a builder for a network with the given name.
func NewNetworkBuilder(name string) *NetworkBuilder {
	return &NetworkBuilder{
		name:    name,
		params:  make(map[string]float64),
		initial: make(map[string]int64),
	}
}

// Species adds a species. Declaration order is the state order.
func (nb *NetworkBuilder) Species(name, description string) *NetworkBuilder {
	nb.species = append(nb.species, SpeciesConfig{Name: name, Description: description})
	return nb
}

// Param defines a named parameter.
func (nb *NetworkBuilder) Param(name string, value float64) *NetworkBuilder {
	nb.params[name] = value
	return nb
}

// Initial sets the initial count of a species.
func (nb *NetworkBuilder) Initial(species string, count int64) *NetworkBuilder {
	nb.initial[species] = count
	return nb
}

// Channel appends a reaction channel.
func (nb *NetworkBuilder) Channel(cb *ChannelBuilder) *NetworkBuilder {
	nb.channels = append(nb.channels, cb)
	return nb
}

// Config returns the NetworkConfig described so far.
func (nb *NetworkBuilder) Config() NetworkConfig {
	channels := make([]ChannelConfig, 0, len(nb.channels))
	for _, cb := range nb.channels {
		channels = append(channels, cb.Config())
	}
	return NetworkConfig{
		Name:       nb.name,
		Species:    append([]SpeciesConfig(nil), nb.species...),
		Parameters: maps.Clone(nb.params),
		Initial:    maps.Clone(nb.initial),
		Channels:   channels,
	}
}

// Build validates the configuration and returns the network and its initial
// state.
func (nb *NetworkBuilder) Build() (*Network, State, error) {
	cfg := nb.Config()
	n, err := BuildNetworkFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	initial, err := InitialState(n, cfg)
	if err != nil {
		return nil, nil, err
	}
	return n, initial, nil
}

// ChannelBuilder provides a fluent API for one reaction channel.
type ChannelBuilder struct {
	cfg ChannelConfig
}

// NewChannel creates a channel builder. The name defaults to the ID.
func NewChannel(id string) *ChannelBuilder {
	return &ChannelBuilder{cfg: ChannelConfig{
		ID:    id,
		Name:  id,
		Delta: make(map[string]int64),
	}}
}

// Name sets the human-readable name.
func (cb *ChannelBuilder) Name(name string) *ChannelBuilder {
	cb.cfg.Name = name
	return cb
}

// Requires declares a reactant that gates the channel without being consumed,
// such as a gene template or an enzyme.
func (cb *ChannelBuilder) Requires(species string, n int64) *ChannelBuilder {
	cb.cfg.Reactants = append(cb.cfg.Reactants, ReactantConfig{Species: species, Coefficient: n})
	return cb
}

// Consumes declares a reactant and removes n of it when the channel fires.
func (cb *ChannelBuilder) Consumes(species string, n int64) *ChannelBuilder {
	cb.Requires(species, n)
	cb.cfg.Delta[species] -= n
	return cb
}

// Produces adds n of species when the channel fires.
func (cb *ChannelBuilder) Produces(species string, n int64) *ChannelBuilder {
	cb.cfg.Delta[species] += n
	return cb
}

// MassAction sets a mass-action law with the given rate parameter.
func (cb *ChannelBuilder) MassAction(rate string) *ChannelBuilder {
	cb.cfg.Law = RateLawConfig{Kind: LawMassAction, Rate: rate}
	return cb
}

// HillActivation sets an activating Hill law; pick the regulator with
// Regulator or Input.
func (cb *ChannelBuilder) HillActivation(maxRate, k, n string) *ChannelBuilder {
	cb.cfg.Law = RateLawConfig{Kind: LawHillActivation, Max: maxRate, K: k, N: n}
	return cb
}

// HillRepression sets a repressing Hill law; pick the regulator with
// Regulator or Input.
func (cb *ChannelBuilder) HillRepression(maxRate, k, n string) *ChannelBuilder {
	cb.cfg.Law = RateLawConfig{Kind: LawHillRepression, Max: maxRate, K: k, N: n}
	return cb
}

// MichaelisMenten sets max * u / (K + u); pick u with Regulator or Input.
func (cb *ChannelBuilder) MichaelisMenten(maxRate, k string) *ChannelBuilder {
	cb.cfg.Law = RateLawConfig{Kind: LawMichaelisMenten, Max: maxRate, K: k}
	return cb
}

// Regulator makes a species count the input of the Hill law.
func (cb *ChannelBuilder) Regulator(species string) *ChannelBuilder {
	cb.cfg.Law.Regulator = species
	return cb
}

// Input makes an external parameter the input of the Hill law.
func (cb *ChannelBuilder) Input(param string) *ChannelBuilder {
	cb.cfg.Law.Input = param
	return cb
}

// Config returns the channel configuration.
func (cb *ChannelBuilder) Config() ChannelConfig {
	cfg := cb.cfg
	cfg.Reactants = append([]ReactantConfig(nil), cb.cfg.Reactants...)
	cfg.Delta = make(map[string]int64, len(cb.cfg.Delta))
	for sp, d := range cb.cfg.Delta {
		if d != 0 {
			cfg.Delta[sp] = d
		}
	}
	return cfg
}
