package ssa

type SpeciesConfig struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// ReactantConfig names a reactant species; Coefficient defaults to 1.
type ReactantConfig struct {
	Species     string `json:"species" yaml:"species"`
	Coefficient int64  `json:"coefficient,omitempty" yaml:"coefficient,omitempty"`
}

// Rate law kinds accepted in RateLawConfig.Kind
const (
	LawMassAction      = "mass_action"
	LawHillActivation  = "hill_activation"
	LawHillRepression  = "hill_repression"
	LawMichaelisMenten = "michaelis_menten"
)

// RateLawConfig refers to parameters by name. Mass action uses Rate; the Hill
// kinds use Max, K, N and either Input (a parameter) or Regulator (a species).
type RateLawConfig struct {
	Kind      string `json:"kind" yaml:"kind"`
	Rate      string `json:"rate,omitempty" yaml:"rate,omitempty"`
	Max       string `json:"max,omitempty" yaml:"max,omitempty"`
	K         string `json:"k,omitempty" yaml:"k,omitempty"`
	N         string `json:"n,omitempty" yaml:"n,omitempty"`
	Input     string `json:"input,omitempty" yaml:"input,omitempty"`
	Regulator string `json:"regulator,omitempty" yaml:"regulator,omitempty"`
}

// ChannelConfig lists the non-zero stoichiometry entries by species name.
type ChannelConfig struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Reactants []ReactantConfig `json:"reactants,omitempty" yaml:"reactants,omitempty"`
	Law       RateLawConfig    `json:"law" yaml:"law"`
	Delta     map[string]int64 `json:"delta,omitempty" yaml:"delta,omitempty"`
}

type NetworkConfig struct {
	Name       string             `json:"name" yaml:"name"`
	Species    []SpeciesConfig    `json:"species" yaml:"species"`
	Parameters map[string]float64 `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Initial    map[string]int64   `json:"initial,omitempty" yaml:"initial,omitempty"`
	Channels   []ChannelConfig    `json:"channels" yaml:"channels"`
}
