package ssa

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuildNetworkFromConfig converts a NetworkConfig to a Network
func BuildNetworkFromConfig(cfg NetworkConfig) (*Network, error) {
	// Validate the configuration first
	if err := ValidateNetworkConfig(cfg); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(cfg.Species))
	species := make([]Species, 0, len(cfg.Species))
	for i, sp := range cfg.Species {
		index[sp.Name] = i
		species = append(species, Species{
			Name:        SpeciesName(sp.Name),
			Description: sp.Description,
			Meta:        sp.Meta,
		})
	}

	channels := make([]Channel, 0, len(cfg.Channels))
	for _, cc := range cfg.Channels {
		ch := Channel{
			ID:        cc.ID,
			Name:      cc.Name,
			Reactants: make([]Reactant, 0, len(cc.Reactants)),
			Delta:     make([]int64, len(species)),
			Law:       lawFromConfig(cc.Law, index),
		}
		if ch.Name == "" {
			ch.Name = ch.ID
		}
		for _, r := range cc.Reactants {
			ch.Reactants = append(ch.Reactants, Reactant{
				Species:     index[r.Species],
				Coefficient: reactantCoefficient(r),
			})
		}
		for sp, d := range cc.Delta {
			ch.Delta[index[sp]] = d
		}
		channels = append(channels, ch)
	}

	return NewNetwork(cfg.Name, species, channels, NewParameters(cfg.Parameters))
}

func lawFromConfig(law RateLawConfig, index map[string]int) RateLaw {
	if law.Kind == LawMassAction {
		return MassAction{Rate: law.Rate}
	}
	return Hill{
		Max:       law.Max,
		K:         law.K,
		N:         law.N,
		Input:     law.Input,
		Regulator: index[law.Regulator],
		Repressor: law.Kind == LawHillRepression,
	}
}

// InitialState returns the configured initial counts for the network.
func InitialState(n *Network, cfg NetworkConfig) (State, error) {
	counts := make(map[SpeciesName]int64, len(cfg.Initial))
	for name, c := range cfg.Initial {
		counts[SpeciesName(name)] = c
	}
	return n.StateOf(counts)
}

// ParseNetworkConfig decodes a network description. format is "yaml" or
// "json".
func ParseNetworkConfig(data []byte, format string) (NetworkConfig, error) {
	var cfg NetworkConfig
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return NetworkConfig{}, fmt.Errorf("parsing network YAML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return NetworkConfig{}, fmt.Errorf("parsing network JSON: %w", err)
		}
	default:
		return NetworkConfig{}, fmt.Errorf("unsupported network format %q", format)
	}
	return cfg, nil
}

// LoadNetworkConfig reads a network file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func LoadNetworkConfig(path string) (NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NetworkConfig{}, fmt.Errorf("reading network file: %w", err)
	}
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	return ParseNetworkConfig(data, format)
}

// LoadNetwork reads, validates and builds the network in path, returning it
// with its configured initial state.
func LoadNetwork(path string) (*Network, State, error) {
	cfg, err := LoadNetworkConfig(path)
	if err != nil {
		return nil, nil, err
	}
	n, err := BuildNetworkFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("building network: %w", err)
	}
	initial, err := InitialState(n, cfg)
	if err != nil {
		return nil, nil, err
	}
	return n, initial, nil
}
