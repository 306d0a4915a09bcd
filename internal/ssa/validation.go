package ssa

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid network: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "network validation errors: " + strings.Join(e.Issues, "; ")
}

// Unwrap lets callers match any validation failure with ErrInvalidNetwork.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidNetwork
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

// AddError records err under prefix, flattening nested validation errors.
func (e *ValidationError) AddError(prefix string, err error) {
	var nested *ValidationError
	if errors.As(err, &nested) {
		for _, issue := range nested.Issues {
			e.Add(prefix + ": " + issue)
		}
		return
	}
	e.Add(prefix + ": " + err.Error())
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

var validLawKinds = map[string]bool{
	LawMassAction:      true,
	LawHillActivation:  true,
	LawHillRepression:  true,
	LawMichaelisMenten: true,
}

// ValidateNetworkConfig performs comprehensive validation of a NetworkConfig.
// Parameter values are checked here as well, so a config that passes can be
// built and run without configuration errors.
func ValidateNetworkConfig(cfg NetworkConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("network name is required")
	}
	if len(cfg.Species) == 0 {
		err.Add("network has no species")
	}
	if len(cfg.Channels) == 0 {
		err.Add("network has no reaction channels")
	}

	speciesMap := make(map[string]bool)
	for _, sp := range cfg.Species {
		if sp.Name == "" {
			err.Add("species name is required")
			continue
		}
		if speciesMap[sp.Name] {
			err.Add("duplicate species name: " + sp.Name)
		} else {
			speciesMap[sp.Name] = true
		}
	}

	for name, v := range cfg.Parameters {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err.Add("parameter '" + name + "' is not finite")
		} else if v < 0 {
			err.Add(fmt.Sprintf("parameter '%s' is negative (%g)", name, v))
		}
	}

	for name, c := range cfg.Initial {
		if !speciesMap[name] {
			err.Add("initial count for unknown species '" + name + "'")
		} else if c < 0 {
			err.Add(fmt.Sprintf("initial count for species '%s' is negative (%d)", name, c))
		}
	}

	channelIDs := make(map[string]bool)
	for i, ch := range cfg.Channels {
		prefix := channelPrefix(ch.ID, i)

		if ch.ID == "" {
			err.Add(prefix + ": channel ID is required")
		} else if channelIDs[ch.ID] {
			err.Add("duplicate channel ID: " + ch.ID)
		} else {
			channelIDs[ch.ID] = true
		}

		required := make(map[string]int64)
		for j, r := range ch.Reactants {
			reactantPrefix := prefix + " reactant at index " + fmt.Sprintf("%d", j)
			if r.Species == "" {
				err.Add(reactantPrefix + ": reactant species is required")
			} else if !speciesMap[r.Species] {
				err.Add(reactantPrefix + ": reactant species '" + r.Species + "' does not exist")
			}
			if r.Coefficient < 0 {
				err.Add(reactantPrefix + ": coefficient must be positive")
			}
			required[r.Species] += reactantCoefficient(r)
		}

		for sp, d := range ch.Delta {
			if !speciesMap[sp] {
				err.Add(prefix + ": delta species '" + sp + "' does not exist")
				continue
			}
			if d < 0 && required[sp] < -d {
				err.Add(fmt.Sprintf("%s: consumes %d of species '%s' but requires only %d as reactant", prefix, -d, sp, required[sp]))
			}
		}

		validateLawConfig(ch.Law, prefix, speciesMap, cfg.Parameters, err)
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

// validateLawConfig validates a RateLawConfig
func validateLawConfig(law RateLawConfig, prefix string, speciesMap map[string]bool, params map[string]float64, err *ValidationError) {
	if !validLawKinds[law.Kind] {
		err.Add(prefix + ": rate law kind '" + law.Kind + "' is invalid, must be one of: mass_action, hill_activation, hill_repression, michaelis_menten")
		return
	}

	requireParam := func(role, name string, positive bool) {
		if name == "" {
			err.Add(prefix + ": " + role + " parameter is required")
			return
		}
		v, ok := params[name]
		if !ok {
			err.Add(prefix + ": " + role + " parameter '" + name + "' is not defined")
			return
		}
		if positive && v == 0 {
			err.Add(prefix + ": " + role + " parameter '" + name + "' must be positive")
		}
	}

	if law.Kind == LawMassAction {
		requireParam("rate", law.Rate, false)
		return
	}

	requireParam("max", law.Max, false)
	requireParam("K", law.K, true)
	switch {
	case law.N != "" && law.Kind == LawMichaelisMenten:
		err.Add(prefix + ": n is not allowed for michaelis_menten")
	case law.N != "":
		requireParam("n", law.N, true)
	}
	switch {
	case law.Input != "" && law.Regulator != "":
		err.Add(prefix + ": rate law must have either input or regulator, not both")
	case law.Input != "":
		requireParam("input", law.Input, false)
	case law.Regulator != "":
		if !speciesMap[law.Regulator] {
			err.Add(prefix + ": regulator species '" + law.Regulator + "' does not exist")
		}
	default:
		err.Add(prefix + ": rate law must have either input or regulator")
	}
}

func reactantCoefficient(r ReactantConfig) int64 {
	if r.Coefficient == 0 {
		return 1
	}
	return r.Coefficient
}
