package ssa

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validConfig() NetworkConfig {
	return NetworkConfig{
		Name: "test_network",
		Species: []SpeciesConfig{
			{Name: "A"},
			{Name: "B"},
		},
		Parameters: map[string]float64{"k": 1, "vmax": 2, "km": 0.5},
		Initial:    map[string]int64{"A": 10},
		Channels: []ChannelConfig{
			{
				ID:        "convert",
				Reactants: []ReactantConfig{{Species: "A"}},
				Law:       RateLawConfig{Kind: LawMassAction, Rate: "k"},
				Delta:     map[string]int64{"A": -1, "B": 1},
			},
			{
				ID:    "induce",
				Law:   RateLawConfig{Kind: LawMichaelisMenten, Max: "vmax", K: "km", Regulator: "B"},
				Delta: map[string]int64{"A": 1},
			},
		},
	}
}

func TestValidateNetworkConfig_ValidConfig(t *testing.T) {
	if err := ValidateNetworkConfig(validConfig()); err != nil {
		t.Fatalf("expected no validation error, got: %v", err)
	}
}

func TestValidateNetworkConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *NetworkConfig)
		want   string
	}{
		{"missing name", func(c *NetworkConfig) { c.Name = "" }, "network name is required"},
		{"duplicate species", func(c *NetworkConfig) { c.Species = append(c.Species, SpeciesConfig{Name: "A"}) }, "duplicate species name: A"},
		{"no channels", func(c *NetworkConfig) { c.Channels = nil }, "network has no reaction channels"},
		{"negative parameter", func(c *NetworkConfig) { c.Parameters["k"] = -1 }, "parameter 'k' is negative"},
		{"infinite parameter", func(c *NetworkConfig) { c.Parameters["k"] = math.Inf(1) }, "parameter 'k' is not finite"},
		{"negative initial count", func(c *NetworkConfig) { c.Initial["A"] = -3 }, "initial count for species 'A' is negative"},
		{"initial for unknown species", func(c *NetworkConfig) { c.Initial["Z"] = 1 }, "initial count for unknown species 'Z'"},
		{"duplicate channel", func(c *NetworkConfig) { c.Channels[1].ID = "convert" }, "duplicate channel ID: convert"},
		{"unknown reactant", func(c *NetworkConfig) { c.Channels[0].Reactants[0].Species = "Z" }, "reactant species 'Z' does not exist"},
		{"unknown delta species", func(c *NetworkConfig) { c.Channels[0].Delta["Z"] = 1 }, "delta species 'Z' does not exist"},
		{"uncovered decrement", func(c *NetworkConfig) { c.Channels[0].Delta["A"] = -2 }, "consumes 2 of species 'A' but requires only 1"},
		{"invalid law kind", func(c *NetworkConfig) { c.Channels[0].Law.Kind = "arrhenius" }, "rate law kind 'arrhenius' is invalid"},
		{"undefined rate", func(c *NetworkConfig) { c.Channels[0].Law.Rate = "missing" }, "rate parameter 'missing' is not defined"},
		{"zero K", func(c *NetworkConfig) { c.Parameters["km"] = 0 }, "K parameter 'km' must be positive"},
		{"both input and regulator", func(c *NetworkConfig) { c.Channels[1].Law.Input = "k" }, "either input or regulator, not both"},
		{"neither input nor regulator", func(c *NetworkConfig) { c.Channels[1].Law.Regulator = "" }, "must have either input or regulator"},
		{"hill coefficient on michaelis_menten", func(c *NetworkConfig) { c.Channels[1].Law.N = "k" }, "n is not allowed for michaelis_menten"},
		{"unknown regulator", func(c *NetworkConfig) { c.Channels[1].Law.Regulator = "Z" }, "regulator species 'Z' does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := ValidateNetworkConfig(cfg)
			if err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !errors.Is(err, ErrInvalidNetwork) {
				t.Errorf("expected error to match ErrInvalidNetwork")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidateNetworkConfig_CollectsAllIssues(t *testing.T) {
	cfg := validConfig()
	cfg.Name = ""
	cfg.Parameters["k"] = -1
	cfg.Channels[1].Law.Regulator = "Z"

	err := ValidateNetworkConfig(cfg)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Issues) != 3 {
		t.Errorf("expected 3 issues, got %d: %v", len(validationErr.Issues), validationErr.Issues)
	}
	if !strings.HasPrefix(err.Error(), "network validation errors: ") {
		t.Errorf("expected combined message, got: %v", err)
	}
}

func TestValidationError_AddErrorFlattens(t *testing.T) {
	inner := &ValidationError{}
	inner.Add("first")
	inner.Add("second")

	outer := &ValidationError{}
	outer.AddError("channel 'c'", inner)
	outer.AddError("channel 'd'", errors.New("plain"))

	want := []string{"channel 'c': first", "channel 'c': second", "channel 'd': plain"}
	if len(outer.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %v", len(want), outer.Issues)
	}
	for i := range want {
		if outer.Issues[i] != want[i] {
			t.Errorf("issue %d: expected %q, got %q", i, want[i], outer.Issues[i])
		}
	}
}
