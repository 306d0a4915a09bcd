package ssa

import (
	"fmt"
	"math"
)

// Reactant is a species consumed or required by a channel. A channel can only
// fire while every reactant count is at least its coefficient.
type Reactant struct {
	Species     int
	Coefficient int64
}

// RateLaw computes the propensity of a channel. Reactant availability has
// already been checked by the caller, so implementations only see states where
// every reactant count covers its coefficient.
type RateLaw interface {
	// Kind names the law, e.g. "mass_action" or "hill".
	Kind() string

	// Propensity returns the channel rate for the state. It must be
	// non-negative for every state reachable under parameters that passed
	// Validate.
	Propensity(state State, params Parameters, reactants []Reactant) float64

	// Validate reports parameter problems before a run starts.
	Validate(params Parameters, species int) error
}

// ReactantFactor returns the number of distinct reactant combinations in the
// state: the product over reactants of C(x, m). It is 0 whenever a count is
// below its coefficient.
func ReactantFactor(state State, reactants []Reactant) float64 {
	h := 1.0
	for _, r := range reactants {
		x := state[r.Species]
		if x < r.Coefficient {
			return 0
		}
		h *= choose(x, r.Coefficient)
	}
	return h
}

// choose returns C(x, m) as a float64.
func choose(x, m int64) float64 {
	c := 1.0
	for i := int64(0); i < m; i++ {
		// c*(x-i) is divisible by i+1, so the running value stays integral
		c = c * float64(x-i) / float64(i+1)
	}
	return c
}

// MassAction is the law k * prod C(x_s, m_s). With no reactants it is a
// constant (zero-order) rate.
type MassAction struct {
	Rate string
}

func (MassAction) Kind() string { return "mass_action" }

func (l MassAction) Propensity(state State, params Parameters, reactants []Reactant) float64 {
	return params.Value(l.Rate) * ReactantFactor(state, reactants)
}

func (l MassAction) Validate(params Parameters, species int) error {
	return checkRate(params, "rate", l.Rate)
}

// Hill scales a maximal rate by a saturating function of a regulator:
// (u/K)^n / (1 + (u/K)^n) for activation or 1 / (1 + (u/K)^n) for repression,
// multiplied by the reactant factor. The regulator u is either the count of a
// species or an external input parameter. An empty N means coefficient 1.
type Hill struct {
	Max       string
	K         string
	N         string
	Input     string // external input parameter; when empty Regulator is used
	Regulator int    // species index of the regulator
	Repressor bool
}

// MichaelisMenten returns the Hill activation law with coefficient 1, i.e.
// max * u / (K + u).
func MichaelisMenten(maxParam, kParam, input string, regulator int) Hill {
	return Hill{Max: maxParam, K: kParam, Input: input, Regulator: regulator}
}

func (l Hill) Kind() string {
	if l.Repressor {
		return "hill_repression"
	}
	return "hill_activation"
}

func (l Hill) Propensity(state State, params Parameters, reactants []Reactant) float64 {
	var u float64
	if l.Input != "" {
		u = params.Value(l.Input)
	} else {
		u = float64(state[l.Regulator])
	}
	x := u / params.Value(l.K)
	if l.N != "" {
		x = math.Pow(x, params.Value(l.N))
	}
	var f float64
	if l.Repressor {
		f = 1 / (1 + x)
	} else {
		f = x / (1 + x)
	}
	return params.Value(l.Max) * f * ReactantFactor(state, reactants)
}

func (l Hill) Validate(params Parameters, species int) error {
	err := &ValidationError{}
	if e := checkRate(params, "max", l.Max); e != nil {
		err.Add(e.Error())
	}
	if e := checkPositive(params, "K", l.K); e != nil {
		err.Add(e.Error())
	}
	if l.N != "" {
		if e := checkPositive(params, "n", l.N); e != nil {
			err.Add(e.Error())
		}
	}
	if l.Input != "" {
		if e := checkRate(params, "input", l.Input); e != nil {
			err.Add(e.Error())
		}
	} else if l.Regulator < 0 || l.Regulator >= species {
		err.Add(fmt.Sprintf("regulator species index %d out of range [0,%d)", l.Regulator, species))
	}
	if err.HasIssues() {
		return err
	}
	return nil
}

// RateFunc adapts a plain function to RateLaw. It performs no parameter
// validation, so a function returning a negative value aborts the run with
// ErrInvalidPropensity.
type RateFunc func(state State, params Parameters) float64

func (RateFunc) Kind() string { return "func" }

func (f RateFunc) Propensity(state State, params Parameters, _ []Reactant) float64 {
	return f(state, params)
}

func (RateFunc) Validate(Parameters, int) error { return nil }

// checkRate requires a defined, finite, non-negative parameter.
func checkRate(params Parameters, role, name string) error {
	if name == "" {
		return fmt.Errorf("%s parameter is required", role)
	}
	v, ok := params.Get(name)
	if !ok {
		return fmt.Errorf("%s parameter '%s' is not defined", role, name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s parameter '%s' is not finite", role, name)
	}
	if v < 0 {
		return fmt.Errorf("%s parameter '%s' is negative (%g)", role, name, v)
	}
	return nil
}

// checkPositive requires a defined, finite, strictly positive parameter.
func checkPositive(params Parameters, role, name string) error {
	if err := checkRate(params, role, name); err != nil {
		return err
	}
	if params.Value(name) == 0 {
		return fmt.Errorf("%s parameter '%s' must be positive", role, name)
	}
	return nil
}
