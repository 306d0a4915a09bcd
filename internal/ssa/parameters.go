package ssa

import (
	"maps"
	"slices"
)

// Parameters is an immutable set of named constants: rate constants, Hill
// constants and external inputs such as an inducer concentration.
// The zero value is an empty set.
type Parameters struct {
	values map[string]float64
}

// NewParameters copies values into a new parameter set.
func NewParameters(values map[string]float64) Parameters {
	return Parameters{values: maps.Clone(values)}
}

// Get returns the value of name and whether it is defined.
func (p Parameters) Get(name string) (float64, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Value returns the value of name, or 0 when undefined. Rate laws only call it
// for names checked during validation.
func (p Parameters) Value(name string) float64 {
	return p.values[name]
}

// With returns a copy with name set to value. The receiver is unchanged.
func (p Parameters) With(name string, value float64) Parameters {
	next := make(map[string]float64, len(p.values)+1)
	maps.Copy(next, p.values)
	next[name] = value
	return Parameters{values: next}
}

// Merge returns a copy where every entry of other overrides the receiver.
func (p Parameters) Merge(other Parameters) Parameters {
	next := make(map[string]float64, len(p.values)+len(other.values))
	maps.Copy(next, p.values)
	maps.Copy(next, other.values)
	return Parameters{values: next}
}

// Names returns the defined parameter names in sorted order.
func (p Parameters) Names() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Len returns the number of defined parameters.
func (p Parameters) Len() int {
	return len(p.values)
}

// Map returns a copy of the underlying values.
func (p Parameters) Map() map[string]float64 {
	return maps.Clone(p.values)
}
