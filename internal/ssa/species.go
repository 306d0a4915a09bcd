package ssa

// SpeciesName is the name/identifier of a species.
type SpeciesName string

// Species describes one molecular population tracked by a network.
// Its position in the network's species list is its index in every State.
type Species struct {
	Name        SpeciesName
	Description string
	Meta        map[string]any
}
