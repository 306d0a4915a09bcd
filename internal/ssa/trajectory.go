package ssa

import (
	"encoding/json"
	"fmt"
)

// Sample is the species vector in effect at one sample time.
type Sample struct {
	Time   float64 `json:"time"`
	Counts State   `json:"counts"`
}

// Trajectory is one realization recorded on a sample grid. Samples are
// appended in non-decreasing time order and never modified afterwards.
type Trajectory struct {
	Network string        `json:"network"`
	Species []SpeciesName `json:"species"`
	Samples []Sample      `json:"samples"`
}

// NewTrajectory returns an empty trajectory for the network with room for n
// samples.
func NewTrajectory(net *Network, n int) *Trajectory {
	return &Trajectory{
		Network: net.Name,
		Species: net.SpeciesNames(),
		Samples: make([]Sample, 0, n),
	}
}

// append records a copy of state at time t.
func (tr *Trajectory) append(t float64, state State) {
	tr.Samples = append(tr.Samples, Sample{Time: t, Counts: state.Clone()})
}

// Len returns the number of samples.
func (tr *Trajectory) Len() int {
	return len(tr.Samples)
}

// Final returns the last sample and false when the trajectory is empty.
func (tr *Trajectory) Final() (Sample, bool) {
	if len(tr.Samples) == 0 {
		return Sample{}, false
	}
	return tr.Samples[len(tr.Samples)-1], true
}

// Times returns the sample times in order.
func (tr *Trajectory) Times() []float64 {
	out := make([]float64, len(tr.Samples))
	for i, s := range tr.Samples {
		out[i] = s.Time
	}
	return out
}

// Column returns the counts of one species over time.
func (tr *Trajectory) Column(name SpeciesName) ([]int64, bool) {
	idx := -1
	for i, sp := range tr.Species {
		if sp == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]int64, len(tr.Samples))
	for i, s := range tr.Samples {
		out[i] = s.Counts[idx]
	}
	return out, true
}

// Header returns the column names of Rows: "Time" then each species.
func (tr *Trajectory) Header() []string {
	h := make([]string, 0, len(tr.Species)+1)
	h = append(h, "Time")
	for _, sp := range tr.Species {
		h = append(h, string(sp))
	}
	return h
}

// Rows returns one row per sample: the time followed by each species count.
func (tr *Trajectory) Rows() [][]float64 {
	rows := make([][]float64, len(tr.Samples))
	for i, s := range tr.Samples {
		row := make([]float64, 0, len(s.Counts)+1)
		row = append(row, s.Time)
		for _, c := range s.Counts {
			row = append(row, float64(c))
		}
		rows[i] = row
	}
	return rows
}

// ValidateTrajectory performs validation checks on a trajectory.
// It verifies that:
//   - Sample times are non-decreasing
//   - Every sample has one count per species
//   - No count is negative
func ValidateTrajectory(tr *Trajectory) error {
	for i, s := range tr.Samples {
		if i > 0 && s.Time < tr.Samples[i-1].Time {
			return fmt.Errorf("sample %d at time %g precedes sample %d at time %g", i, s.Time, i-1, tr.Samples[i-1].Time)
		}
		if len(s.Counts) != len(tr.Species) {
			return fmt.Errorf("sample %d has %d counts, trajectory has %d species", i, len(s.Counts), len(tr.Species))
		}
		for j, c := range s.Counts {
			if c < 0 {
				return fmt.Errorf("sample %d has negative count %d for species %s", i, c, tr.Species[j])
			}
		}
	}
	return nil
}

// EncodeTrajectoryJSON encodes a trajectory to JSON format.
func EncodeTrajectoryJSON(tr *Trajectory) ([]byte, error) {
	data, err := json.Marshal(tr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trajectory: %w", err)
	}
	return data, nil
}

// DecodeTrajectoryJSON decodes a trajectory from JSON format and validates it.
func DecodeTrajectoryJSON(data []byte) (*Trajectory, error) {
	var tr Trajectory
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode trajectory: %w", err)
	}
	if err := ValidateTrajectory(&tr); err != nil {
		return nil, fmt.Errorf("invalid trajectory: %w", err)
	}
	return &tr, nil
}
