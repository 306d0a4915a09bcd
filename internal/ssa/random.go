package ssa

import (
	"fmt"
	"math/rand/v2"
)

// RandomSource supplies uniform variates in the open interval (0,1).
// A source belongs to exactly one run; sharing one between concurrent runs
// breaks both reproducibility and independence.
type RandomSource interface {
	Uniform() (float64, error)
}

// SeededSource is a reproducible PCG-backed RandomSource.
type SeededSource struct {
	seed uint64
	rng  *rand.Rand
}

// NewSource returns a source whose sequence is fully determined by seed.
func NewSource(seed uint64) *SeededSource {
	return &SeededSource{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, splitmix64(seed))),
	}
}

// Seed returns the seed the source was created with.
func (s *SeededSource) Seed() uint64 {
	return s.seed
}

// Uniform returns a variate in (0,1). Float64 yields [0,1), so an exact 0 is
// redrawn.
func (s *SeededSource) Uniform() (float64, error) {
	for {
		if r := s.rng.Float64(); r > 0 {
			return r, nil
		}
	}
}

// SequenceSource replays a fixed list of variates and fails once it runs out.
// It is meant for tests and for replaying recorded draws.
type SequenceSource struct {
	values []float64
	next   int
}

// NewSequenceSource returns a source replaying values in order.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Uniform() (float64, error) {
	if s.next >= len(s.values) {
		return 0, fmt.Errorf("%w: sequence exhausted after %d draws", ErrRandomSource, s.next)
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}

// Drawn returns how many variates have been consumed.
func (s *SequenceSource) Drawn() int {
	return s.next
}

// DeriveSeed maps a base seed and a run index to an independent seed, so that
// run i of an ensemble is reproducible on its own.
func DeriveSeed(base uint64, run int) uint64 {
	return splitmix64(base ^ splitmix64(uint64(run)+0x9e3779b97f4a7c15))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
