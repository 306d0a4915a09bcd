package ssa

import (
	"context"
	"fmt"
	"math"
)

// Result is the outcome of sampling one trajectory. Status is
// StatusCompleted or StatusHalted when every requested sample was recorded;
// any other status means Trajectory holds only the samples before the stop.
type Result struct {
	Trajectory *Trajectory `json:"trajectory"`
	Status     Status      `json:"status"`
	Events     uint64      `json:"events"`
	Clock      float64     `json:"clock"`
	Seed       uint64      `json:"seed,omitempty"`
}

// Complete reports whether every requested sample was recorded.
func (r *Result) Complete() bool {
	return r.Status == StatusCompleted || r.Status == StatusHalted
}

// Grid expands (dt, n) to the sample times 0, dt, ..., (n-1)*dt.
func Grid(dt float64, n int) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}

// ValidateSampleTimes checks that times are finite, non-negative and
// non-decreasing.
func ValidateSampleTimes(times []float64) error {
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return fmt.Errorf("%w: sample %d has time %g", ErrInvalidSampleTimes, i, t)
		}
		if i > 0 && t < times[i-1] {
			return fmt.Errorf("%w: sample %d at %g precedes sample %d at %g", ErrInvalidSampleTimes, i, t, i-1, times[i-1])
		}
	}
	return nil
}

// Sampler records an engine's state on a caller-chosen time grid.
type Sampler struct {
	engine *Engine
}

// NewSampler returns a sampler driving engine.
func NewSampler(engine *Engine) *Sampler {
	return &Sampler{engine: engine}
}

// Sample advances the engine through times and records, for each t, the
// state as of the last event at or before t. Once the engine halts the
// remaining samples repeat the absorbing state. The clock is never rewound,
// so times must not start before the engine's current clock.
func (s *Sampler) Sample(ctx context.Context, times []float64) (*Result, error) {
	e := s.engine
	if err := ValidateSampleTimes(times); err != nil {
		return nil, err
	}
	if len(times) > 0 && times[0] < e.Clock() {
		return nil, fmt.Errorf("%w: first sample at %g precedes engine clock %g", ErrInvalidSampleTimes, times[0], e.Clock())
	}

	res := &Result{Trajectory: NewTrajectory(e.Network(), len(times))}
	if src, ok := e.src.(*SeededSource); ok {
		res.Seed = src.Seed()
	}
	finish := func(st Status, err error) (*Result, error) {
		res.Status = st
		res.Events = e.Events()
		res.Clock = e.Clock()
		return res, err
	}

	for _, t := range times {
		for {
			next, st, err := e.NextEventTime()
			if err != nil {
				return finish(st, err)
			}
			if st == StatusHalted || next > t {
				break
			}
			st, err = e.Step(ctx)
			if err != nil {
				return finish(st, err)
			}
			if st == StatusLimitExceeded {
				return finish(st, nil)
			}
		}
		res.Trajectory.append(t, e.state)
	}

	if e.Status() == StatusHalted {
		return finish(StatusHalted, nil)
	}
	return finish(StatusCompleted, nil)
}

// Run is a convenience wrapper: it builds an engine seeded with seed and
// samples it on times.
func Run(ctx context.Context, net *Network, initial State, times []float64, seed uint64, opts ...Option) (*Result, error) {
	e, err := NewEngine(net, initial, NewSource(seed), opts...)
	if err != nil {
		return nil, err
	}
	return NewSampler(e).Sample(ctx, times)
}
