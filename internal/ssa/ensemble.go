package ssa

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// EnsembleSpec describes a batch of independent trajectories of one network.
type EnsembleSpec struct {
	Network *Network
	Initial State
	Times   []float64
	Runs    int
	Seed    uint64
	// Options are applied to every engine. An observer passed here is shared
	// by all runs and must be safe for concurrent use.
	Options []Option
}

// EnsembleOptions tunes how an ensemble is executed.
type EnsembleOptions struct {
	// Workers bounds concurrent runs; 0 means GOMAXPROCS.
	Workers int
	Logger  Logger
	// ProgressInterval is the minimum time between progress log lines;
	// 0 means every 5 seconds.
	ProgressInterval time.Duration
}

// Ensemble holds the results of an ensemble indexed by run. Run i was seeded
// with DeriveSeed(spec.Seed, i), so results do not depend on scheduling.
type Ensemble struct {
	Species []SpeciesName `json:"species"`
	Times   []float64     `json:"times"`
	Results []*Result     `json:"results"`
}

// RunEnsemble executes spec.Runs independent trajectories on a bounded worker
// pool. Each run owns its engine and random source; nothing mutable is
// shared. The first fatal error cancels the remaining runs.
func RunEnsemble(ctx context.Context, spec EnsembleSpec, opts EnsembleOptions) (*Ensemble, error) {
	if spec.Network == nil {
		return nil, fmt.Errorf("%w: nil network", ErrInvalidNetwork)
	}
	if spec.Runs <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", spec.Runs)
	}
	if err := spec.Initial.Validate(spec.Network.NumSpecies()); err != nil {
		return nil, err
	}
	if err := ValidateSampleTimes(spec.Times); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := orNoOp(opts.Logger)
	progress := &rate.Sometimes{First: 1, Interval: interval}

	ens := &Ensemble{
		Species: spec.Network.SpeciesNames(),
		Times:   append([]float64(nil), spec.Times...),
		Results: make([]*Result, spec.Runs),
	}

	logger.Infof("ensemble started: network=%s runs=%d workers=%d samples=%d", spec.Network.Name, spec.Runs, workers, len(spec.Times))
	start := time.Now()
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range spec.Runs {
		g.Go(func() error {
			seed := DeriveSeed(spec.Seed, i)
			res, err := Run(gctx, spec.Network, spec.Initial, spec.Times, seed, spec.Options...)
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i, seed, err)
			}
			ens.Results[i] = res
			if res.Status == StatusLimitExceeded {
				logger.Warnf("run %d stopped by limit: events=%d clock=%g", i, res.Events, res.Clock)
			}
			n := done.Add(1)
			progress.Do(func() {
				logger.Infof("ensemble progress: %d/%d runs done", n, spec.Runs)
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ens, err
	}

	logger.Infof("ensemble finished: network=%s runs=%d elapsed=%s", spec.Network.Name, spec.Runs, time.Since(start))
	return ens, nil
}

// StatusCounts returns how many runs ended in each status.
func (ens *Ensemble) StatusCounts() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range ens.Results {
		if r != nil {
			counts[r.Status]++
		}
	}
	return counts
}

// MeanTrajectory holds per-sample, per-species means across runs. Runs[j] is
// the number of runs that recorded sample j.
type MeanTrajectory struct {
	Species []SpeciesName `json:"species"`
	Times   []float64     `json:"times"`
	Mean    [][]float64   `json:"mean"`
	Runs    []int         `json:"runs"`
}

// Mean averages species counts over all runs at every sample time. Partial
// runs contribute only the samples they recorded.
func (ens *Ensemble) Mean() *MeanTrajectory {
	m := &MeanTrajectory{
		Species: ens.Species,
		Times:   ens.Times,
		Mean:    make([][]float64, len(ens.Times)),
		Runs:    make([]int, len(ens.Times)),
	}
	for j := range ens.Times {
		m.Mean[j] = make([]float64, len(ens.Species))
	}
	for _, r := range ens.Results {
		if r == nil {
			continue
		}
		for j, s := range r.Trajectory.Samples {
			for k, c := range s.Counts {
				m.Mean[j][k] += float64(c)
			}
			m.Runs[j]++
		}
	}
	for j := range m.Mean {
		if m.Runs[j] == 0 {
			continue
		}
		for k := range m.Mean[j] {
			m.Mean[j][k] /= float64(m.Runs[j])
		}
	}
	return m
}

// Column returns the mean of one species over time.
func (m *MeanTrajectory) Column(name SpeciesName) ([]float64, bool) {
	for k, sp := range m.Species {
		if sp == name {
			out := make([]float64, len(m.Times))
			for j := range m.Times {
				out[j] = m.Mean[j][k]
			}
			return out, true
		}
	}
	return nil, false
}
