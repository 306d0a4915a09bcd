package ssa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingLogger keeps every formatted line; safe for concurrent use.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Debugf(format string, v ...any) { l.record("DEBUG", format, v...) }
func (l *recordingLogger) Infof(format string, v ...any)  { l.record("INFO", format, v...) }
func (l *recordingLogger) Warnf(format string, v ...any)  { l.record("WARN", format, v...) }
func (l *recordingLogger) Errorf(format string, v ...any) { l.record("ERROR", format, v...) }

func (l *recordingLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

func TestRunEnsemble_IndependentOfWorkers(t *testing.T) {
	n, initial := birthDeath(t, 1.0, 0.1)
	spec := EnsembleSpec{
		Network: n,
		Initial: initial,
		Times:   Grid(1, 21),
		Runs:    24,
		Seed:    31,
	}

	serial, err := RunEnsemble(context.Background(), spec, EnsembleOptions{Workers: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	parallel, err := RunEnsemble(context.Background(), spec, EnsembleOptions{Workers: 6})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := range spec.Runs {
		a, b := serial.Results[i], parallel.Results[i]
		if a.Seed != DeriveSeed(31, i) {
			t.Errorf("Run %d: expected derived seed %d, got %d", i, DeriveSeed(31, i), a.Seed)
		}
		if a.Events != b.Events || a.Clock != b.Clock {
			t.Fatalf("Run %d differs between worker counts: %d/%g vs %d/%g", i, a.Events, a.Clock, b.Events, b.Clock)
		}
		for j := range a.Trajectory.Samples {
			if a.Trajectory.Samples[j].Counts[0] != b.Trajectory.Samples[j].Counts[0] {
				t.Fatalf("Run %d sample %d differs between worker counts", i, j)
			}
		}
	}

	// runs are not copies of each other
	distinct := false
	for i := 1; i < spec.Runs; i++ {
		if serial.Results[i].Events != serial.Results[0].Events {
			distinct = true
			break
		}
	}
	if !distinct {
		t.Error("Expected independent runs to differ")
	}
}

func TestRunEnsemble_StatusCountsAndMean(t *testing.T) {
	n, initial := decayOnly(t, 1.0, 4)

	ens, err := RunEnsemble(context.Background(), EnsembleSpec{
		Network: n,
		Initial: initial,
		Times:   []float64{0, 200},
		Runs:    10,
		Seed:    1,
	}, EnsembleOptions{Workers: 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	counts := ens.StatusCounts()
	if counts[StatusHalted] != 10 {
		t.Errorf("Expected all 10 runs halted, got %v", counts)
	}

	m := ens.Mean()
	x, ok := m.Column("X")
	if !ok {
		t.Fatal("Expected mean column X")
	}
	if x[0] != 4 || x[1] != 0 {
		t.Errorf("Expected mean X [4 0], got %v", x)
	}
	if m.Runs[0] != 10 || m.Runs[1] != 10 {
		t.Errorf("Expected 10 runs per sample, got %v", m.Runs)
	}
	if _, ok := m.Column("Y"); ok {
		t.Error("Expected unknown mean column to be missing")
	}
}

func TestRunEnsemble_LogsProgressAndLimits(t *testing.T) {
	n, initial := birthDeath(t, 1.0, 0.1)
	logger := &recordingLogger{}

	ens, err := RunEnsemble(context.Background(), EnsembleSpec{
		Network: n,
		Initial: initial,
		Times:   Grid(1, 100),
		Runs:    4,
		Seed:    5,
		Options: []Option{WithLimits(Limits{MaxEvents: 3})},
	}, EnsembleOptions{Workers: 2, Logger: logger, ProgressInterval: time.Hour})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if ens.StatusCounts()[StatusLimitExceeded] != 4 {
		t.Errorf("Expected 4 limited runs, got %v", ens.StatusCounts())
	}
	for _, want := range []string{"ensemble started", "ensemble progress:", "stopped by limit", "ensemble finished"} {
		if !logger.contains(want) {
			t.Errorf("Expected a log line containing %q", want)
		}
	}
}

func TestRunEnsemble_InvalidSpec(t *testing.T) {
	n, initial := birthDeath(t, 1.0, 0.1)

	tests := []struct {
		name string
		spec EnsembleSpec
		want error
	}{
		{"nil network", EnsembleSpec{Initial: initial, Runs: 1}, ErrInvalidNetwork},
		{"bad state", EnsembleSpec{Network: n, Initial: State{-1}, Runs: 1}, ErrInvalidState},
		{"bad times", EnsembleSpec{Network: n, Initial: initial, Times: []float64{1, 0}, Runs: 1}, ErrInvalidSampleTimes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunEnsemble(context.Background(), tt.spec, EnsembleOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := RunEnsemble(context.Background(), EnsembleSpec{Network: n, Initial: initial}, EnsembleOptions{}); err == nil {
		t.Error("Expected error for zero runs")
	}
}

func TestRunEnsemble_Canceled(t *testing.T) {
	n, initial := birthDeath(t, 1.0, 0.1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunEnsemble(ctx, EnsembleSpec{
		Network: n,
		Initial: initial,
		Times:   Grid(1, 100),
		Runs:    8,
		Seed:    1,
	}, EnsembleOptions{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
