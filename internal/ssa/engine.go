package ssa

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Status reports where an engine or a run stands.
type Status int

const (
	// StatusRunning means further events are possible.
	StatusRunning Status = iota
	// StatusHalted means total propensity is zero: the state is absorbing.
	StatusHalted
	// StatusCompleted means the requested horizon or sample grid was reached.
	StatusCompleted
	// StatusLimitExceeded means a caller-set event or time ceiling stopped the run.
	StatusLimitExceeded
	// StatusCanceled means the caller's context ended the run at an event boundary.
	StatusCanceled
	// StatusFailed means the random source or a rate law failed; the error
	// returned alongside says why.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusHalted:
		return "halted"
	case StatusCompleted:
		return "completed"
	case StatusLimitExceeded:
		return "limit_exceeded"
	case StatusCanceled:
		return "canceled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for _, c := range []Status{StatusRunning, StatusHalted, StatusCompleted, StatusLimitExceeded, StatusCanceled, StatusFailed} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Limits bounds a run. Zero fields are unlimited. MaxTime is in simulation
// time: an event that would land after it is not committed.
type Limits struct {
	MaxEvents uint64
	MaxTime   float64
}

// maxRedraws bounds how often a variate outside (0,1) is redrawn.
const maxRedraws = 64

type pendingEvent struct {
	time    float64
	channel int
}

// Engine runs the direct-method SSA on one network. It owns its state, clock
// and random source and is not safe for concurrent use; run independent
// trajectories on independent engines.
type Engine struct {
	net      *Network
	params   Parameters
	state    State
	clock    float64
	events   uint64
	halted   bool
	src      RandomSource
	props    []float64
	pending  *pendingEvent
	limits   Limits
	observer Observer
	logger   Logger
	paramSet bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithParameters runs the engine with params instead of the network defaults.
// They are validated by NewEngine.
func WithParameters(params Parameters) Option {
	return func(e *Engine) {
		e.params = params
		e.paramSet = true
	}
}

// WithLimits sets event and simulation-time ceilings.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithObserver registers an observer called after every committed event.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithLogger sets the engine logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine prepares a run from the initial state at clock 0. Configuration
// problems are reported here, never during the run.
func NewEngine(net *Network, initial State, src RandomSource, opts ...Option) (*Engine, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: nil network", ErrInvalidNetwork)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrRandomSource)
	}
	if err := initial.Validate(net.NumSpecies()); err != nil {
		return nil, err
	}

	e := &Engine{
		net:    net,
		params: net.Parameters(),
		state:  initial.Clone(),
		src:    src,
		props:  make([]float64, net.NumChannels()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = orNoOp(e.logger)

	if e.paramSet {
		if err := net.Validate(e.params); err != nil {
			return nil, err
		}
	}
	if e.limits.MaxTime < 0 || math.IsNaN(e.limits.MaxTime) {
		return nil, fmt.Errorf("%w: invalid time limit %g", ErrInvalidNetwork, e.limits.MaxTime)
	}
	return e, nil
}

// Clock returns the current simulation time.
func (e *Engine) Clock() float64 { return e.clock }

// Events returns how many events have been committed.
func (e *Engine) Events() uint64 { return e.events }

// State returns a copy of the current species vector.
func (e *Engine) State() State { return e.state.Clone() }

// Network returns the network being simulated.
func (e *Engine) Network() *Network { return e.net }

// Parameters returns the parameters in effect.
func (e *Engine) Parameters() Parameters { return e.params }

// Status returns StatusHalted once the engine reached an absorbing state and
// StatusRunning otherwise.
func (e *Engine) Status() Status {
	if e.halted {
		return StatusHalted
	}
	return StatusRunning
}

// NextEventTime returns the time of the next event without committing it.
// The event is drawn once and committed by the following Step, so peeking
// never changes the trajectory. On an absorbing state it returns the current
// clock and StatusHalted.
func (e *Engine) NextEventTime() (float64, Status, error) {
	if err := e.prepare(); err != nil {
		return e.clock, StatusFailed, err
	}
	if e.halted {
		return e.clock, StatusHalted, nil
	}
	return e.pending.time, StatusRunning, nil
}

// Step advances the engine by exactly one event. It returns StatusRunning
// after committing an event, StatusHalted when no event is possible (state
// and clock unchanged), StatusLimitExceeded when a limit prevents the event
// and StatusCanceled with ctx.Err() when ctx is done. An absorbing state
// reports StatusHalted even when the event limit has been reached.
func (e *Engine) Step(ctx context.Context) (Status, error) {
	if e.halted {
		return StatusHalted, nil
	}
	if err := ctx.Err(); err != nil {
		return StatusCanceled, err
	}
	if e.limits.MaxEvents > 0 && e.events >= e.limits.MaxEvents {
		if e.pending == nil {
			if _, err := e.refresh(); err != nil {
				return StatusFailed, err
			}
		}
		if e.halted {
			return StatusHalted, nil
		}
		return StatusLimitExceeded, nil
	}
	if err := e.prepare(); err != nil {
		return StatusFailed, err
	}
	if e.halted {
		return StatusHalted, nil
	}
	if e.limits.MaxTime > 0 && e.pending.time > e.limits.MaxTime {
		return StatusLimitExceeded, nil
	}
	e.commit()
	return StatusRunning, nil
}

// AdvanceUntil fires events while the clock is below t and the engine is
// running. It returns StatusCompleted once the clock reaches t; the last event
// may land past t.
func (e *Engine) AdvanceUntil(ctx context.Context, t float64) (Status, error) {
	for e.clock < t {
		st, err := e.Step(ctx)
		if err != nil || st != StatusRunning {
			return st, err
		}
	}
	return StatusCompleted, nil
}

// refresh evaluates the propensities of the current state and marks the
// engine halted when their total is zero.
func (e *Engine) refresh() (float64, error) {
	e.props = e.net.Propensities(e.state, e.params, e.props)
	total := 0.0
	for i, p := range e.props {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return 0, fmt.Errorf("%w: channel '%s' evaluated to %g at t=%g", ErrInvalidPropensity, e.net.channels[i].ID, p, e.clock)
		}
		total += p
	}
	if total == 0 {
		e.halted = true
		e.logger.Debugf("engine halted: network=%s clock=%g events=%d", e.net.Name, e.clock, e.events)
	}
	return total, nil
}

// prepare draws the pending event if there is none.
func (e *Engine) prepare() error {
	if e.halted || e.pending != nil {
		return nil
	}

	total, err := e.refresh()
	if err != nil || e.halted {
		return err
	}

	r1, err := e.draw()
	if err != nil {
		return err
	}
	r2, err := e.draw()
	if err != nil {
		return err
	}

	tau := -math.Log(r1) / total
	next := e.clock + tau
	if next <= e.clock {
		// tau underflowed against the clock; keep event times strictly increasing
		next = math.Nextafter(e.clock, math.Inf(1))
	}
	e.pending = &pendingEvent{
		time:    next,
		channel: selectChannel(e.props, total, r2),
	}
	return nil
}

// commit applies the pending event.
func (e *Engine) commit() {
	ch := &e.net.channels[e.pending.channel]
	e.state.apply(ch.Delta)
	e.clock = e.pending.time
	e.events++
	idx := e.pending.channel
	e.pending = nil

	if e.observer != nil {
		e.observer.ObserveEvent(Event{
			Seq:       e.events,
			Time:      e.clock,
			Channel:   idx,
			ChannelID: ch.ID,
			State:     e.state.Clone(),
		})
	}
}

// draw returns a variate strictly inside (0,1).
func (e *Engine) draw() (float64, error) {
	for range maxRedraws {
		r, err := e.src.Uniform()
		if err != nil {
			if errors.Is(err, ErrRandomSource) {
				return 0, err
			}
			return 0, fmt.Errorf("%w: %w", ErrRandomSource, err)
		}
		if r > 0 && r < 1 {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: no variate in (0,1) after %d draws", ErrRandomSource, maxRedraws)
}

// selectChannel returns the first channel, in declaration order, whose
// cumulative propensity strictly exceeds r*total. Zero-propensity channels
// are never selected.
func selectChannel(props []float64, total, r float64) int {
	target := r * total
	sum := 0.0
	last := -1
	for i, p := range props {
		if p <= 0 {
			continue
		}
		last = i
		sum += p
		if sum > target {
			return i
		}
	}
	// rounding left the cumulative sum at or below the target
	return last
}
