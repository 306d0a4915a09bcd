package ssa

import "errors"

var (
	// ErrInvalidNetwork is matched by every configuration error reported while
	// building a network or binding parameters to it.
	ErrInvalidNetwork = errors.New("ssa: invalid network")

	// ErrInvalidState indicates an initial state with the wrong dimension or a
	// negative count.
	ErrInvalidState = errors.New("ssa: invalid state")

	// ErrInvalidSampleTimes indicates a sample grid that is decreasing,
	// negative or not finite.
	ErrInvalidSampleTimes = errors.New("ssa: invalid sample times")

	// ErrRandomSource indicates the random source could not supply a variate.
	ErrRandomSource = errors.New("ssa: random source failure")

	// ErrInvalidPropensity indicates a rate law produced a negative or
	// non-finite propensity during a run.
	ErrInvalidPropensity = errors.New("ssa: invalid propensity")
)
