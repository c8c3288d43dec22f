package engine

import "time"

// Clock abstracts time so tests can control timestamps without sleeping
// (grounded on the RAG service's Clock/SystemClock pattern).
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Option configures an Engine during construction.
type Option func(*Engine)

// WithClock overrides the engine's clock, primarily for deterministic
// tests of temporal behavior.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithDebug toggles the pool subsystem's debug-mode invariant checking
// (double-release detection, spec.md §4.1).
func WithDebug(debug bool) Option { return func(e *Engine) { e.debug = debug } }
