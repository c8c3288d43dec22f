package pool

import "errors"

// ErrResourceExhausted is returned when a pool growth would exceed the
// process-wide memory cap configured on the owning Pools (spec.md §4.1).
var ErrResourceExhausted = errors.New("pool: resource exhausted")

// ErrDoubleRelease is the debug-mode invariant violation raised when a
// handle not owned by the pool (or already released) is released again.
// It is a Fatal condition at the façade layer (spec.md §7).
var ErrDoubleRelease = errors.New("pool: double release of handle")
