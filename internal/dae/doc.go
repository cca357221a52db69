// Package dae defines the solver contract for implicit
// differential-algebraic systems F(t, y, y', p) = 0.
//
// The package holds the boundary types shared by callers and concrete
// integrators:
//
//   - [System]: residual evaluation supplied by the caller
//   - [Jacobian]: optional analytic iteration-matrix capability
//   - [Solver]: Initialize/Solve lifecycle every integrator implements
//   - [Request]: caller-owned output buffers with an in/out cursor
//   - [Code]: per-call integration status
//
// Error handling is two-tiered. Initialize returns a Go error for fatal
// setup problems; Solve reports per-call integration status through
// Request.Code and always leaves the written prefix of the output
// buffers valid, so a caller can inspect partial trajectories, retry
// with adjusted settings, or resume from the cursor.
//
// # Thread Safety
//
// A Solver instance holds unsynchronized workspace and must be driven
// by one goroutine at a time. Independent instances share nothing and
// may run concurrently, provided the System they evaluate is safe for
// concurrent calls.
package dae
