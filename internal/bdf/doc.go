// Package bdf provides the reference implementation of [dae.Solver]:
// a variable-step backward-differentiation-formula integrator of order
// 1-2 for implicit systems F(t, y, y', p) = 0.
//
// The integrator starts with an implicit-Euler step and switches to
// variable-step BDF2. Each step solves the corrector equation with a
// modified Newton iteration; the iteration matrix dF/dy + cj*dF/dy'
// comes from the system's analytic [dae.Jacobian] when available and
// from directional finite differences otherwise, and is LU-factored
// with gonum once per step attempt. Forward sensitivities use the
// staggered-direct scheme, reusing the factored matrix.
package bdf
