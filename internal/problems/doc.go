// Package problems provides example differential-algebraic systems.
//
// Each problem implements [dae.System] in residual form F(t, y, y', p)
// together with an analytic [dae.Jacobian]:
//
//   - [Decay]: scalar exponential decay with a known closed form
//   - [Robertson]: stiff reaction kinetics with a conservation constraint
//   - [Oscillator]: damped oscillator with an algebraic force variable
//
// Problems also carry default inputs and a consistent initial
// condition so the CLI can run them without further setup.
package problems
