package problems

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/daesim/internal/dae"
)

// Oscillator is a damped harmonic oscillator written as an index-1
// DAE: position and velocity are differential, the total spring-damper
// force is an algebraic variable eliminated by the constraint
// f + k*x + c*v = 0. Stiffness k and damping c come from the input
// buffer; the mass is a structural parameter.
type Oscillator struct {
	Mass float64
	X0   float64
}

func NewOscillator() *Oscillator {
	return &Oscillator{Mass: 1.0, X0: 1.0}
}

func (o *Oscillator) Name() string   { return "oscillator" }
func (o *Oscillator) Dim() int       { return 3 }
func (o *Oscillator) NumInputs() int { return 2 }

func (o *Oscillator) Residual(t float64, y, yp, p, res dae.Vector) {
	k, c := p[0], p[1]
	res[0] = yp[0] - y[1]
	res[1] = yp[1] - y[2]/o.Mass
	res[2] = y[2] + k*y[0] + c*y[1]
}

func (o *Oscillator) Jac(t float64, y, yp, p dae.Vector, cj float64, dst *mat.Dense) {
	k, c := p[0], p[1]
	dst.Set(0, 0, cj)
	dst.Set(0, 1, -1)
	dst.Set(0, 2, 0)
	dst.Set(1, 0, 0)
	dst.Set(1, 1, cj)
	dst.Set(1, 2, -1/o.Mass)
	dst.Set(2, 0, k)
	dst.Set(2, 1, c)
	dst.Set(2, 2, 1)
}

func (o *Oscillator) DefaultInputs() dae.Vector {
	return dae.Vector{4.0, 0.4}
}

func (o *Oscillator) ConsistentInit(p dae.Vector) (dae.Vector, dae.Vector) {
	k, c := p[0], p[1]
	x, v := o.X0, 0.0
	f := -(k*x + c*v)
	y0 := dae.Vector{x, v, f}
	yp0 := dae.Vector{v, f / o.Mass, 0}
	return y0, yp0
}
