package problems

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/daesim/internal/dae"
)

// Decay is scalar exponential decay in residual form,
// y' + lambda*y = 0, with the rate lambda taken from the input
// parameter buffer so its sensitivity can be requested. The exact
// solution is y0*exp(-lambda*t).
type Decay struct {
	Y0 float64
}

func NewDecay() *Decay {
	return &Decay{Y0: 1.0}
}

func (d *Decay) Name() string   { return "decay" }
func (d *Decay) Dim() int       { return 1 }
func (d *Decay) NumInputs() int { return 1 }

func (d *Decay) Residual(t float64, y, yp, p, res dae.Vector) {
	res[0] = yp[0] + p[0]*y[0]
}

func (d *Decay) Jac(t float64, y, yp, p dae.Vector, cj float64, dst *mat.Dense) {
	dst.Set(0, 0, p[0]+cj)
}

func (d *Decay) DefaultInputs() dae.Vector {
	return dae.Vector{1.0}
}

func (d *Decay) ConsistentInit(p dae.Vector) (dae.Vector, dae.Vector) {
	return dae.Vector{d.Y0}, dae.Vector{-p[0] * d.Y0}
}
