package problems

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/daesim/internal/dae"
)

// Robertson is the classic stiff three-species reaction kinetics
// problem in its DAE form: two differential species balances plus the
// algebraic mass conservation constraint y1 + y2 + y3 = 1. The rate
// constants k1, k2, k3 come from the input parameter buffer.
type Robertson struct{}

func NewRobertson() *Robertson {
	return &Robertson{}
}

func (r *Robertson) Name() string   { return "robertson" }
func (r *Robertson) Dim() int       { return 3 }
func (r *Robertson) NumInputs() int { return 3 }

func (r *Robertson) Residual(t float64, y, yp, p, res dae.Vector) {
	k1, k2, k3 := p[0], p[1], p[2]
	res[0] = yp[0] + k1*y[0] - k3*y[1]*y[2]
	res[1] = yp[1] - k1*y[0] + k2*y[1]*y[1] + k3*y[1]*y[2]
	res[2] = y[0] + y[1] + y[2] - 1
}

func (r *Robertson) Jac(t float64, y, yp, p dae.Vector, cj float64, dst *mat.Dense) {
	k1, k2, k3 := p[0], p[1], p[2]
	dst.Set(0, 0, k1+cj)
	dst.Set(0, 1, -k3*y[2])
	dst.Set(0, 2, -k3*y[1])
	dst.Set(1, 0, -k1)
	dst.Set(1, 1, 2*k2*y[1]+k3*y[2]+cj)
	dst.Set(1, 2, k3*y[1])
	dst.Set(2, 0, 1)
	dst.Set(2, 1, 1)
	dst.Set(2, 2, 1)
}

func (r *Robertson) DefaultInputs() dae.Vector {
	return dae.Vector{0.04, 3e7, 1e4}
}

func (r *Robertson) ConsistentInit(p dae.Vector) (dae.Vector, dae.Vector) {
	y0 := dae.Vector{1, 0, 0}
	yp0 := dae.Vector{-p[0], p[0], 0}
	return y0, yp0
}
