package dae

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type Vector []float64

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// WeightedNorm is the RMS norm with per-component weights 1/(atol + rtol*|ref|),
// the acceptance norm used by error tests and Newton corrections.
func (v Vector) WeightedNorm(ref Vector, rtol, atol float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for i, x := range v {
		w := 1.0 / (atol + rtol*math.Abs(ref[i]))
		sum += (x * w) * (x * w)
	}
	return math.Sqrt(sum / float64(len(v)))
}

// System evaluates the implicit residual F(t, y, y', p) of a
// differential-algebraic system. Implementations write the residual
// into res and must not retain y, yp or p across calls.
type System interface {
	Name() string
	Dim() int
	NumInputs() int
	Residual(t float64, y, yp, p, res Vector)
}

// Jacobian is an optional capability: systems that can evaluate the
// iteration matrix dF/dy + cj*dF/dy' analytically implement it, and
// solvers use it instead of finite differences.
type Jacobian interface {
	Jac(t float64, y, yp, p Vector, cj float64, dst *mat.Dense)
}

type Config struct {
	RelTol         float64
	AbsTol         float64
	InitialStep    float64
	MinStep        float64
	MaxStep        float64
	MaxSteps       int // internal steps per output interval
	MaxNewtonIters int
	Sensitivity    bool
}

func DefaultConfig() Config {
	return Config{
		RelTol:         1e-6,
		AbsTol:         1e-8,
		InitialStep:    1e-4,
		MinStep:        1e-12,
		MaxStep:        0, // 0 means unbounded
		MaxSteps:       5000,
		MaxNewtonIters: 8,
		Sensitivity:    false,
	}
}
