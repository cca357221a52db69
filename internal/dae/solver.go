package dae

import "fmt"

// Solver is the contract every concrete DAE integrator satisfies.
//
// Initialize performs all one-time setup (workspace allocation, callback
// registration) and must succeed exactly once before the first Solve.
// Calling it again resets the integrator to a fresh state.
//
// Solve advances the integration through the request's output times,
// writing into the caller-owned buffers and reporting per-call status
// through req.Code. It never returns a Go error: integration failures
// are recoverable at the call site and leave the written prefix of the
// request valid.
type Solver interface {
	Initialize() error
	Solve(req *Request)
}

// Request bundles the caller-owned buffers of one Solve call.
//
// Layout per output time point i:
//
//	Y[i*dim : (i+1)*dim]        state vector at Times[i]
//	YS[i*dim*np : (i+1)*dim*np] np sensitivity blocks of dim scalars,
//	                            one per input parameter, in input order
//	T[i]                        the achieved time (equals Times[i])
//
// TI is the in/out cursor: the number of time points written so far.
// It starts at 0 for a fresh integration, never decreases during a
// call, and on return counts the valid prefix of the output buffers.
// After a partial failure a second Solve on the same request resumes
// from Times[TI]; starting over requires a fresh request and a new
// Initialize.
type Request struct {
	Times  []float64
	Y0     Vector
	YP0    Vector
	Inputs Vector

	// Stride is the declared capacity in scalars per time point across
	// Y and YS together. Solvers refuse to write anything when it is
	// smaller than the layout above requires.
	Stride int

	Y  []float64
	YS []float64
	T  []float64

	TI   int
	Code Code
}

// Validate checks mesh ordering and buffer capacity against the system
// shape before any write happens. Solvers call it at the top of Solve;
// callers may call it early to fail fast.
func (r *Request) Validate(dim, ninputs int, sens bool) error {
	if len(r.Times) == 0 {
		return fmt.Errorf("%w: empty time mesh", ErrBadMesh)
	}
	for i := 1; i < len(r.Times); i++ {
		if r.Times[i] <= r.Times[i-1] {
			return fmt.Errorf("%w: t[%d]=%g after t[%d]=%g",
				ErrBadMesh, i, r.Times[i], i-1, r.Times[i-1])
		}
	}
	if len(r.Y0) != dim || len(r.YP0) != dim {
		return fmt.Errorf("%w: y0/yp0 length %d/%d, system dim %d",
			ErrDimension, len(r.Y0), len(r.YP0), dim)
	}
	if r.TI < 0 || r.TI > len(r.Times) {
		return fmt.Errorf("%w: cursor %d outside [0, %d]",
			ErrCapacity, r.TI, len(r.Times))
	}

	need := dim
	if sens {
		need += dim * ninputs
	}
	if r.Stride < need {
		return fmt.Errorf("%w: stride %d, layout needs %d", ErrCapacity, r.Stride, need)
	}
	n := len(r.Times)
	if len(r.T) < n {
		return fmt.Errorf("%w: t buffer holds %d points, mesh has %d", ErrCapacity, len(r.T), n)
	}
	if len(r.Y) < n*dim {
		return fmt.Errorf("%w: y buffer holds %d scalars, need %d", ErrCapacity, len(r.Y), n*dim)
	}
	if sens && len(r.YS) < n*dim*ninputs {
		return fmt.Errorf("%w: yS buffer holds %d scalars, need %d",
			ErrCapacity, len(r.YS), n*dim*ninputs)
	}
	return nil
}

// NewRequest allocates output buffers sized for the given mesh and
// system shape. Callers with preallocated storage build a Request
// directly instead.
func NewRequest(times []float64, y0, yp0, inputs Vector, sens bool) *Request {
	dim := len(y0)
	np := len(inputs)
	stride := dim
	if sens {
		stride += dim * np
	}
	r := &Request{
		Times:  times,
		Y0:     y0,
		YP0:    yp0,
		Inputs: inputs,
		Stride: stride,
		Y:      make([]float64, len(times)*dim),
		T:      make([]float64, len(times)),
	}
	if sens {
		r.YS = make([]float64, len(times)*dim*np)
	}
	return r
}

// StateAt returns the state block for time point i. Valid for i < TI.
func (r *Request) StateAt(i, dim int) Vector {
	return Vector(r.Y[i*dim : (i+1)*dim])
}

// SensAt returns the sensitivity block of input parameter p at time
// point i. Valid for i < TI when sensitivities were requested.
func (r *Request) SensAt(i, p, dim, ninputs int) Vector {
	off := (i*ninputs + p) * dim
	return Vector(r.YS[off : off+dim])
}
