package dae

import "errors"

// Fatal setup errors returned by Initialize. Anything signalled here
// means the solver is unusable; per-step failures go through Code instead.
var (
	// ErrDimension indicates a system with a non-positive dimension.
	ErrDimension = errors.New("dae: system dimension must be positive")

	// ErrBadConfig indicates tolerances or step bounds that rule out any step.
	ErrBadConfig = errors.New("dae: invalid solver configuration")

	// ErrBadMesh indicates a request whose output times are not strictly increasing.
	ErrBadMesh = errors.New("dae: output times must be strictly increasing")

	// ErrCapacity indicates request buffers smaller than the declared layout.
	ErrCapacity = errors.New("dae: return buffer capacity too small")
)

// Code is the status of one Solve call. Zero is success; nonzero codes
// classify the failure and leave the request's written prefix valid.
type Code int

const (
	CodeSuccess Code = iota
	CodeStepUnderflow
	CodeNoConvergence
	CodeMaxSteps
	CodeBadInit
	CodeCapacity
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeStepUnderflow:
		return "step size underflow"
	case CodeNoConvergence:
		return "nonlinear solve failed to converge"
	case CodeMaxSteps:
		return "exceeded max internal steps"
	case CodeBadInit:
		return "inconsistent initial conditions"
	case CodeCapacity:
		return "return buffer capacity violation"
	default:
		return "unknown failure"
	}
}

func (c Code) Failed() bool { return c != CodeSuccess }
