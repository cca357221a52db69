package bdf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/daesim/internal/dae"
)

// Step controller constants.
const (
	safety   = 0.9
	minScale = 0.2

	// variable-step BDF2 is zero-stable only for step ratios below
	// 1+sqrt(2), so growth stays under 2 per step
	maxScale = 2.0

	// newtonTol is the weighted-norm bound on the last Newton update.
	newtonTol = 0.33

	// maxNewtonFails is the number of consecutive corrector failures
	// (each followed by a step cut) tolerated before the call gives up.
	maxNewtonFails = 7
)

// Stats counts the work performed since the last Initialize.
type Stats struct {
	Steps             int
	Rejected          int
	ResidualEvals     int
	JacFactorizations int
	LastStep          float64
	NextStep          float64
	CurrentTime       float64
}

// Solver integrates F(t, y, y', p) = 0 with a variable-step
// backward-differentiation formula of order 1-2. It implements
// [dae.Solver]: BDF1 (implicit Euler) on the first step, variable-step
// BDF2 afterwards, with a modified-Newton corrector whose iteration
// matrix dF/dy + cj*dF/dy' is LU-factored once per step attempt.
type Solver struct {
	sys dae.System
	cfg dae.Config
	jac dae.Jacobian // nil when sys has no analytic Jacobian

	initialized bool
	dim, np     int

	// continuation state, retained across Solve calls
	started  bool
	t        float64
	y, yp    dae.Vector
	h        float64
	prevY    dae.Vector
	prevH    float64
	havePrev bool

	// forward sensitivities, one vector per input parameter
	sens, prevSens, nextSens []dae.Vector
	beta                     dae.Vector

	// workspace
	res, ypred, ycur, ypcur, delta, acc dae.Vector
	pwork                               dae.Vector
	m                                   *mat.Dense
	jyp                                 *mat.Dense
	lu                                  mat.LU
	rhs, sol                            *mat.VecDense

	stats Stats
}

// New constructs a solver for sys with the given configuration. The
// configuration is fixed at construction; Initialize must be called
// before the first Solve.
func New(sys dae.System, cfg dae.Config) *Solver {
	s := &Solver{sys: sys, cfg: cfg}
	if j, ok := sys.(dae.Jacobian); ok {
		s.jac = j
	}
	return s
}

// Initialize allocates the workspace and resets all continuation
// state. Calling it again discards any previous integration and
// returns the solver to a fresh state; nothing leaks because the
// solver holds no resources beyond garbage-collected buffers.
func (s *Solver) Initialize() error {
	dim := s.sys.Dim()
	if dim <= 0 {
		return fmt.Errorf("%w: got %d", dae.ErrDimension, dim)
	}
	if s.cfg.RelTol <= 0 || s.cfg.AbsTol <= 0 {
		return fmt.Errorf("%w: tolerances must be positive (rtol=%g, atol=%g)",
			dae.ErrBadConfig, s.cfg.RelTol, s.cfg.AbsTol)
	}
	if s.cfg.InitialStep <= 0 || s.cfg.MinStep <= 0 {
		return fmt.Errorf("%w: step sizes must be positive (h0=%g, hmin=%g)",
			dae.ErrBadConfig, s.cfg.InitialStep, s.cfg.MinStep)
	}
	if s.cfg.MaxStep > 0 && s.cfg.MaxStep < s.cfg.MinStep {
		return fmt.Errorf("%w: hmax=%g below hmin=%g",
			dae.ErrBadConfig, s.cfg.MaxStep, s.cfg.MinStep)
	}
	if s.cfg.MaxNewtonIters <= 0 {
		return fmt.Errorf("%w: max newton iterations must be positive", dae.ErrBadConfig)
	}

	s.dim = dim
	s.np = s.sys.NumInputs()

	s.y = make(dae.Vector, dim)
	s.yp = make(dae.Vector, dim)
	s.prevY = make(dae.Vector, dim)
	s.res = make(dae.Vector, dim)
	s.ypred = make(dae.Vector, dim)
	s.ycur = make(dae.Vector, dim)
	s.ypcur = make(dae.Vector, dim)
	s.delta = make(dae.Vector, dim)
	s.acc = make(dae.Vector, dim)
	s.m = mat.NewDense(dim, dim, nil)
	s.rhs = mat.NewVecDense(dim, nil)
	s.sol = mat.NewVecDense(dim, nil)

	if s.cfg.Sensitivity {
		s.jyp = mat.NewDense(dim, dim, nil)
		s.pwork = make(dae.Vector, s.np)
		s.beta = make(dae.Vector, dim)
		s.sens = make([]dae.Vector, s.np)
		s.prevSens = make([]dae.Vector, s.np)
		s.nextSens = make([]dae.Vector, s.np)
		for i := range s.sens {
			s.sens[i] = make(dae.Vector, dim)
			s.prevSens[i] = make(dae.Vector, dim)
			s.nextSens[i] = make(dae.Vector, dim)
		}
	}

	s.started = false
	s.havePrev = false
	s.h = s.cfg.InitialStep
	s.stats = Stats{NextStep: s.h}
	s.initialized = true
	return nil
}

// Stats returns work counters accumulated since the last Initialize.
func (s *Solver) Stats() Stats {
	st := s.stats
	st.CurrentTime = s.t
	st.NextStep = s.h
	return st
}

// Solve advances through req.Times starting at the req.TI cursor,
// writing each reached point into the request buffers. On failure it
// stops with a nonzero req.Code and TI counting the valid prefix; a
// later call on the same request resumes from Times[TI].
func (s *Solver) Solve(req *dae.Request) {
	if !s.initialized {
		req.Code = dae.CodeBadInit
		return
	}
	if err := req.Validate(s.dim, s.np, s.cfg.Sensitivity); err != nil {
		req.Code = dae.CodeCapacity
		return
	}

	if !s.started {
		if code := s.seed(req); code.Failed() {
			req.Code = code
			return
		}
	}

	for req.TI < len(req.Times) {
		target := req.Times[req.TI]
		if target > s.t+meshEps(target) {
			if code := s.advanceTo(target, req.Inputs); code.Failed() {
				req.Code = code
				return
			}
		}
		s.emit(req, target)
	}
	req.Code = dae.CodeSuccess
}

// meshEps is the slack used to decide a target time is already reached.
func meshEps(t float64) float64 {
	return 1e-12 * (1 + math.Abs(t))
}

// seed installs the initial condition and checks it satisfies the
// residual at the first requested time. Sensitivities start at zero:
// the initial state is taken to be independent of the inputs.
func (s *Solver) seed(req *dae.Request) dae.Code {
	copy(s.y, req.Y0)
	copy(s.yp, req.YP0)
	s.t = req.Times[req.TI]

	s.sys.Residual(s.t, s.y, s.yp, req.Inputs, s.res)
	s.stats.ResidualEvals++
	accept := 100 * (s.cfg.AbsTol + s.cfg.RelTol*s.y.Norm())
	if !s.res.IsValid() || s.res.Norm() > accept {
		return dae.CodeBadInit
	}

	for i := range s.sens {
		for j := range s.sens[i] {
			s.sens[i][j] = 0
			s.prevSens[i][j] = 0
		}
	}
	s.havePrev = false
	s.h = s.cfg.InitialStep
	s.started = true
	return dae.CodeSuccess
}

// advanceTo takes internal steps until the current time reaches target.
func (s *Solver) advanceTo(target float64, inputs dae.Vector) dae.Code {
	steps := 0
	newtonFails := 0

	for s.t < target-meshEps(target) {
		if s.cfg.MaxSteps > 0 && steps >= s.cfg.MaxSteps {
			return dae.CodeMaxSteps
		}

		h := s.h
		if s.cfg.MaxStep > 0 && h > s.cfg.MaxStep {
			h = s.cfg.MaxStep
		}
		clamped := false
		if h >= target-s.t {
			h = target - s.t
			clamped = true
		}
		if h < s.cfg.MinStep {
			return dae.CodeStepUnderflow
		}

		ok, scale := s.attemptStep(h, inputs)
		steps++
		if !ok {
			if scale == 0 {
				// corrector failure, not an error-test rejection
				newtonFails++
				if newtonFails >= maxNewtonFails {
					return dae.CodeNoConvergence
				}
				scale = 0.25
			} else {
				s.stats.Rejected++
			}
			s.h = h * scale
			if s.h < s.cfg.MinStep {
				return dae.CodeStepUnderflow
			}
			continue
		}

		newtonFails = 0
		s.stats.Steps++
		s.stats.LastStep = h
		if clamped {
			if h*scale > s.h {
				s.h = h * scale
			}
		} else {
			s.h = h * scale
		}
	}
	return dae.CodeSuccess
}

// attemptStep tries one step of size h. On success the continuation
// state has advanced and scale is the growth factor for the next step.
// On failure nothing has changed; scale is the shrink factor for a
// retry, or 0 when the corrector itself failed.
func (s *Solver) attemptStep(h float64, inputs dae.Vector) (ok bool, scale float64) {
	order := 1
	var cj, a1, a2 float64
	if s.havePrev {
		// variable-step BDF2: y' = (a0*y_new + a1*y_n + a2*y_prev)/h
		order = 2
		r := h / s.prevH
		a0 := (1 + 2*r) / (1 + r)
		a1 = -(1 + r)
		a2 = r * r / (1 + r)
		cj = a0 / h
	} else {
		// BDF1 startup: y' = (y_new - y_n)/h
		a1 = -1
		a2 = 0
		cj = 1 / h
	}
	for i := 0; i < s.dim; i++ {
		s.acc[i] = (a1*s.y[i] + a2*s.prevY[i]) / h
		s.ypred[i] = s.y[i] + h*s.yp[i]
	}

	tNew := s.t + h
	if !s.newton(tNew, cj, inputs) {
		return false, 0
	}

	// local error estimate from the predictor-corrector difference
	for i := 0; i < s.dim; i++ {
		s.delta[i] = errCoef(order) * (s.ycur[i] - s.ypred[i])
	}
	errNorm := s.delta.WeightedNorm(s.ycur, s.cfg.RelTol, s.cfg.AbsTol)
	if math.IsNaN(errNorm) || errNorm > 1 {
		sc := 0.5
		if !math.IsNaN(errNorm) {
			sc = safety * math.Pow(errNorm, -1/float64(order+1))
		}
		return false, math.Max(minScale, math.Min(sc, 0.9))
	}

	if s.cfg.Sensitivity {
		if !s.propagateSens(tNew, h, cj, a1, a2, inputs) {
			return false, 0
		}
	}

	copy(s.prevY, s.y)
	copy(s.y, s.ycur)
	copy(s.yp, s.ypcur)
	s.prevH = h
	s.t = tNew
	s.havePrev = true

	sc := maxScale
	if errNorm > 0 {
		sc = math.Min(maxScale, safety*math.Pow(errNorm, -1/float64(order+1)))
	}
	return true, math.Max(1, sc)
}

func errCoef(order int) float64 {
	if order == 1 {
		return 0.5
	}
	return 1.0 / 3.0
}

// emit writes the current state (and sensitivities) into the request
// at the cursor and advances it. Capacity was validated up front, so
// every write here is in bounds.
func (s *Solver) emit(req *dae.Request, target float64) {
	off := req.TI * s.dim
	copy(req.Y[off:off+s.dim], s.y)
	if s.cfg.Sensitivity {
		base := req.TI * s.dim * s.np
		for p, sv := range s.sens {
			copy(req.YS[base+p*s.dim:base+(p+1)*s.dim], sv)
		}
	}
	req.T[req.TI] = target
	req.TI++
}
