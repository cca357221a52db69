package bdf

import "math"

const sqrtEps = 1.4901161193847656e-08 // sqrt(machine epsilon)

// buildIterMatrix fills s.m with dF/dy + cj*dF/dy' at (t, ycur, ypcur)
// and LU-factors it. Systems exposing the dae.Jacobian capability are
// asked directly; otherwise each column is approximated by a single
// directional difference perturbing y[j] and yp[j] together, which
// yields the combined matrix in one residual evaluation per column.
func (s *Solver) buildIterMatrix(t, cj float64, inputs []float64) bool {
	if s.jac != nil {
		s.jac.Jac(t, s.ycur, s.ypcur, inputs, cj, s.m)
	} else {
		s.sys.Residual(t, s.ycur, s.ypcur, inputs, s.res)
		s.stats.ResidualEvals++
		if !s.res.IsValid() {
			return false
		}
		base := s.res.Clone()
		for j := 0; j < s.dim; j++ {
			d := sqrtEps * math.Max(math.Abs(s.ycur[j]), 1)
			ySave, ypSave := s.ycur[j], s.ypcur[j]
			s.ycur[j] += d
			s.ypcur[j] += cj * d
			s.sys.Residual(t, s.ycur, s.ypcur, inputs, s.res)
			s.stats.ResidualEvals++
			s.ycur[j], s.ypcur[j] = ySave, ypSave
			for i := 0; i < s.dim; i++ {
				s.m.Set(i, j, (s.res[i]-base[i])/d)
			}
		}
	}

	s.lu.Factorize(s.m)
	s.stats.JacFactorizations++
	return true
}

// newton runs the modified-Newton corrector at tNew. The iterate
// starts from the predictor; y' follows the BDF relation
// y' = cj*y + acc, so each update d moves y' by cj*d. Returns false
// when the iteration matrix is unusable or the corrector does not
// contract within the configured iteration budget.
func (s *Solver) newton(tNew, cj float64, inputs []float64) bool {
	copy(s.ycur, s.ypred)
	for i := 0; i < s.dim; i++ {
		s.ypcur[i] = cj*s.ycur[i] + s.acc[i]
	}

	if !s.buildIterMatrix(tNew, cj, inputs) {
		return false
	}

	for iter := 0; iter < s.cfg.MaxNewtonIters; iter++ {
		s.sys.Residual(tNew, s.ycur, s.ypcur, inputs, s.res)
		s.stats.ResidualEvals++
		if !s.res.IsValid() {
			return false
		}
		for i := 0; i < s.dim; i++ {
			s.rhs.SetVec(i, -s.res[i])
		}
		if err := s.lu.SolveVecTo(s.sol, false, s.rhs); err != nil {
			return false
		}
		for i := 0; i < s.dim; i++ {
			d := s.sol.AtVec(i)
			s.delta[i] = d
			s.ycur[i] += d
			s.ypcur[i] += cj * d
		}
		if !s.ycur.IsValid() {
			return false
		}
		if s.delta.WeightedNorm(s.ycur, s.cfg.RelTol, s.cfg.AbsTol) < newtonTol {
			return true
		}
	}
	return false
}
