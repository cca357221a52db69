package bdf

import (
	"math"

	"github.com/san-kum/daesim/internal/dae"
)

// propagateSens advances the forward sensitivities across an accepted
// step using the staggered-direct scheme: the sensitivity system
//
//	dF/dy * s + dF/dy' * s' + dF/dp_i = 0
//
// is discretized with the same BDF relation as the state, so
// s' = cj*s + (a1*s_n + a2*s_prev)/h, and the already-factored
// iteration matrix M = dF/dy + cj*dF/dy' solves
//
//	M * s_new = -dF/dp_i - dF/dy' * beta_i
//
// for each input parameter. dF/dy' and dF/dp are approximated by
// forward differences at the accepted point.
func (s *Solver) propagateSens(tNew, h, cj, a1, a2 float64, inputs dae.Vector) bool {
	s.sys.Residual(tNew, s.ycur, s.ypcur, inputs, s.res)
	s.stats.ResidualEvals++
	if !s.res.IsValid() {
		return false
	}
	base := s.res.Clone()

	// dF/dy' column by column
	for j := 0; j < s.dim; j++ {
		d := sqrtEps * math.Max(math.Abs(s.ypcur[j]), 1)
		save := s.ypcur[j]
		s.ypcur[j] += d
		s.sys.Residual(tNew, s.ycur, s.ypcur, inputs, s.res)
		s.stats.ResidualEvals++
		s.ypcur[j] = save
		for i := 0; i < s.dim; i++ {
			s.jyp.Set(i, j, (s.res[i]-base[i])/d)
		}
	}

	for p := 0; p < s.np; p++ {
		// dF/dp_p
		copy(s.pwork, inputs)
		d := sqrtEps * math.Max(math.Abs(inputs[p]), 1)
		s.pwork[p] += d
		s.sys.Residual(tNew, s.ycur, s.ypcur, s.pwork, s.res)
		s.stats.ResidualEvals++
		if !s.res.IsValid() {
			return false
		}

		for i := 0; i < s.dim; i++ {
			s.beta[i] = (a1*s.sens[p][i] + a2*s.prevSens[p][i]) / h
		}
		for i := 0; i < s.dim; i++ {
			fp := (s.res[i] - base[i]) / d
			row := 0.0
			for j := 0; j < s.dim; j++ {
				row += s.jyp.At(i, j) * s.beta[j]
			}
			s.rhs.SetVec(i, -fp-row)
		}
		if err := s.lu.SolveVecTo(s.sol, false, s.rhs); err != nil {
			return false
		}
		for i := 0; i < s.dim; i++ {
			s.nextSens[p][i] = s.sol.AtVec(i)
		}
	}

	for p := 0; p < s.np; p++ {
		copy(s.prevSens[p], s.sens[p])
		copy(s.sens[p], s.nextSens[p])
	}
	return true
}
