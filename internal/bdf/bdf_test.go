package bdf

import (
	"math"
	"testing"

	"github.com/san-kum/daesim/internal/dae"
	"github.com/san-kum/daesim/internal/problems"
)

func decaySetup(cfg dae.Config) (*Solver, *dae.Request) {
	prob := problems.NewDecay()
	inputs := prob.DefaultInputs()
	y0, yp0 := prob.ConsistentInit(inputs)
	solver := New(prob, cfg)
	req := dae.NewRequest([]float64{0, 1, 2}, y0, yp0, inputs, cfg.Sensitivity)
	return solver, req
}

func TestSolver_DecayMatchesExact(t *testing.T) {
	solver, req := decaySetup(dae.DefaultConfig())
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	solver.Solve(req)

	if req.Code != dae.CodeSuccess {
		t.Fatalf("expected success, got %v", req.Code)
	}
	if req.TI != 3 {
		t.Fatalf("expected 3 points written, got %d", req.TI)
	}

	expected := []float64{1, math.Exp(-1), math.Exp(-2)}
	for i, want := range expected {
		if req.T[i] != req.Times[i] {
			t.Errorf("t[%d]: expected %g, got %g", i, req.Times[i], req.T[i])
		}
		got := req.StateAt(i, 1)[0]
		if math.Abs(got-want) > 1e-3 {
			t.Errorf("y[%d]: expected %.6f, got %.6f", i, want, got)
		}
	}
}

func TestSolver_ForcedFailurePartialOutput(t *testing.T) {
	prob := problems.NewDecay()
	inputs := prob.DefaultInputs()
	y0, yp0 := prob.ConsistentInit(inputs)

	cfg := dae.DefaultConfig()
	cfg.MaxSteps = 1
	solver := New(prob, cfg)
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	// the first two targets are reachable within one internal step
	// each; the third is not
	times := []float64{0, 1e-9, 0.5, 1.0, 1.5}
	req := dae.NewRequest(times, y0, yp0, inputs, false)
	solver.Solve(req)

	if req.Code != dae.CodeMaxSteps {
		t.Fatalf("expected max-steps failure, got %v", req.Code)
	}
	if req.TI != 2 {
		t.Fatalf("expected 2 valid points, got %d", req.TI)
	}
	for i := 0; i < req.TI; i++ {
		if req.T[i] != times[i] {
			t.Errorf("t[%d]: expected %g, got %g", i, times[i], req.T[i])
		}
		got := req.StateAt(i, 1)[0]
		want := math.Exp(-times[i])
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("y[%d]: expected %.8f, got %.8f", i, want, got)
		}
	}
}

func TestSolver_ResumeAfterFailure(t *testing.T) {
	prob := problems.NewDecay()
	inputs := prob.DefaultInputs()
	y0, yp0 := prob.ConsistentInit(inputs)

	cfg := dae.DefaultConfig()
	cfg.MaxSteps = 3
	solver := New(prob, cfg)
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	req := dae.NewRequest([]float64{0, 0.5}, y0, yp0, inputs, false)
	solver.Solve(req)
	if req.Code != dae.CodeMaxSteps {
		t.Fatalf("expected an initial max-steps failure, got %v", req.Code)
	}
	if req.TI != 1 {
		t.Fatalf("expected cursor 1 after failure, got %d", req.TI)
	}

	// each retry grants another step budget from the point reached
	prev := req.TI
	for calls := 0; req.Code.Failed() && calls < 2000; calls++ {
		solver.Solve(req)
		if req.TI < prev {
			t.Fatalf("cursor went backwards: %d -> %d", prev, req.TI)
		}
		prev = req.TI
	}

	if req.Code != dae.CodeSuccess {
		t.Fatalf("resume never completed: %v", req.Code)
	}
	if req.TI != 2 {
		t.Fatalf("expected 2 points after resume, got %d", req.TI)
	}
	got := req.StateAt(1, 1)[0]
	want := math.Exp(-0.5)
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("resumed solution: expected %.6f, got %.6f", want, got)
	}
}

func TestSolver_BadInitialCondition(t *testing.T) {
	prob := problems.NewDecay()
	inputs := prob.DefaultInputs()

	solver := New(prob, dae.DefaultConfig())
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	// y' + y = 0 demands yp0 = -1 for y0 = 1; zero is inconsistent
	req := dae.NewRequest([]float64{0, 1}, dae.Vector{1}, dae.Vector{0}, inputs, false)
	solver.Solve(req)

	if req.Code != dae.CodeBadInit {
		t.Errorf("expected bad-init code, got %v", req.Code)
	}
	if req.TI != 0 {
		t.Errorf("expected no output, got %d points", req.TI)
	}
}

func TestSolver_UninitializedSolve(t *testing.T) {
	solver, req := decaySetup(dae.DefaultConfig())
	solver.Solve(req)
	if !req.Code.Failed() {
		t.Error("solve before initialize should fail")
	}
	if req.TI != 0 {
		t.Errorf("expected no output, got %d points", req.TI)
	}
}

func TestSolver_CapacityViolation(t *testing.T) {
	solver, req := decaySetup(dae.DefaultConfig())
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	req.Y = req.Y[:1] // room for one point, mesh has three
	solver.Solve(req)

	if req.Code != dae.CodeCapacity {
		t.Errorf("expected capacity code, got %v", req.Code)
	}
	if req.TI != 0 {
		t.Errorf("expected no output, got %d points", req.TI)
	}
}

func TestSolver_NoBufferOverrun(t *testing.T) {
	prob := problems.NewDecay()
	inputs := prob.DefaultInputs()
	y0, yp0 := prob.ConsistentInit(inputs)

	solver := New(prob, dae.DefaultConfig())
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	const canary = 123456.789
	times := []float64{0, 0.5, 1}
	yBuf := make([]float64, len(times)+4)
	tBuf := make([]float64, len(times)+4)
	for i := range yBuf {
		yBuf[i] = canary
		tBuf[i] = canary
	}

	req := &dae.Request{
		Times: times, Y0: y0, YP0: yp0, Inputs: inputs,
		Stride: 1,
		Y:      yBuf[:len(times)],
		T:      tBuf[:len(times)],
	}
	solver.Solve(req)

	if req.Code != dae.CodeSuccess {
		t.Fatalf("expected success, got %v", req.Code)
	}
	for i := len(times); i < len(yBuf); i++ {
		if yBuf[i] != canary || tBuf[i] != canary {
			t.Fatalf("write past declared capacity at index %d", i)
		}
	}
}

func TestSolver_Reinitialize(t *testing.T) {
	solver, req := decaySetup(dae.DefaultConfig())
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	solver.Solve(req)
	if req.Code != dae.CodeSuccess {
		t.Fatalf("first solve failed: %v", req.Code)
	}
	first := append([]float64(nil), req.Y...)

	if err := solver.Initialize(); err != nil {
		t.Fatalf("re-initialize failed: %v", err)
	}
	_, req2 := decaySetup(dae.DefaultConfig())
	solver.Solve(req2)
	if req2.Code != dae.CodeSuccess {
		t.Fatalf("solve after re-initialize failed: %v", req2.Code)
	}

	for i := range first {
		if first[i] != req2.Y[i] {
			t.Errorf("re-initialized run diverged at %d: %g vs %g", i, first[i], req2.Y[i])
		}
	}
}

func TestSolver_InitializeRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *dae.Config)
	}{
		{"zero rtol", func(cfg *dae.Config) { cfg.RelTol = 0 }},
		{"zero atol", func(cfg *dae.Config) { cfg.AbsTol = 0 }},
		{"zero initial step", func(cfg *dae.Config) { cfg.InitialStep = 0 }},
		{"zero min step", func(cfg *dae.Config) { cfg.MinStep = 0 }},
		{"max below min step", func(cfg *dae.Config) { cfg.MaxStep = 1e-15 }},
		{"zero newton iters", func(cfg *dae.Config) { cfg.MaxNewtonIters = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := dae.DefaultConfig()
			tt.mutate(&cfg)
			solver := New(problems.NewDecay(), cfg)
			if err := solver.Initialize(); err == nil {
				t.Error("expected initialize to fail")
			}
		})
	}
}

func TestSolver_Oscillator(t *testing.T) {
	prob := problems.NewOscillator()
	inputs := prob.DefaultInputs() // k=4, c=0.4, m=1
	y0, yp0 := prob.ConsistentInit(inputs)

	solver := New(prob, dae.DefaultConfig())
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	times := []float64{0, 1, 2, 3}
	req := dae.NewRequest(times, y0, yp0, inputs, false)
	solver.Solve(req)

	if req.Code != dae.CodeSuccess {
		t.Fatalf("expected success, got %v", req.Code)
	}

	// underdamped closed form: x = exp(-z t)(cos(wd t) + z/wd sin(wd t))
	z := inputs[1] / 2
	wd := math.Sqrt(inputs[0] - z*z)
	for i, tm := range times {
		want := math.Exp(-z*tm) * (math.Cos(wd*tm) + z/wd*math.Sin(wd*tm))
		got := req.StateAt(i, prob.Dim())[0]
		if math.Abs(got-want) > 5e-3 {
			t.Errorf("x(%g): expected %.6f, got %.6f", tm, want, got)
		}
	}

	// algebraic constraint holds at every reported point
	for i := range times {
		s := req.StateAt(i, prob.Dim())
		c := s[2] + inputs[0]*s[0] + inputs[1]*s[1]
		if math.Abs(c) > 1e-6 {
			t.Errorf("constraint residual at point %d: %g", i, c)
		}
	}
}

func TestSolver_RobertsonConservation(t *testing.T) {
	prob := problems.NewRobertson()
	inputs := prob.DefaultInputs()
	y0, yp0 := prob.ConsistentInit(inputs)

	cfg := dae.DefaultConfig()
	cfg.AbsTol = 1e-10
	cfg.InitialStep = 1e-6
	cfg.MinStep = 1e-14
	cfg.MaxSteps = 50000
	solver := New(prob, cfg)
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	times := []float64{0, 0.04, 0.1, 0.4}
	req := dae.NewRequest(times, y0, yp0, inputs, false)
	solver.Solve(req)

	if req.Code != dae.CodeSuccess {
		t.Fatalf("expected success, got %v (cursor %d)", req.Code, req.TI)
	}

	for i := range times {
		s := req.StateAt(i, 3)
		sum := s[0] + s[1] + s[2]
		if math.Abs(sum-1) > 1e-8 {
			t.Errorf("mass conservation broken at point %d: sum=%.12f", i, sum)
		}
		for j, v := range s {
			if v < -1e-8 || v > 1+1e-8 {
				t.Errorf("species %d out of range at point %d: %g", j, i, v)
			}
		}
	}

	// the third species accumulates monotonically
	for i := 1; i < len(times); i++ {
		prev := req.StateAt(i-1, 3)[2]
		cur := req.StateAt(i, 3)[2]
		if cur < prev {
			t.Errorf("y3 decreased between points %d and %d: %g -> %g", i-1, i, prev, cur)
		}
	}
}

func TestSolver_StatsAccumulate(t *testing.T) {
	solver, req := decaySetup(dae.DefaultConfig())
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	solver.Solve(req)

	st := solver.Stats()
	if st.Steps == 0 {
		t.Error("expected nonzero step count")
	}
	if st.ResidualEvals == 0 {
		t.Error("expected nonzero residual evaluations")
	}
	if st.JacFactorizations == 0 {
		t.Error("expected nonzero jacobian factorizations")
	}
	if st.CurrentTime < 2-1e-9 {
		t.Errorf("expected current time 2, got %g", st.CurrentTime)
	}
}
