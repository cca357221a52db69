package bdf

import (
	"math"
	"testing"

	"github.com/san-kum/daesim/internal/dae"
	"github.com/san-kum/daesim/internal/problems"
)

func TestSolver_DecaySensitivity(t *testing.T) {
	prob := problems.NewDecay()
	inputs := prob.DefaultInputs() // lambda = 1
	y0, yp0 := prob.ConsistentInit(inputs)

	cfg := dae.DefaultConfig()
	cfg.Sensitivity = true
	solver := New(prob, cfg)
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	times := []float64{0, 1, 2}
	req := dae.NewRequest(times, y0, yp0, inputs, true)
	solver.Solve(req)

	if req.Code != dae.CodeSuccess {
		t.Fatalf("expected success, got %v", req.Code)
	}
	if req.TI != 3 {
		t.Fatalf("expected 3 points, got %d", req.TI)
	}

	// y = exp(-lambda t), so dy/dlambda = -t exp(-lambda t)
	for i, tm := range times {
		want := -tm * math.Exp(-tm)
		got := req.SensAt(i, 0, 1, 1)[0]
		if math.Abs(got-want) > 5e-3 {
			t.Errorf("dy/dlambda at t=%g: expected %.6f, got %.6f", tm, want, got)
		}
	}
	if got := req.SensAt(0, 0, 1, 1)[0]; got != 0 {
		t.Errorf("sensitivity at t0 should be zero, got %g", got)
	}
}

func TestSolver_SensitivityMatchesFiniteDifference(t *testing.T) {
	run := func(k float64) float64 {
		prob := problems.NewOscillator()
		inputs := dae.Vector{k, 0.4}
		y0, yp0 := prob.ConsistentInit(inputs)
		solver := New(prob, dae.DefaultConfig())
		if err := solver.Initialize(); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		req := dae.NewRequest([]float64{0, 1}, y0, yp0, inputs, false)
		solver.Solve(req)
		if req.Code != dae.CodeSuccess {
			t.Fatalf("solve failed: %v", req.Code)
		}
		return req.StateAt(1, prob.Dim())[0]
	}

	prob := problems.NewOscillator()
	inputs := prob.DefaultInputs()
	y0, yp0 := prob.ConsistentInit(inputs)
	cfg := dae.DefaultConfig()
	cfg.Sensitivity = true
	solver := New(prob, cfg)
	if err := solver.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	req := dae.NewRequest([]float64{0, 1}, y0, yp0, inputs, true)
	solver.Solve(req)
	if req.Code != dae.CodeSuccess {
		t.Fatalf("solve failed: %v", req.Code)
	}

	// central difference in the stiffness input
	const dk = 1e-4
	fd := (run(inputs[0]+dk) - run(inputs[0]-dk)) / (2 * dk)
	got := req.SensAt(1, 0, prob.Dim(), prob.NumInputs())[0]
	if math.Abs(got-fd) > 5e-3 {
		t.Errorf("dx/dk at t=1: finite difference %.6f, solver %.6f", fd, got)
	}
}
