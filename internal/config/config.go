package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/daesim/internal/dae"
)

const (
	DefaultRelTol      = 1e-6
	DefaultAbsTol      = 1e-8
	DefaultInitialStep = 1e-4
	DefaultMinStep     = 1e-12
	DefaultMaxSteps    = 5000
	DefaultNewtonIters = 8
	DefaultPoints      = 101
	DefaultHorizon     = 10.0
)

type Config struct {
	Problem     string       `yaml:"problem"`
	Solver      SolverConfig `yaml:"solver"`
	Mesh        MeshConfig   `yaml:"mesh"`
	Sensitivity bool         `yaml:"sensitivity"`
	Inputs      []float64    `yaml:"inputs"`
}

type SolverConfig struct {
	RelTol         float64 `yaml:"rel_tol"`
	AbsTol         float64 `yaml:"abs_tol"`
	InitialStep    float64 `yaml:"initial_step"`
	MinStep        float64 `yaml:"min_step"`
	MaxStep        float64 `yaml:"max_step"`
	MaxSteps       int     `yaml:"max_steps"`
	MaxNewtonIters int     `yaml:"max_newton_iters"`
}

type MeshConfig struct {
	T0     float64 `yaml:"t0"`
	T1     float64 `yaml:"t1"`
	Points int     `yaml:"points"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem: "decay",
		Solver: SolverConfig{
			RelTol:         DefaultRelTol,
			AbsTol:         DefaultAbsTol,
			InitialStep:    DefaultInitialStep,
			MinStep:        DefaultMinStep,
			MaxSteps:       DefaultMaxSteps,
			MaxNewtonIters: DefaultNewtonIters,
		},
		Mesh: MeshConfig{T0: 0, T1: DefaultHorizon, Points: DefaultPoints},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DaeConfig maps the YAML solver section onto the solver options.
func (c *Config) DaeConfig() dae.Config {
	return dae.Config{
		RelTol:         c.Solver.RelTol,
		AbsTol:         c.Solver.AbsTol,
		InitialStep:    c.Solver.InitialStep,
		MinStep:        c.Solver.MinStep,
		MaxStep:        c.Solver.MaxStep,
		MaxSteps:       c.Solver.MaxSteps,
		MaxNewtonIters: c.Solver.MaxNewtonIters,
		Sensitivity:    c.Sensitivity,
	}
}

// Times expands the mesh section into the output time sequence.
func (c *Config) Times() []float64 {
	n := c.Mesh.Points
	if n < 2 {
		n = 2
	}
	times := make([]float64, n)
	dt := (c.Mesh.T1 - c.Mesh.T0) / float64(n-1)
	for i := range times {
		times[i] = c.Mesh.T0 + float64(i)*dt
	}
	return times
}
