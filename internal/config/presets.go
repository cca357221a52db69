package config

var Presets = map[string]map[string]*Config{
	"decay": {
		"default": {
			Problem: "decay",
			Solver:  DefaultConfig().Solver,
			Mesh:    MeshConfig{T0: 0, T1: 5, Points: 51},
		},
		"sensitivity": {
			Problem:     "decay",
			Solver:      DefaultConfig().Solver,
			Mesh:        MeshConfig{T0: 0, T1: 5, Points: 51},
			Sensitivity: true,
		},
	},
	"robertson": {
		"short": {
			Problem: "robertson",
			Solver: SolverConfig{
				RelTol: 1e-6, AbsTol: 1e-10, InitialStep: 1e-6,
				MinStep: 1e-14, MaxSteps: 20000, MaxNewtonIters: 8,
			},
			Mesh: MeshConfig{T0: 0, T1: 0.4, Points: 41},
		},
		"long": {
			Problem: "robertson",
			Solver: SolverConfig{
				RelTol: 1e-6, AbsTol: 1e-10, InitialStep: 1e-6,
				MinStep: 1e-14, MaxSteps: 50000, MaxNewtonIters: 8,
			},
			Mesh: MeshConfig{T0: 0, T1: 40, Points: 81},
		},
	},
	"oscillator": {
		"underdamped": {
			Problem: "oscillator",
			Solver:  DefaultConfig().Solver,
			Mesh:    MeshConfig{T0: 0, T1: 15, Points: 151},
			Inputs:  []float64{4.0, 0.4},
		},
		"overdamped": {
			Problem: "oscillator",
			Solver:  DefaultConfig().Solver,
			Mesh:    MeshConfig{T0: 0, T1: 15, Points: 151},
			Inputs:  []float64{4.0, 8.0},
		},
	},
}

func GetPreset(problem, name string) *Config {
	group, ok := Presets[problem]
	if !ok {
		return nil
	}
	return group[name]
}

func ListPresets(problem string) []string {
	group, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
