package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/daesim/internal/bdf"
	"github.com/san-kum/daesim/internal/config"
	"github.com/san-kum/daesim/internal/dae"
	"github.com/san-kum/daesim/internal/problems"
	"github.com/san-kum/daesim/internal/store"
	"github.com/san-kum/daesim/internal/tui"
	"github.com/san-kum/daesim/internal/viz"
)

var version = "0.2.0"

var (
	configFile string
	preset     string
	problem    string
	relTol     float64
	absTol     float64
	h0         float64
	t0         float64
	t1         float64
	points     int
	maxSteps   int
	sens       bool
	plot       bool
	live       bool
	frameRate  int
	jsonOut    string
	csvOut     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "daesim",
		Short: "implicit DAE solver lab",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate a problem over a time mesh",
		RunE:  runSolve,
	}
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "yaml config file")
	runCmd.Flags().StringVar(&preset, "preset", "", "named preset for the problem")
	runCmd.Flags().StringVarP(&problem, "problem", "p", "decay", "problem name")
	runCmd.Flags().Float64Var(&relTol, "rtol", config.DefaultRelTol, "relative tolerance")
	runCmd.Flags().Float64Var(&absTol, "atol", config.DefaultAbsTol, "absolute tolerance")
	runCmd.Flags().Float64Var(&h0, "h0", config.DefaultInitialStep, "initial step size")
	runCmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	runCmd.Flags().Float64Var(&t1, "t1", config.DefaultHorizon, "end time")
	runCmd.Flags().IntVar(&points, "points", config.DefaultPoints, "output points")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "max internal steps per output interval")
	runCmd.Flags().BoolVar(&sens, "sensitivity", false, "compute forward sensitivities")
	runCmd.Flags().BoolVar(&plot, "plot", true, "plot state components")
	runCmd.Flags().BoolVar(&live, "live", false, "live view while integrating")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "live view frame rate")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write trajectory JSON to file ('-' for stdout)")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "write trajectory CSV to file")

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list available problems and presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROBLEM\tPRESETS")
			for _, name := range problems.Names() {
				fmt.Fprintf(w, "%s\t%v\n", name, config.ListPresets(name))
			}
			w.Flush()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("daesim %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, problemsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		cfg := config.GetPreset(problem, preset)
		if cfg == nil {
			return nil, fmt.Errorf("no preset %q for problem %q", preset, problem)
		}
		return cfg, nil
	}
	cfg := config.DefaultConfig()
	cfg.Problem = problem
	cfg.Solver.RelTol = relTol
	cfg.Solver.AbsTol = absTol
	cfg.Solver.InitialStep = h0
	cfg.Solver.MaxSteps = maxSteps
	cfg.Mesh = config.MeshConfig{T0: t0, T1: t1, Points: points}
	cfg.Sensitivity = sens
	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	prob, err := problems.New(cfg.Problem)
	if err != nil {
		return err
	}
	inputs := dae.Vector(cfg.Inputs)
	if len(inputs) == 0 {
		inputs = prob.DefaultInputs()
	}
	if len(inputs) != prob.NumInputs() {
		return fmt.Errorf("problem %s expects %d inputs, got %d",
			prob.Name(), prob.NumInputs(), len(inputs))
	}
	y0, yp0 := prob.ConsistentInit(inputs)

	solver := bdf.New(prob, cfg.DaeConfig())
	if err := solver.Initialize(); err != nil {
		return err
	}

	req := dae.NewRequest(cfg.Times(), y0, yp0, inputs, cfg.Sensitivity)

	if live {
		model := tui.NewModel(solver, req, prob.Name(), prob.Dim(), frameRate)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return err
		}
	} else {
		solver.Solve(req)
	}

	printSummary(prob, solver, req)

	data := store.Collect(prob.Name(), req, prob.Dim(), prob.NumInputs(), statsMap(solver.Stats()))
	if plot && !live {
		fmt.Println(viz.PlotComponents(data.States))
	}
	if jsonOut == "-" {
		if err := store.ExportJSONStdout(data); err != nil {
			return err
		}
	} else if jsonOut != "" {
		if err := store.ExportJSON(jsonOut, data); err != nil {
			return err
		}
	}
	if csvOut != "" {
		if err := store.ExportCSV(csvOut, data); err != nil {
			return err
		}
	}

	if req.Code.Failed() {
		return fmt.Errorf("integration stopped after %d of %d points: %s",
			req.TI, len(req.Times), req.Code)
	}
	return nil
}

func printSummary(prob problems.Problem, solver *bdf.Solver, req *dae.Request) {
	st := solver.Stats()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "problem\t%s\n", prob.Name())
	fmt.Fprintf(w, "status\t%s\n", req.Code)
	fmt.Fprintf(w, "points\t%d / %d\n", req.TI, len(req.Times))
	fmt.Fprintf(w, "steps\t%d (%d rejected)\n", st.Steps, st.Rejected)
	fmt.Fprintf(w, "residual evals\t%d\n", st.ResidualEvals)
	fmt.Fprintf(w, "jacobians\t%d\n", st.JacFactorizations)
	fmt.Fprintf(w, "last step\t%g\n", st.LastStep)
	w.Flush()
	fmt.Println()
}

func statsMap(st bdf.Stats) map[string]float64 {
	return map[string]float64{
		"steps":          float64(st.Steps),
		"rejected":       float64(st.Rejected),
		"residual_evals": float64(st.ResidualEvals),
		"jacobians":      float64(st.JacFactorizations),
		"last_step":      st.LastStep,
	}
}
