package problems

import (
	"fmt"
	"sort"

	"github.com/san-kum/daesim/internal/dae"
)

// Problem is a dae.System bundled with enough metadata to drive it
// from the CLI: default inputs and a consistent initial condition.
type Problem interface {
	dae.System
	DefaultInputs() dae.Vector
	ConsistentInit(p dae.Vector) (y0, yp0 dae.Vector)
}

var registry = map[string]func() Problem{
	"decay":      func() Problem { return NewDecay() },
	"robertson":  func() Problem { return NewRobertson() },
	"oscillator": func() Problem { return NewOscillator() },
}

// New returns the named problem with default parameters.
func New(name string) (Problem, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s", name)
	}
	return ctor(), nil
}

// Names lists the registered problems in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
