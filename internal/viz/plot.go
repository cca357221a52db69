// Package viz renders solved trajectories as terminal plots.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	defaultHeight = 10
	defaultWidth  = 80
)

// PlotComponent renders one state component over the written prefix
// of a trajectory.
func PlotComponent(states [][]float64, comp int, caption string) string {
	data := make([]float64, 0, len(states))
	for _, s := range states {
		if comp < len(s) {
			data = append(data, s[comp])
		}
	}
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption(caption),
	)
}

// PlotComponents renders every state component, one graph each.
func PlotComponents(states [][]float64) string {
	if len(states) == 0 {
		return ""
	}
	var b strings.Builder
	for comp := 0; comp < len(states[0]); comp++ {
		g := PlotComponent(states, comp, fmt.Sprintf("y%d", comp))
		if g == "" {
			continue
		}
		b.WriteString(g)
		b.WriteString("\n\n")
	}
	return b.String()
}
