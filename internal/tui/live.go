// Package tui provides a live terminal view of a running integration.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/daesim/internal/dae"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a solver one output point per frame, exploiting the
// request cursor: each tick extends the visible time mesh by one
// entry and resumes the same request.
type Model struct {
	solver  dae.Solver
	req     *dae.Request
	times   []float64
	problem string
	dim     int

	frameRate int
	done      bool
}

func NewModel(solver dae.Solver, req *dae.Request, problem string, dim, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	return Model{
		solver:    solver,
		req:       req,
		times:     req.Times,
		problem:   problem,
		dim:       dim,
		frameRate: frameRate,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case TickMsg:
		if m.done {
			return m, nil
		}
		next := m.req.TI + 1
		if next > len(m.times) {
			m.done = true
			return m, nil
		}
		m.req.Times = m.times[:next]
		m.solver.Solve(m.req)
		if m.req.Code.Failed() || m.req.TI == len(m.times) {
			m.done = true
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("daesim live: %s", m.problem)))
	b.WriteString("\n")

	if m.req.TI >= 2 {
		data := make([]float64, m.req.TI)
		for i := 0; i < m.req.TI; i++ {
			data[i] = m.req.Y[i*m.dim]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(12),
			asciigraph.Width(72),
			asciigraph.Caption("y0"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("points", fmt.Sprintf("%d / %d", m.req.TI, len(m.times)))
	if m.req.TI > 0 {
		row("t", fmt.Sprintf("%.4f", m.req.T[m.req.TI-1]))
	}
	if m.req.Code.Failed() {
		b.WriteString(failStyle.Render("failed: " + m.req.Code.String()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}
