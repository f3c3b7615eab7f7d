// Package viz is the terminal host for a live run: it issues commands to
// an engine and renders the snapshots it gets back. All coordinate
// mapping and drawing lives here, outside the computation core.
package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/physics"
)

const (
	canvasW = 80
	canvasH = 22
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type noteMsg engine.Note

type closedMsg struct{}

// Model is the bubbletea host around one engine instance.
type Model struct {
	eng    *engine.Engine
	params config.Params
	speed  float64

	state    physics.State
	trails   [][]physics.Sample
	paused   bool
	finished bool
	errMsg   string
	dropped  uint64

	canvas *Canvas
}

func NewModel(p config.Params, speed float64) Model {
	p.Clamp()
	if !(speed > 0) {
		speed = p.TimeScale
	}
	eng := engine.New()
	eng.Start(p, speed)
	return Model{
		eng:    eng,
		params: p,
		speed:  speed,
		trails: make([][]physics.Sample, 2),
		canvas: NewCanvas(canvasW, canvasH),
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitNote()
}

func (m Model) waitNote() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-m.eng.Notes()
		if !ok {
			return closedMsg{}
		}
		return noteMsg(n)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.eng.Close()
			return m, nil // quit on closedMsg once notes drain
		case " ":
			if m.finished || m.errMsg != "" {
				return m, nil
			}
			if m.paused {
				m.eng.Resume()
			} else {
				m.eng.Pause()
			}
			m.paused = !m.paused
		case "r":
			if m.finished || m.errMsg != "" {
				m.trails = make([][]physics.Sample, 2)
				m.finished = false
				m.errMsg = ""
				m.paused = false
				m.eng.Start(m.params, m.speed)
			}
		case "+", "=":
			m.speed *= 1.5
			m.eng.SetSpeed(m.speed)
		case "-", "_":
			m.speed /= 1.5
			if m.speed < config.Epsilon {
				m.speed = config.Epsilon
			}
			m.eng.SetSpeed(m.speed)
		}
		return m, nil

	case noteMsg:
		n := engine.Note(msg)
		switch n.Type {
		case engine.NoteTick:
			for _, s := range n.Samples {
				if s.Body >= 0 && s.Body < len(m.trails) {
					m.trails[s.Body] = append(m.trails[s.Body], s)
				}
			}
			m.state = n.State
			m.dropped = n.Dropped
		case engine.NoteDone:
			m.finished = true
		case engine.NoteError:
			m.errMsg = n.Err
		}
		return m, m.waitNote()

	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	m.draw()

	var status string
	switch {
	case m.errMsg != "":
		status = errStyle.Render("error: " + m.errMsg)
	case m.finished:
		status = doneStyle.Render("done")
	case m.paused:
		status = labelStyle.Render("paused")
	default:
		status = valueStyle.Render("running")
	}

	header := headerStyle.Render(fmt.Sprintf("physlab · %s", m.params.Variant)) +
		"  " + status

	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(canvasStyle.Render(m.canvas.String()) + "\n")
	b.WriteString(m.stats() + "\n")
	b.WriteString(helpStyle.Render("space pause/resume · +/- speed · r restart · q quit"))
	return b.String()
}

func (m Model) stats() string {
	parts := []string{
		labelStyle.Render("t=") + valueStyle.Render(fmt.Sprintf("%.2fs", m.state.T)),
		labelStyle.Render("speed=") + valueStyle.Render(fmt.Sprintf("%.2fx", m.speed)),
	}
	for i, b := range m.state.Bodies {
		parts = append(parts, labelStyle.Render(fmt.Sprintf("b%d=", i))+
			valueStyle.Render(fmt.Sprintf("(%.2f, %.2f) |v|=%.2f",
				b.Pos[0], b.Pos[1], b.Vel.Len())))
	}
	if m.state.Contact {
		parts = append(parts, doneStyle.Render("contact"))
	}
	if ev := m.state.Collision; ev != nil {
		parts = append(parts, labelStyle.Render("Σp=")+
			valueStyle.Render(fmt.Sprintf("(%.2f, %.2f)→(%.2f, %.2f)",
				ev.Before.Total[0], ev.Before.Total[1],
				ev.After.Total[0], ev.After.Total[1])))
	}
	if m.dropped > 0 {
		parts = append(parts, labelStyle.Render(fmt.Sprintf("dropped=%d", m.dropped)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) draw() {
	m.canvas.Clear()
	if m.params.Variant == config.VariantTwoBody {
		m.drawTwoBody()
	} else {
		m.drawProjectile()
	}
}

// drawProjectile maps world coordinates so the whole trajectory so far
// fits, with the ground pinned to the bottom row.
func (m Model) drawProjectile() {
	maxX, maxY := 1.0, 1.0
	for _, s := range m.trails[0] {
		if s.X > maxX {
			maxX = s.X
		}
		if s.Y > maxY {
			maxY = s.Y
		}
	}

	w := float64(canvasW*2 - 4)
	h := float64(canvasH*4 - 4)
	toPx := func(x, y float64) (int, int) {
		px := 2 + int(x/maxX*w)
		py := int(h) - int(y/maxY*h)
		return px, py
	}

	// Ground line.
	gy := int(h) + 1
	m.canvas.DrawLine(0, gy, canvasW*2-1, gy)

	for _, s := range m.trails[0] {
		px, py := toPx(s.X, s.Y)
		m.canvas.Set(px, py)
	}
	if len(m.state.Bodies) == 1 {
		px, py := toPx(m.state.Bodies[0].Pos[0], m.state.Bodies[0].Pos[1])
		m.canvas.DrawCircle(px, py, 2)
	}
}

func (m Model) drawTwoBody() {
	bounds := m.params.Bounds
	w := float64(canvasW*2 - 4)
	h := float64(canvasH*4 - 4)
	sx := w / (bounds.XMax - bounds.XMin)
	sy := h / (bounds.YMax - bounds.YMin)
	toPx := func(x, y float64) (int, int) {
		px := 2 + int((x-bounds.XMin)*sx)
		py := 2 + int((bounds.YMax-y)*sy)
		return px, py
	}

	// Walls.
	x0, y0 := toPx(bounds.XMin, bounds.YMax)
	x1, y1 := toPx(bounds.XMax, bounds.YMin)
	m.canvas.DrawLine(x0, y0, x1, y0)
	m.canvas.DrawLine(x0, y1, x1, y1)
	m.canvas.DrawLine(x0, y0, x0, y1)
	m.canvas.DrawLine(x1, y0, x1, y1)

	for body := range m.trails {
		for _, s := range m.trails[body] {
			px, py := toPx(s.X, s.Y)
			m.canvas.Set(px, py)
		}
	}

	radii := []float64{m.params.Body1.Radius, m.params.Body2.Radius}
	for i, b := range m.state.Bodies {
		px, py := toPx(b.Pos[0], b.Pos[1])
		r := 1
		if i < len(radii) {
			r = int(radii[i] * sx)
			if r < 1 {
				r = 1
			}
		}
		m.canvas.DrawCircle(px, py, r)
	}
}
