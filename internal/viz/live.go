package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	frameInterval   = time.Second / 60

	dtStep      = 0.1
	minDt       = 0.01
	radiusStep  = 1.0
	minRadius   = 1.0
	densityStep = 0.05
	maxPreview  = 2000
	previewStep = 50
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Settings are the user-adjustable knobs of the live view.
type Settings struct {
	Title       string
	Dt          float64
	Substeps    int
	Scheme      integrators.Scheme
	Radius      float64
	Density     float64
	TrailLength int
	Preview     int
}

// SettingsFromConfig seeds the live view from a scenario.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Title:       cfg.Name,
		Dt:          cfg.Dt,
		Substeps:    cfg.Substeps,
		Scheme:      cfg.Scheme(),
		Radius:      cfg.PresetParams.Radius,
		Density:     cfg.PresetParams.Density,
		TrailLength: cfg.TrailLength,
	}
}

// Model drives a Simulator from the Bubble Tea event loop and renders it on
// a braille canvas.
type Model struct {
	sim      *sim.Simulator
	settings Settings
	camera   Camera
	canvas   *Canvas
	theme    Theme

	energyHistory []float64
	merges        int
	lastErr       error
	showHelp      bool
	preview       []mgl64.Vec2

	// OnMerge, when set, is called for every merge reported by a tick.
	OnMerge func(physics.Merge)
}

// NewModel wraps s. The camera starts fitted to the current bodies.
func NewModel(s *sim.Simulator, settings Settings) Model {
	if settings.Substeps < 1 {
		settings.Substeps = 1
	}
	if settings.Dt <= 0 {
		settings.Dt = dtStep
	}
	settings.Radius = math.Max(settings.Radius, minRadius)

	m := Model{
		sim:           s,
		settings:      settings,
		canvas:        NewCanvas(width, height),
		theme:         Themes[0],
		energyHistory: make([]float64, 0, historyCapacity),
	}
	m.fit()
	return m
}

func (m *Model) fit() {
	pw, ph := m.canvas.PixelSize()
	m.camera = NewCamera(mgl64.Vec2{}, 1)
	if lo, hi, ok := boundsOf(m.sim.Query()); ok {
		m.camera.Fit(lo, hi, pw, ph)
	}
}

func boundsOf(views []dynamo.View) (lo, hi mgl64.Vec2, ok bool) {
	if len(views) == 0 {
		return lo, hi, false
	}
	lo = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, v := range views {
		lo[0] = math.Min(lo[0], v.Pos[0]-v.Radius)
		lo[1] = math.Min(lo[1], v.Pos[1]-v.Radius)
		hi[0] = math.Max(hi[0], v.Pos[0]+v.Radius)
		hi[1] = math.Max(hi[1], v.Pos[1]+v.Radius)
	}
	return lo, hi, true
}

func (m Model) Settings() Settings        { return m.settings }
func (m Model) Camera() Camera            { return m.camera }
func (m Model) Simulator() *sim.Simulator { return m.sim }
func (m Model) Merges() int               { return m.merges }
func (m Model) Err() error                { return m.lastErr }

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.step()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case " ", "space":
		m.sim.TogglePause()
	case "i":
		s.Scheme = s.Scheme.Toggle()
	case "1":
		s.Substeps = max(s.Substeps-1, 1)
	case "2":
		s.Substeps++
	case "3":
		s.Dt = math.Max(round3(s.Dt-dtStep), minDt)
	case "4":
		s.Dt = round3(s.Dt + dtStep)
	case "q":
		s.Radius = round3(s.Radius + radiusStep)
	case "a":
		s.Radius = math.Max(round3(s.Radius-radiusStep), minRadius)
	case "w":
		s.Density = round3(s.Density + densityStep)
	case "s":
		s.Density = math.Max(round3(s.Density-densityStep), 0)
	case "e":
		s.TrailLength++
		m.sim.SetTrailCapacity(s.TrailLength)
	case "d":
		s.TrailLength = max(s.TrailLength-1, 0)
		m.sim.SetTrailCapacity(s.TrailLength)
	case "x":
		s.Preview = min(s.Preview+previewStep, maxPreview)
	case "z":
		s.Preview = max(s.Preview-previewStep, 0)
	case "g":
		m.addGrid()
	case "n":
		m.spawn(m.camera.Center)
	case "r":
		m.reset()
	case "f":
		m.fit()
	case "t":
		m.theme = NextTheme(m.theme)
	case "h", "?":
		m.showHelp = !m.showHelp
	case "up":
		m.camera.Pan(0, -panPixels)
	case "down":
		m.camera.Pan(0, panPixels)
	case "left":
		m.camera.Pan(-panPixels, 0)
	case "right":
		m.camera.Pan(panPixels, 0)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	}

	return m, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func (m *Model) spec(pos mgl64.Vec2) dynamo.BodySpec {
	return dynamo.BodySpec{
		Pos:           pos,
		Mass:          config.MassFromDensity(m.settings.Radius, m.settings.Density),
		Radius:        m.settings.Radius,
		TrailCapacity: m.settings.TrailLength,
	}
}

// spawn places a resting body built from the current radius and density.
func (m *Model) spawn(pos mgl64.Vec2) {
	if _, err := m.sim.Insert(m.spec(pos)); err != nil {
		m.lastErr = err
		return
	}
	m.sim.SetTrailCapacity(m.settings.TrailLength)
}

// addGrid drops the grid scene with its first cell at the top-left corner
// of the view.
func (m *Model) addGrid() {
	pw, ph := m.canvas.PixelSize()
	origin := m.camera.ToWorld(0, 0, pw, ph)
	p := config.PresetConfig{
		Radius:  m.settings.Radius,
		Density: m.settings.Density,
		Origin:  [2]float64{origin[0], origin[1]},
	}
	specs, err := config.PresetBodies("grid", p, m.sim.Params().G, m.settings.TrailLength)
	if err != nil {
		m.lastErr = err
		return
	}
	for _, spec := range specs {
		if _, err := m.sim.Insert(spec); err != nil {
			m.lastErr = err
			return
		}
	}
	m.sim.SetTrailCapacity(m.settings.TrailLength)
}

// reset restores the single-body scene, the default view and one sub-step.
func (m *Model) reset() {
	m.sim.Reset()
	m.merges = 0
	m.lastErr = nil
	m.energyHistory = m.energyHistory[:0]
	m.settings.Substeps = 1

	specs, err := config.PresetBodies("single", config.PresetConfig{}, m.sim.Params().G, m.settings.TrailLength)
	if err != nil {
		m.lastErr = err
		return
	}
	for _, spec := range specs {
		if _, err := m.sim.Insert(spec); err != nil {
			m.lastErr = err
			return
		}
	}
	m.fit()
}

// step advances the simulation one frame.
func (m *Model) step() {
	rep, err := m.sim.Advance(m.settings.Dt, m.settings.Scheme, m.settings.Substeps)
	if err != nil {
		m.lastErr = err
		return
	}
	m.merges += len(rep.Merges)
	if m.OnMerge != nil {
		for _, mg := range rep.Merges {
			m.OnMerge(mg)
		}
	}

	if rep.Ticks > 0 {
		m.energyHistory = append(m.energyHistory, physics.TotalEnergy(m.sim.States(), m.sim.Params()))
		if len(m.energyHistory) > historyCapacity {
			m.energyHistory = m.energyHistory[1:]
		}
	}

	m.preview = nil
	if m.settings.Preview > 0 {
		path, err := m.sim.Predict(m.spec(m.camera.Center), m.settings.Dt, m.settings.Scheme, m.settings.Preview)
		if err == nil {
			m.preview = path
		}
	}
}

// draw renders trails, bodies and the preview path onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	pw, ph := m.canvas.PixelSize()

	for _, v := range m.sim.Query() {
		for i := 1; i < len(v.Trail); i++ {
			x0, y0 := m.camera.ToPixel(v.Trail[i-1], pw, ph)
			x1, y1 := m.camera.ToPixel(v.Trail[i], pw, ph)
			if visible(x0, y0, pw, ph) || visible(x1, y1, pw, ph) {
				m.canvas.DrawLine(x0, y0, x1, y1)
			}
		}

		x, y := m.camera.ToPixel(v.Pos, pw, ph)
		r := m.camera.Radius(v.Radius)
		if x+r < 0 || y+r < 0 || x-r >= pw || y-r >= ph {
			continue
		}
		if r <= 2 {
			m.canvas.FillCircle(x, y, r)
		} else {
			m.canvas.DrawCircle(x, y, r)
		}
	}

	for i, p := range m.preview {
		if i%2 == 0 {
			x, y := m.camera.ToPixel(p, pw, ph)
			m.canvas.Set(x, y)
		}
	}
}

func visible(x, y, pw, ph int) bool {
	return x >= 0 && y >= 0 && x < pw && y < ph
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := m.theme.styles()
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	title := m.settings.Title
	if title == "" {
		title = "orbitsim"
	}
	s.WriteString(st.header.Render(strings.ToUpper(title)) + "\n")

	if m.sim.Paused() {
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	} else {
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f", m.sim.Time()))
	row("Bodies", fmt.Sprintf("%d", m.sim.Len()))
	row("Merges", fmt.Sprintf("%d", m.merges))
	row("Integrator", m.settings.Scheme.String())
	row("Step", fmt.Sprintf("%.3f × %d", m.settings.Dt, m.settings.Substeps))
	row("Radius", fmt.Sprintf("%.0f", m.settings.Radius))
	row("Density", fmt.Sprintf("%.3f", m.settings.Density))
	row("Trail", fmt.Sprintf("%d", m.settings.TrailLength))
	row("Preview", fmt.Sprintf("%d", m.settings.Preview))
	row("Zoom", fmt.Sprintf("%.3g/dot", m.camera.Scale))
	if m.lastErr != nil {
		row("Error", m.lastErr.Error())
	}

	s.WriteString(st.help.Render("─────────────────────\nSP:Pause I:Integrator R:Reset\nN:Spawn G:Grid H:Help ^C:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))

	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  I        - Toggle Euler/Verlet      ║
║  1 / 2    - Fewer/more sub-steps     ║
║  3 / 4    - Smaller/larger step      ║
║  Q / A    - Grow/shrink spawn radius ║
║  W / S    - Raise/lower density      ║
║  E / D    - Longer/shorter trails    ║
║  X / Z    - Longer/shorter preview   ║
║  N        - Spawn body at centre     ║
║  G        - Add 10×10 grid           ║
║  R        - Reset scene              ║
║  F        - Fit view to bodies       ║
║  Arrows   - Pan    +/- Zoom          ║
║  T        - Cycle themes             ║
║  H        - Toggle this help         ║
║  Ctrl+C   - Quit                     ║
╚══════════════════════════════════════╝`
