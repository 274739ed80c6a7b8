package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/models"
)

const (
	historyCapacity = 600
	tickRate        = time.Second / 30
)

type TickMsg time.Time

// Config describes the problem the live view integrates.
type Config struct {
	Name     string
	Method   string
	Y0       float64
	T0       float64
	Tf       float64
	H        float64
	Adaptive bool
}

// Model contains integration state, sample history and UI context.
type Model struct {
	model      models.Model
	integrator dynamo.Integrator
	cfg        Config
	exact      dynamo.Func

	t, y, h  float64
	times    []float64
	states   []float64
	accepted int
	rejected int

	running  bool
	done     bool
	aborted  bool
	err      error
	playHead int
	showHelp bool

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	theme  Theme
	styles styles
	width  int
	height int
}

// NewModel prepares a live run. With cfg.Adaptive the integrator must be a
// dynamo.AdaptiveIntegrator.
func NewModel(model models.Model, integ dynamo.Integrator, cfg Config) (Model, error) {
	if cfg.Adaptive {
		if _, ok := integ.(dynamo.AdaptiveIntegrator); !ok {
			return Model{}, dynamo.ErrNotAdaptive
		}
	}
	if cfg.H <= 0 {
		return Model{}, fmt.Errorf("%w, got %g", dynamo.ErrInvalidStep, cfg.H)
	}
	if err := (dynamo.Span{T0: cfg.T0, Tf: cfg.Tf}).Validate(); err != nil {
		return Model{}, err
	}

	params := model.GetParams()
	initialParams := make(map[string]float64, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		initialParams[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := Model{
		model:         model,
		integrator:    integ,
		cfg:           cfg,
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		theme:         ThemeTerminal,
		styles:        newStyles(ThemeTerminal),
		width:         60,
		height:        12,
	}
	m.reset()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the integration one step per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restoreParams()
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "t":
			m.theme = nextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = max(20, msg.Width-40)
		m.height = max(5, msg.Height/2)
	case TickMsg:
		if m.running && m.playHead == -1 {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances by one attempt, following the same rules as the batch
// driver: accepted adaptive steps advance t by the h that produced them
// and the run stops when the recommended step drops below dynamo.MinStep.
func (m *Model) step() {
	if m.done {
		return
	}
	if m.t > m.cfg.Tf {
		m.finish()
		return
	}

	f := m.model.Derive
	if m.cfg.Adaptive {
		res := m.integrator.(dynamo.AdaptiveIntegrator).StepAdaptive(f, m.y, m.t, m.h)
		if res.H < dynamo.MinStep {
			m.aborted = true
			m.finish()
			return
		}
		if res.Accepted {
			m.y = res.Y
			m.t += m.h
			m.accepted++
			m.record()
		} else {
			m.rejected++
		}
		m.h = res.H
		return
	}

	// Fixed steps stop on the last grid point rather than past it.
	if m.t+m.h > m.cfg.Tf+m.h*1e-9 {
		m.finish()
		return
	}
	next, err := m.integrator.Step(f, m.y, m.t, m.h)
	if err != nil {
		m.err = err
		m.finish()
		return
	}
	m.y = next
	m.t += m.h
	m.accepted++
	m.record()
}

func (m *Model) finish() {
	m.done = true
	m.running = false
}

func (m *Model) record() {
	m.times = append(m.times, m.t)
	m.states = append(m.states, m.y)
	if len(m.times) > historyCapacity {
		m.times = m.times[1:]
		m.states = m.states[1:]
	}
}

// scrub moves the playback position through the recorded samples.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.times) == 0 {
			return
		}
		m.playHead = len(m.times) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.times) {
		m.playHead = -1
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam rescales the selected parameter and restarts the run.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if err := m.model.SetParam(key, val); err != nil {
		m.err = err
		return
	}
	m.params[key] = val
	m.reset()
}

func (m *Model) restoreParams() {
	for k, v := range m.initialParams {
		m.params[k] = v
		m.model.SetParam(k, v)
	}
}

// reset restarts the integration from the initial value.
func (m *Model) reset() {
	m.t, m.y, m.h = m.cfg.T0, m.cfg.Y0, m.cfg.H
	m.times = append(m.times[:0], m.t)
	m.states = append(m.states[:0], m.y)
	m.accepted, m.rejected = 0, 0
	m.running, m.done, m.aborted = true, false, false
	m.err = nil
	m.playHead = -1

	m.exact = nil
	if s, ok := m.model.(dynamo.Solvable); ok {
		m.exact = s.Solution(m.cfg.Y0, m.cfg.T0)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	st := m.styles

	t, y := m.t, m.y
	status := st.running.Render("RUNNING")
	switch {
	case m.err != nil:
		status = st.failed.Render("FAILED")
	case m.aborted:
		status = st.failed.Render("STEP SIZE UNDERFLOW")
	case m.done:
		status = st.paused.Render("DONE")
	case m.playHead >= 0:
		t, y = m.times[m.playHead], m.states[m.playHead]
		status = st.paused.Render(fmt.Sprintf("REPLAY %d/%d", m.playHead+1, len(m.times)))
	case !m.running:
		status = st.paused.Render("PAUSED")
	}

	var left strings.Builder
	left.WriteString(st.header.Render(fmt.Sprintf("%s · %s", strings.ToUpper(m.cfg.Name), m.cfg.Method)) + "\n")
	left.WriteString(m.model.Formula() + "\n")

	series := [][]float64{m.states}
	legends := []string{"y"}
	if m.exact != nil {
		exact := make([]float64, len(m.times))
		for i, ti := range m.times {
			exact[i] = m.exact(ti)
		}
		series = append(series, exact)
		legends = append(legends, "exact")
	}
	chart := PlotMany(series, legends, PlotOptions{Height: m.height, Width: m.width})
	left.WriteString(st.graph.Render(chart))

	var right strings.Builder
	right.WriteString(status + "\n\n")
	row := func(label, value string) {
		right.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("t", fmt.Sprintf("%.6g", t))
	row("y", fmt.Sprintf("%.6g", y))
	if m.exact != nil {
		row("exact", fmt.Sprintf("%.6g", m.exact(t)))
	}
	row("h", fmt.Sprintf("%.3g", m.h))
	row("accepted", fmt.Sprintf("%d", m.accepted))
	if m.cfg.Adaptive {
		row("rejected", fmt.Sprintf("%d", m.rejected))
	}
	if m.err != nil {
		row("error", m.err.Error())
	}

	progress := 1.0
	if span := m.cfg.Tf - m.cfg.T0; span > 0 {
		progress = (m.t - m.cfg.T0) / span
	}
	right.WriteString("\n" + ProgressBar(progress, 24) + "\n\n")

	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%s = %.4g", k, m.params[k])
		if i == m.selected {
			right.WriteString(st.activeParam.Render("> "+line) + "\n")
		} else {
			right.WriteString("  " + st.value.Render(line) + "\n")
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), st.stats.Render(right.String()))

	help := "space pause · r restart · tab/↑/↓ params · [/] replay · t theme · q quit"
	if m.showHelp {
		help = strings.Join([]string{
			"space  pause or resume",
			"r      restart from y0 with the initial parameters",
			"tab    select next parameter",
			"↑/↓    scale parameter by ±5% and restart",
			"[ ]    step through recorded samples",
			"t      cycle theme (" + strings.Join(ThemeNames(), ", ") + ")",
			"q      quit",
		}, "\n")
	}
	return body + "\n" + st.help.Render(help) + "\n"
}

// Samples returns the recorded (t, y) history.
func (m Model) Samples() *dynamo.Trajectory {
	return &dynamo.Trajectory{T: m.times, Y: m.states}
}

func (m Model) Done() bool { return m.done }
