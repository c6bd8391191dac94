// Package tui is the interactive circuit viewer.
package tui

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"qteleport/internal/circuit"
	"qteleport/internal/sim"
	"qteleport/internal/teleport"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	logger   *zap.Logger
	executor sim.Executor
	shots    int

	opts    teleport.Options
	program *circuit.Program
	grid    grid
	roles   map[int]teleport.Role
	// custom is set while the program comes from edited QASM rather than
	// from opts.
	custom bool

	cursorQubit   int
	cursorStep    int
	viewStartStep int // First step currently visible in the view
	width         int
	height        int
	qasmEditor    textarea.Model
	focus         focus
	lastQASM      string
	statusMsg     string // transient status message
	statusErr     bool

	// Menu state
	menuCat  int
	menuItem int

	// Simulation state
	counts  sim.Counts
	running bool
	runID   int
}

// countsMsg delivers the result of an asynchronous run.
type countsMsg struct {
	runID  int
	counts sim.Counts
	err    error
}

// New creates the viewer for opts. Runs started with r use executor for
// the given number of shots.
func New(ctx context.Context, opts teleport.Options, executor sim.Executor, shots int, logger *zap.Logger) (Model, error) {
	ta := textarea.New()
	ta.Placeholder = "OpenQASM 2.0"
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		ctx:        ctx,
		logger:     logger.Named("tui"),
		executor:   executor,
		shots:      shots,
		opts:       opts,
		qasmEditor: ta,
		focus:      focusCircuit,
	}
	if err := m.rebuild(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Run starts the viewer and blocks until the user quits or ctx ends.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// rebuild composes the program from opts and refreshes every view of it.
func (m *Model) rebuild() error {
	res, err := teleport.Compose(m.opts)
	if err != nil {
		return err
	}
	if res.RegisterRaised {
		m.logger.Warn("register raised to minimum", zap.Int("qubits", res.Program.NumQubits()))
	}
	m.custom = false
	m.roles = make(map[int]teleport.Role, teleport.NumRoles)
	for r := teleport.StateA; r <= teleport.RelayDestination; r++ {
		m.roles[res.Layout.Qubit(r)] = r
	}
	m.setProgram(res.Program)

	qasm := res.Program.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
	return nil
}

// setProgram replaces the displayed program. Counts of a run still in
// flight belong to the old program and are dropped on arrival.
func (m *Model) setProgram(p *circuit.Program) {
	m.program = p
	m.grid = newGrid(p)
	m.counts = nil
	m.runID++
	m.running = false
	m.cursorQubit = min(m.cursorQubit, m.grid.numQubits-1)
	m.cursorStep = min(m.cursorStep, max(m.grid.numSteps-1, 0))
	m.viewStartStep = min(m.viewStartStep, m.cursorStep)
}

// updateOptions applies change to the build options and recomposes.
func (m *Model) updateOptions(change func(o *teleport.Options)) {
	next := m.opts
	change(&next)
	prev := m.opts
	m.opts = next
	if err := m.rebuild(); err != nil {
		m.opts = prev
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(m.optionsSummary(), false)
}

func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	m.lastQASM = qasm
	p, err := circuit.ParseQASM(qasm)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.custom = true
	m.roles = nil
	m.setProgram(p)
	m.setStatus("", false)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

// runCmd executes the current program off the update loop.
func (m *Model) runCmd() tea.Cmd {
	m.runID++
	m.running = true
	id, p, shots, exec, ctx := m.runID, m.program, m.shots, m.executor, m.ctx
	return func() tea.Msg {
		counts, err := exec.Execute(ctx, p, shots)
		return countsMsg{runID: id, counts: counts, err: err}
	}
}

func (m Model) circuitWidth() int {
	return m.width - m.width/3 - 4
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		ctrlH := 6
		circH := msg.Height - ctrlH - 4
		editorH := max(circH/2-4, 4)
		m.qasmEditor.SetHeight(editorH)

	case countsMsg:
		if msg.runID != m.runID {
			break
		}
		m.running = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("run failed: %v", msg.err), true)
			break
		}
		m.counts = msg.counts
		m.setStatus(fmt.Sprintf("%d shots, %d outcomes", msg.counts.Total(), len(msg.counts)), false)

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			m.setStatus("", false)
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "b":
				m.updateOptions(func(o *teleport.Options) { o.Bell = (o.Bell + 1) % 4 })
			case "d":
				m.updateOptions(func(o *teleport.Options) {
					if o.Direction == teleport.Native {
						o.Direction = teleport.Synthesize
					} else {
						o.Direction = teleport.Native
					}
				})
			case "m":
				m.updateOptions(func(o *teleport.Options) { o.Barriers = !o.Barriers })
			case "x":
				m.updateOptions(func(o *teleport.Options) { o.HadamardBasis = !o.HadamardBasis })
			case "r":
				if m.running || m.executor == nil {
					break
				}
				cmds = append(cmds, m.runCmd())
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.grid.numQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorStep > 0 {
					m.cursorStep--
					if m.cursorStep < m.viewStartStep {
						m.viewStartStep = m.cursorStep
					}
				}
			case "right", "l":
				if m.cursorStep < m.grid.numSteps-1 {
					m.cursorStep++
					if visible := visibleSteps(m.circuitWidth()); m.cursorStep >= m.viewStartStep+visible {
						m.viewStartStep = m.cursorStep - visible + 1
					}
				}
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(optionsMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(optionsMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				m.updateOptions(optionsMenu[m.menuCat].items[m.menuItem].apply)
				m.focus = focusCircuit
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sideWidth := m.width / 3
	circuitWidth := m.circuitWidth()
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)
	countsHeight := max(circuitHeight/3, 4)

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	qasmPanel := m.renderQASMPanel(sideWidth, circuitHeight-countsHeight-2)
	countsPanel := m.renderCountsPanel(sideWidth, countsHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	side := lipgloss.JoinVertical(lipgloss.Left, qasmPanel, countsPanel)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, side)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}

	return frame
}

type outcome struct {
	bits  string
	count int
}

func sortedOutcomes(counts sim.Counts) []outcome {
	out := make([]outcome, 0, len(counts))
	for k, v := range counts {
		out = append(out, outcome{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].bits < out[j].bits })
	return out
}
