package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bar-chord-seq/config"
	"bar-chord-seq/debug"
	"bar-chord-seq/midi"
	"bar-chord-seq/sequencer"
	"bar-chord-seq/theme"
	"bar-chord-seq/widgets"
)

// Options wires the model to the rest of the app
type Options struct {
	Manager   *sequencer.Manager
	DeviceMgr *midi.DeviceManager // nil when running without MIDI
	Theme     *theme.Theme
	Store     *sequencer.Store
	Config    *config.Config
	Project   string
}

type Model struct {
	Manager   *sequencer.Manager
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme
	Store     *sequencer.Store
	Config    *config.Config

	project    string
	status     string
	confirm    *confirmState
	browser    *saveBrowser
	controller midi.Controller
	quitting   bool
}

type confirmState struct {
	msg    string
	action func() string
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(opts Options) Model {
	project := opts.Project
	if project != "" {
		project = sequencer.ProjectName(project)
	}
	return Model{
		Manager:   opts.Manager,
		DeviceMgr: opts.DeviceMgr,
		Theme:     opts.Theme,
		Store:     opts.Store,
		Config:    opts.Config,
		project:   project,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

// Project returns the project saves go to
func (m Model) Project() string {
	return m.project
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		m.handleDevice(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m *Model) handleDevice(event midi.DeviceEvent) {
	switch event.Type {
	case midi.DeviceConnected:
		m.controller = event.Controller
		m.Manager.SetController(event.Controller)
		m.status = "connected " + event.ID

		if m.Config != nil && m.Config.FindController(event.ID) == nil {
			m.Config.AddController(config.ControllerConfig{
				PortName:    event.ID,
				Type:        config.ControllerLaunchpadX,
				AutoConnect: true,
			})
		}

		manager := m.Manager
		go func() {
			for pad := range event.Controller.PadEvents() {
				manager.HandlePad(pad.Row, pad.Col)
			}
		}()

	case midi.DeviceDisconnected:
		if m.controller != nil && m.controller.ID() == event.ID {
			m.controller = nil
			m.Manager.SetController(nil)
			m.status = "disconnected " + event.ID
		}
	}
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirm != nil {
		switch key {
		case "y", "Y":
			m.status = m.confirm.action()
			m.confirm = nil
		case "n", "N", "esc", "q":
			m.confirm = nil
		}
		return m, nil
	}

	if m.browser != nil {
		if m.browser.handleKey(key) {
			if m.browser.loadedProject != "" {
				m.project = m.browser.loadedProject
			}
			if m.browser.loaded != "" {
				m.status = "loaded " + m.browser.loaded
			}
			if m.browser.err != nil {
				m.status = m.browser.err.Error()
			}
			if m.browser.closed {
				m.browser = nil
			}
		}
		return m, nil
	}

	c := m.Manager.Controls()
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "h", "left":
		m.Manager.SelectBar(c.Bar - 1)
	case "l", "right":
		m.Manager.SelectBar(c.Bar + 1)
	case "k", "up":
		m.Manager.AdjustControl(sequencer.ControlRoot, 1)
	case "j", "down":
		m.Manager.AdjustControl(sequencer.ControlRoot, -1)
	case "K", "shift+up":
		m.Manager.AdjustControl(sequencer.ControlChord, 1)
	case "J", "shift+down":
		m.Manager.AdjustControl(sequencer.ControlChord, -1)
	case "]":
		m.Manager.AdjustControl(sequencer.ControlLength, 1)
	case "[":
		m.Manager.AdjustControl(sequencer.ControlLength, -1)
	case "}":
		m.Manager.AdjustControl(sequencer.ControlBeatsPerBar, 1)
	case "{":
		m.Manager.AdjustControl(sequencer.ControlBeatsPerBar, -1)

	case " ":
		m.Manager.PulseClock()
	case "r":
		m.Manager.PulseReset()

	case "R":
		manager := m.Manager
		m.confirm = &confirmState{
			msg: "Reset all bars to C Maj?",
			action: func() string {
				manager.FactoryReset()
				return "factory reset"
			},
		}

	case "s":
		m.status = m.save()

	case "o":
		if m.Store != nil {
			m.browser = newSaveBrowser(m.Store, m.Manager, m.project)
		}
	}

	return m, nil
}

func (m *Model) save() string {
	if m.Store == nil {
		return "no project store"
	}
	filename, err := m.Manager.SaveProject(m.Store, m.project)
	if err != nil {
		debug.Log("tui", "save failed: %v", err)
		return "save failed: " + err.Error()
	}
	m.project = sequencer.ProjectName(m.project)
	return fmt.Sprintf("saved %s/%s", m.project, filename)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.BG()).
		Padding(0, 1)

	f := m.Manager.Frame()
	c := m.Manager.Controls()

	project := m.project
	if project == "" {
		project = "(unsaved)"
	}
	deviceStatus := ""
	if m.controller != nil {
		deviceStatus = "  LP:X"
	}
	header := headerStyle.Render(fmt.Sprintf("bar-chord-seq  %s%s", project, deviceStatus))

	var body string
	switch {
	case m.confirm != nil:
		body = renderConfirm(m.confirm.msg)
	case m.browser != nil:
		body = m.browser.View()
	default:
		body = m.sequencerView(f, c)
	}

	help := dimStyle.Render("h/l:bar  j/k:root  J/K:chord  [/]:length  {/}:beats  space:clock  r:reset  s:save  o:open  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	out.WriteString(help)
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}

	return out.String()
}

func (m Model) sequencerView(f sequencer.Frame, c sequencer.Controls) string {
	sym := m.Theme.Symbols
	labelStyle := lipgloss.NewStyle().Foreground(m.Theme.Light()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Playhead())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.Selected())

	var out strings.Builder

	light := dimStyle.Render(string(sym.LightOff))
	if f.Light > 0 {
		light = lipgloss.NewStyle().Foreground(m.Theme.Color(0.6 + 0.4*f.Light)).Render(string(sym.LightOn))
	}
	out.WriteString(fmt.Sprintf("%s  %s   bar %02d/%02d  beat ", light, labelStyle.Render(sequencer.Label(f.Record)), f.Bar+1, f.Length))
	for b := 0; b < c.BeatsPerBar; b++ {
		if b <= f.Beat {
			out.WriteString(playStyle.Render(string(sym.BeatOn)))
		} else {
			out.WriteString(dimStyle.Render(string(sym.BeatOff)))
		}
	}
	out.WriteString("\n\n")

	bars := m.Manager.Bars()
	for row := 0; row < sequencer.NumBars/8; row++ {
		for col := 0; col < 8; col++ {
			i := row*8 + col
			var cell string
			switch {
			case i == f.Bar:
				cell = playStyle.Render(fmt.Sprintf("%c%-9s", sym.BarPlayhead, sequencer.Label(bars[i])))
			case i == c.Bar:
				cell = selStyle.Render(fmt.Sprintf("%c%-9s", sym.BarSelected, sequencer.Label(bars[i])))
			case i < f.Length:
				cell = fgStyle.Render(fmt.Sprintf("%c%-9s", sym.BarActive, sequencer.Label(bars[i])))
			default:
				cell = dimStyle.Render(fmt.Sprintf("%c%-9s", sym.BarEmpty, sequencer.Label(bars[i])))
			}
			out.WriteString(cell)
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(fmt.Sprintf("Length %2d   Beats/Bar %2d   Bar %2d   Root %-2s   Chord %s\n",
		c.Length, c.BeatsPerBar, c.Bar+1, sequencer.NoteName(c.Root), sequencer.ChordName(c.Chord)))
	out.WriteString(dimStyle.Render(fmt.Sprintf("out  root %.3f  chord %.0f  light %.2f", f.Root, f.Chord, f.Light)))
	out.WriteString("\n\n")

	out.WriteString(m.launchpadView())
	return out.String()
}

func (m Model) launchpadView() string {
	var grid widgets.PadGrid
	for _, led := range m.Manager.RenderLEDs() {
		if led.Row >= 0 && led.Row < 9 && led.Col >= 0 && led.Col < 9 {
			grid[led.Row][led.Col] = led.Color
		}
	}

	var out strings.Builder
	out.WriteString(widgets.RenderPadGrid(grid))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderLegendItem([3]uint8(m.Theme.RGB(RolePads)), "Rows 1-4", "select bar"))
	out.WriteString("\n")
	out.WriteString(widgets.RenderLegendItem([3]uint8(m.Theme.RGB(RoleRoots)), "Rows 5-6", "root note"))
	out.WriteString("\n")
	out.WriteString(widgets.RenderLegendItem([3]uint8(m.Theme.RGB(RoleChords)), "Rows 7-8", "chord / scale"))
	return out.String()
}

// Legend colours (palette positions)
const (
	RolePads   = 0.5
	RoleRoots  = 0.85
	RoleChords = 0.6
)

func renderConfirm(msg string) string {
	var out strings.Builder
	out.WriteString("─────────────────────────────────────────────────\n")
	out.WriteString(fmt.Sprintf("\n%s\n\n", msg))
	out.WriteString("  [y] Yes    [n] No\n")
	out.WriteString("\n─────────────────────────────────────────────────")
	return out.String()
}
