package sequencer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"bar-chord-seq/debug"
	"bar-chord-seq/midi"
)

// LED and UI refresh rate
const ledFPS = 30

// DefaultRate is the number of evaluation cycles per second
const DefaultRate = 1000

// MaxRate is the fastest cycle rate the ticker loop keeps up with
const MaxRate = 2000

// maxPending caps queued clock/reset pulses so a burst can't run away
const maxPending = 64

// pulseInput turns discrete pulses into levels, one high cycle then one
// low cycle per pulse, so each pulse is exactly one rising edge.
type pulseInput struct {
	pending int
	level   bool
}

func (p *pulseInput) add() {
	if p.pending < maxPending {
		p.pending++
	}
}

func (p *pulseInput) next() bool {
	if p.level {
		p.level = false
		return false
	}
	if p.pending > 0 {
		p.pending--
		p.level = true
	}
	return p.level
}

// Manager hosts a Sequencer: it runs evaluation cycles at a fixed rate,
// feeds it the control surface, and routes its outputs.
type Manager struct {
	mu  sync.Mutex // guards everything below; held for a whole cycle
	seq *Sequencer

	controls Controls
	clock    pulseInput
	reset    pulseInput
	dt       float64
	rate     int
	frame    Frame

	out        Output
	controller midi.Controller

	// LED rendering at fixed FPS
	ledDirty bool
	prevLEDs map[[2]int]LEDState

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager around seq running rate cycles per second
func NewManager(seq *Sequencer, rate int) *Manager {
	if rate <= 0 {
		rate = DefaultRate
	}
	rate = min(rate, MaxRate)
	m := &Manager{
		seq:        seq,
		controls:   DefaultControls(),
		rate:       rate,
		dt:         1 / float64(rate),
		prevLEDs:   make(map[[2]int]LEDState),
		UpdateChan: make(chan struct{}, 1),
	}
	bar, beat := seq.Cursor()
	rec := seq.Playing()
	m.frame = Frame{
		Root:   float64(rec.Root) / 12.0,
		Chord:  float64(rec.Chord),
		Bar:    bar,
		Beat:   beat,
		Record: rec,
		Length: m.controls.Length,
	}
	return m
}

// StartRuntime starts the evaluation and LED loops; both stop with ctx
func (m *Manager) StartRuntime(ctx context.Context) {
	go m.processLoop(ctx)
	go m.ledLoop(ctx)
}

func (m *Manager) processLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(m.rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Step()
		}
	}
}

// Step runs one evaluation cycle and sends the result to the output
func (m *Manager) Step() Frame {
	m.mu.Lock()
	prev := m.frame
	f := m.seq.Process(Inputs{
		Controls: m.controls,
		Clock:    m.clock.next(),
		Reset:    m.reset.next(),
		Elapsed:  m.dt,
	})
	m.frame = f
	out := m.out
	m.mu.Unlock()

	if out != nil {
		if err := out.SetCV(f.Root, f.Chord, f.Light); err != nil {
			debug.LogEvery(1000, "output", "SetCV: %v", err)
		}
	}

	if f.Bar != prev.Bar || f.Beat != prev.Beat || f.Record != prev.Record ||
		f.Length != prev.Length || (f.Light > 0) != (prev.Light > 0) {
		if f.Bar != prev.Bar {
			debug.Log("seq", "bar %d -> %d (%s)", prev.Bar, f.Bar, Label(f.Record))
		}
		m.notifyUpdate()
	}
	return f
}

// PulseClock queues one clock pulse
func (m *Manager) PulseClock() {
	m.mu.Lock()
	m.clock.add()
	m.mu.Unlock()
}

// PulseReset queues one reset pulse
func (m *Manager) PulseReset() {
	m.mu.Lock()
	m.reset.add()
	m.mu.Unlock()
}

// SetOutput sets where control outputs go (nil to disable)
func (m *Manager) SetOutput(out Output) {
	m.mu.Lock()
	m.out = out
	m.mu.Unlock()
}

// Controls returns the current knob values
func (m *Manager) Controls() Controls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controls
}

// SetControls replaces all knob values (clamped)
func (m *Manager) SetControls(c Controls) {
	m.mu.Lock()
	m.controls = c.Clamped()
	m.mu.Unlock()
	m.notifyUpdate()
}

// SetControl sets one knob (clamped)
func (m *Manager) SetControl(k ControlKind, v int) {
	m.mu.Lock()
	m.controls = m.controls.With(k, v)
	m.mu.Unlock()
	m.notifyUpdate()
}

// AdjustControl nudges one knob by delta (clamped)
func (m *Manager) AdjustControl(k ControlKind, delta int) {
	m.mu.Lock()
	m.controls = m.controls.With(k, m.controls.Get(k)+delta)
	m.mu.Unlock()
	m.notifyUpdate()
}

// SelectBar moves the edit selection to bar i and picks up that bar's
// stored root and chord, so selecting a bar doesn't overwrite it with the
// previous bar's values.
func (m *Manager) SelectBar(i int) {
	m.mu.Lock()
	i = Clamp(i, 0, NumBars-1)
	rec := m.seq.Bar(i)
	m.controls.Bar = i
	m.controls.Root = rec.Root
	m.controls.Chord = rec.Chord
	m.mu.Unlock()
	m.notifyUpdate()
}

// Frame returns the result of the last cycle
func (m *Manager) Frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// Bars returns a copy of the bar table
func (m *Manager) Bars() []BarRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq.Bars()
}

// Rate returns cycles per second
func (m *Manager) Rate() int {
	return m.rate
}

// FactoryReset restores all bars to C Maj and the cursor to the start
func (m *Manager) FactoryReset() {
	m.mu.Lock()
	m.seq.Reset()
	m.clock = pulseInput{}
	m.reset = pulseInput{}
	m.controls.Root = DefaultRoot
	m.controls.Chord = DefaultChord
	m.mu.Unlock()
	debug.Log("seq", "factory reset")
	m.notifyUpdate()
}

// Save writes the state blob. Never runs concurrently with a cycle.
func (m *Manager) Save(w io.Writer) error {
	m.mu.Lock()
	data, err := json.MarshalIndent(m.seq, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load reads a state blob
func (m *Manager) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	err = json.Unmarshal(data, m.seq)
	if err == nil {
		m.pickUpSelected()
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notifyUpdate()
	return nil
}

// SaveProject stores the state as a new save in project
func (m *Manager) SaveProject(st *Store, project string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return st.SaveProject(project, m.seq)
}

// LoadProject loads a save (latest when filename is empty) from project
func (m *Manager) LoadProject(st *Store, project, filename string) error {
	m.mu.Lock()
	err := st.LoadProject(project, filename, m.seq)
	if err == nil {
		m.pickUpSelected()
	}
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	m.notifyUpdate()
	return nil
}

// pickUpSelected syncs root/chord knobs to the loaded selected bar. Caller holds mu.
func (m *Manager) pickUpSelected() {
	rec := m.seq.Bar(m.controls.Bar)
	m.controls.Root = rec.Root
	m.controls.Chord = rec.Chord
}

// notifyUpdate refreshes LEDs and notifies TUI
func (m *Manager) notifyUpdate() {
	m.markLEDsDirty()
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
