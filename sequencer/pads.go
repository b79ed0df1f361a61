package sequencer

import (
	"context"
	"time"

	"bar-chord-seq/debug"
	"bar-chord-seq/midi"
)

// Launchpad layout (row 0 at the bottom)
//
//	rows 0-3   bars 0-31, eight per row
//	row 4      roots C..G
//	row 5      roots G#..B (cols 0-3)
//	rows 6-7   chords 0-15, scene button on row 7 = chord 16
//	top row    length -/+, beats -/+, ..., reset, clock
const (
	barRows    = 4
	rootRow    = 4
	chordRow   = 6
	topRow     = 8
	sceneCol   = 8
	padsPerRow = 8
)

var (
	colorOff      = [3]uint8{0, 0, 0}
	colorDim      = [3]uint8{20, 20, 20}
	colorBar      = [3]uint8{40, 60, 120}
	colorPlayhead = [3]uint8{0, 255, 0}
	colorSelected = [3]uint8{255, 255, 255}
	colorRoot     = [3]uint8{180, 80, 40}
	colorRootOn   = [3]uint8{255, 150, 50}
	colorChord    = [3]uint8{150, 0, 200}
	colorChordOn  = [3]uint8{255, 80, 180}
	colorAdjust   = [3]uint8{180, 180, 60}
	colorReset    = [3]uint8{255, 0, 0}
	colorClock    = [3]uint8{0, 200, 200}
)

// SetController sets the MIDI controller for LED feedback
func (m *Manager) SetController(c midi.Controller) {
	debug.Log("ctrl", "SetController called, resetting diff state")
	m.mu.Lock()
	m.controller = c
	m.prevLEDs = make(map[[2]int]LEDState)
	m.ledDirty = c != nil
	m.mu.Unlock()
}

// markLEDsDirty flags that LEDs need refresh
func (m *Manager) markLEDsDirty() {
	m.mu.Lock()
	m.ledDirty = true
	m.mu.Unlock()
}

// ledLoop runs at fixed FPS and flushes LED updates
func (m *Manager) ledLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			dirty := m.ledDirty
			m.ledDirty = false
			m.mu.Unlock()

			if dirty {
				m.flushLEDs()
			}
		}
	}
}

// flushLEDs sends only changed LEDs to the controller (diffing + batching)
func (m *Manager) flushLEDs() {
	m.mu.Lock()
	ctrl := m.controller
	prevLEDs := m.prevLEDs
	m.mu.Unlock()
	if ctrl == nil {
		return
	}

	newLEDs := m.RenderLEDs()
	newMap := make(map[[2]int]LEDState, len(newLEDs))

	var updates []midi.LEDUpdate
	for _, led := range newLEDs {
		key := [2]int{led.Row, led.Col}
		newMap[key] = led

		if prev, ok := prevLEDs[key]; !ok || prev != led {
			updates = append(updates, midi.LEDUpdate{
				Row:     led.Row,
				Col:     led.Col,
				Color:   led.Color,
				Channel: led.Channel,
			})
		}
	}

	// Clear LEDs that are no longer present
	for key := range prevLEDs {
		if _, ok := newMap[key]; !ok {
			updates = append(updates, midi.LEDUpdate{Row: key[0], Col: key[1], Color: colorOff})
		}
	}

	if len(updates) > 0 {
		debug.Log("led", "flushLEDs: batch=%d prev=%d", len(updates), len(prevLEDs))
		if err := ctrl.SetLEDBatch(updates); err != nil {
			debug.Log("led", "SetLEDBatch: %v", err)
		}
	}

	m.mu.Lock()
	if m.controller == ctrl {
		m.prevLEDs = newMap
	}
	m.mu.Unlock()
}

// RenderLEDs returns the full Launchpad picture for the current state
func (m *Manager) RenderLEDs() []LEDState {
	m.mu.Lock()
	c := m.controls.Clamped()
	f := m.frame
	m.mu.Unlock()

	var leds []LEDState
	set := func(row, col int, color [3]uint8, channel uint8) {
		leds = append(leds, LEDState{Row: row, Col: col, Color: color, Channel: channel})
	}

	for bar := 0; bar < NumBars; bar++ {
		row, col := bar/padsPerRow, bar%padsPerRow
		switch {
		case bar == f.Bar:
			ch := midi.ChannelStatic
			if f.Light > 0 {
				ch = midi.ChannelPulse
			}
			set(row, col, colorPlayhead, ch)
		case bar == c.Bar:
			set(row, col, colorSelected, midi.ChannelStatic)
		case bar < c.Length:
			set(row, col, colorBar, midi.ChannelStatic)
		default:
			set(row, col, colorDim, midi.ChannelStatic)
		}
	}

	for root := 0; root < NumRoots; root++ {
		row, col := rootRow+root/padsPerRow, root%padsPerRow
		if root == c.Root {
			set(row, col, colorRootOn, midi.ChannelStatic)
		} else {
			set(row, col, colorRoot, midi.ChannelStatic)
		}
	}

	for chord := 0; chord < NumChords; chord++ {
		row, col := chordPad(chord)
		if chord == c.Chord {
			set(row, col, colorChordOn, midi.ChannelStatic)
		} else {
			set(row, col, colorChord, midi.ChannelStatic)
		}
	}

	for col := 0; col < 4; col++ {
		set(topRow, col, colorAdjust, midi.ChannelStatic)
	}
	set(topRow, 6, colorReset, midi.ChannelStatic)
	set(topRow, 7, colorClock, midi.ChannelStatic)

	return leds
}

// chordPad maps a chord index to its pad
func chordPad(chord int) (row, col int) {
	if chord == NumChords-1 {
		return chordRow + 1, sceneCol
	}
	return chordRow + chord/padsPerRow, chord % padsPerRow
}

// HandlePad maps a pad press onto the control surface
func (m *Manager) HandlePad(row, col int) {
	debug.Log("pad", "HandlePad row=%d col=%d", row, col)

	switch {
	case row == topRow:
		switch col {
		case 0:
			m.AdjustControl(ControlLength, -1)
		case 1:
			m.AdjustControl(ControlLength, 1)
		case 2:
			m.AdjustControl(ControlBeatsPerBar, -1)
		case 3:
			m.AdjustControl(ControlBeatsPerBar, 1)
		case 6:
			m.PulseReset()
		case 7:
			m.PulseClock()
		}

	case col == sceneCol:
		if row == chordRow+1 {
			m.SetControl(ControlChord, NumChords-1)
		}

	case row >= 0 && row < barRows:
		m.SelectBar(row*padsPerRow + col)

	case row >= rootRow && row < chordRow:
		root := (row-rootRow)*padsPerRow + col
		if root < NumRoots {
			m.SetControl(ControlRoot, root)
		}

	case row >= chordRow && row < topRow:
		m.SetControl(ControlChord, (row-chordRow)*padsPerRow+col)
	}
}
