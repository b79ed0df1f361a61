package sequencer

// Output receives the control outputs of every evaluation cycle
type Output interface {
	// SetCV is called once per cycle with root (1/12 per semitone),
	// chord index and the bar indicator level (0-1).
	SetCV(root, chord, light float64) error
}

// LEDState describes the state of a single LED
type LEDState struct {
	Row, Col int
	Color    [3]uint8 // RGB color - controller maps to its palette
	Channel  uint8    // 0=static, 2=pulse
}

// ControlKind names one of the five knobs
type ControlKind int

const (
	ControlLength ControlKind = iota
	ControlBeatsPerBar
	ControlBar
	ControlRoot
	ControlChord
)

var controlNames = []string{"Length", "Beats/Bar", "Bar", "Root", "Chord"}

func (k ControlKind) String() string {
	if k < 0 || int(k) >= len(controlNames) {
		return "?"
	}
	return controlNames[k]
}

// Range returns the inclusive domain of a knob
func (k ControlKind) Range() (lo, hi int) {
	switch k {
	case ControlLength:
		return 1, NumBars
	case ControlBeatsPerBar:
		return 1, MaxBeatsPerBar
	case ControlBar:
		return 0, NumBars - 1
	case ControlRoot:
		return 0, NumRoots - 1
	case ControlChord:
		return 0, NumChords - 1
	}
	return 0, 0
}

// Get reads a knob from c
func (c Controls) Get(k ControlKind) int {
	switch k {
	case ControlLength:
		return c.Length
	case ControlBeatsPerBar:
		return c.BeatsPerBar
	case ControlBar:
		return c.Bar
	case ControlRoot:
		return c.Root
	case ControlChord:
		return c.Chord
	}
	return 0
}

// With returns c with knob k set to v (clamped)
func (c Controls) With(k ControlKind, v int) Controls {
	lo, hi := k.Range()
	v = Clamp(v, lo, hi)
	switch k {
	case ControlLength:
		c.Length = v
	case ControlBeatsPerBar:
		c.BeatsPerBar = v
	case ControlBar:
		c.Bar = v
	case ControlRoot:
		c.Root = v
	case ControlChord:
		c.Chord = v
	}
	return c
}
