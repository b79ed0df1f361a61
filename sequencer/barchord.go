package sequencer

// Controls are the five knob values read every cycle.
// Values may arrive out of range; Process clamps them.
type Controls struct {
	Length      int `json:"length"`      // 1-32 active bars
	BeatsPerBar int `json:"beatsPerBar"` // 1-16 clock pulses per bar
	Bar         int `json:"bar"`         // 0-31 bar under live edit
	Root        int `json:"root"`        // 0-11
	Chord       int `json:"chord"`       // 0-16
}

// DefaultControls match the panel defaults
func DefaultControls() Controls {
	return Controls{
		Length:      DefaultLength,
		BeatsPerBar: DefaultBeatsPerBar,
		Bar:         0,
		Root:        DefaultRoot,
		Chord:       DefaultChord,
	}
}

// Clamped returns the controls limited to their domains
func (c Controls) Clamped() Controls {
	return Controls{
		Length:      Clamp(c.Length, 1, NumBars),
		BeatsPerBar: Clamp(c.BeatsPerBar, 1, MaxBeatsPerBar),
		Bar:         Clamp(c.Bar, 0, NumBars-1),
		Root:        Clamp(c.Root, 0, NumRoots-1),
		Chord:       Clamp(c.Chord, 0, NumChords-1),
	}
}

// Inputs is everything one evaluation cycle consumes
type Inputs struct {
	Controls
	Clock   bool    // clock level, advances on rising edge
	Reset   bool    // reset level, zeros cursor on rising edge
	Elapsed float64 // seconds since the previous cycle
}

// Frame is everything one evaluation cycle produces
type Frame struct {
	Root  float64 // root/12, 1 unit per octave
	Chord float64 // chord index
	Light float64 // bar indicator, 0-1

	Bar    int
	Beat   int
	Record BarRecord // record at Bar
	Length int       // effective sequence length this cycle
}

// Sequencer owns the bar table and the playback cursor
type Sequencer struct {
	table *BarTable

	bar  int
	beat int

	clock Trigger
	reset Trigger
	light Pulse
}

// New creates a sequencer with every bar at C Maj and the cursor at (0, 0)
func New() *Sequencer {
	s := &Sequencer{table: NewBarTable()}
	s.Reset()
	return s
}

// Reset restores factory defaults: table, cursor and edge detectors.
// Not the same as a reset pulse, which only moves the cursor.
func (s *Sequencer) Reset() {
	s.table.ResetAll()
	s.bar = 0
	s.beat = 0
	s.clock.Reset()
	s.reset.Reset()
	s.light.Reset()
}

// Process runs one evaluation cycle
func (s *Sequencer) Process(in Inputs) Frame {
	c := in.Controls.Clamped()

	// Selected bar always mirrors the knobs
	s.table.Set(c.Bar, c.Root, c.Chord)

	// Reset first, then clock; both may fire in the same cycle
	if s.reset.Process(in.Reset) {
		s.bar = 0
		s.beat = 0
		s.light.Trigger(IndicatorDuration)
	}

	if s.clock.Process(in.Clock) {
		s.beat++
		if s.beat >= c.BeatsPerBar {
			s.beat = 0
			s.bar++
			if s.bar >= c.Length {
				s.bar = 0
			}
			s.light.Trigger(IndicatorDuration)
		}
	}

	// Length may have shrunk under the cursor
	s.bar = Clamp(s.bar, 0, c.Length-1)

	rec := s.table.Get(s.bar)
	return Frame{
		Root:   float64(rec.Root) / 12.0,
		Chord:  float64(rec.Chord),
		Light:  s.light.Process(in.Elapsed),
		Bar:    s.bar,
		Beat:   s.beat,
		Record: rec,
		Length: c.Length,
	}
}

// Cursor returns the current bar and beat
func (s *Sequencer) Cursor() (bar, beat int) {
	return s.bar, s.beat
}

// Bar returns the record stored at bar i (clamped to the table)
func (s *Sequencer) Bar(i int) BarRecord {
	return s.table.Get(Clamp(i, 0, NumBars-1))
}

// Playing returns the record under the cursor
func (s *Sequencer) Playing() BarRecord {
	return s.Bar(s.bar)
}

// Bars returns a copy of the whole table
func (s *Sequencer) Bars() []BarRecord {
	return s.table.Serialize()
}
