package sequencer

import (
	"context"

	"bar-chord-seq/debug"
	"bar-chord-seq/midi"
)

// Mapping decides which incoming MIDI drives clock, reset and the knobs.
// Negative note/CC numbers disable that route.
type Mapping struct {
	Channel     int  // -1 = omni
	Division    int  // MIDI clocks per beat
	ClockNote   int  // note-on that counts as a clock pulse
	ResetNote   int  // note-on that counts as a reset pulse
	StartResets bool // MIDI Start also resets the cursor

	LengthCC int
	BeatsCC  int
	BarCC    int
	RootCC   int
	ChordCC  int
}

// DefaultMapping follows MIDI clock at quarter notes, with C1/C#1 as
// trigger notes and CC 21-25 as knobs
func DefaultMapping() Mapping {
	return Mapping{
		Channel:     -1,
		Division:    midi.PPQN,
		ClockNote:   36,
		ResetNote:   37,
		StartResets: true,
		LengthCC:    21,
		BeatsCC:     22,
		BarCC:       23,
		RootCC:      24,
		ChordCC:     25,
	}
}

// Router applies incoming MIDI events to a Manager
type Router struct {
	m       *Manager
	mapping Mapping
	divider *midi.ClockDivider
}

// NewRouter creates a router for m
func NewRouter(m *Manager, mapping Mapping) *Router {
	return &Router{
		m:       m,
		mapping: mapping,
		divider: midi.NewClockDivider(mapping.Division),
	}
}

// Run applies events until ctx is done or events is closed
func (r *Router) Run(ctx context.Context, events <-chan midi.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Handle(ev)
		}
	}
}

// Handle applies one event
func (r *Router) Handle(ev midi.Event) {
	switch ev.Type {
	case midi.Clock:
		if r.divider.Tick() {
			r.m.PulseClock()
		}
		return
	case midi.Start:
		debug.Log("input", "MIDI start")
		r.divider.Reset()
		if r.mapping.StartResets {
			r.m.PulseReset()
		}
		return
	case midi.Stop, midi.Continue:
		return
	}

	if r.mapping.Channel >= 0 && int(ev.Channel) != r.mapping.Channel {
		return
	}

	switch ev.Type {
	case midi.NoteOn:
		switch int(ev.Note) {
		case r.mapping.ClockNote:
			r.m.PulseClock()
		case r.mapping.ResetNote:
			r.m.PulseReset()
		}
	case midi.CC:
		if k, ok := r.controlFor(int(ev.Note)); ok {
			v := ScaleCC(k, ev.Velocity)
			if k == ControlBar {
				r.m.SelectBar(v)
			} else {
				r.m.SetControl(k, v)
			}
		}
	}
}

func (r *Router) controlFor(cc int) (ControlKind, bool) {
	if cc < 0 {
		return 0, false
	}
	switch cc {
	case r.mapping.LengthCC:
		return ControlLength, true
	case r.mapping.BeatsCC:
		return ControlBeatsPerBar, true
	case r.mapping.BarCC:
		return ControlBar, true
	case r.mapping.RootCC:
		return ControlRoot, true
	case r.mapping.ChordCC:
		return ControlChord, true
	}
	return 0, false
}

// ScaleCC spreads a 0-127 CC value evenly over a knob's domain
func ScaleCC(k ControlKind, value uint8) int {
	lo, hi := k.Range()
	v := int(value)
	if v > 127 {
		v = 127
	}
	return lo + v*(hi-lo+1)/128
}
