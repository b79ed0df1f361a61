package midi

// PPQN is the number of MIDI clock messages per quarter note
const PPQN = 24

// ClockDivider turns a stream of MIDI clocks into beat pulses
type ClockDivider struct {
	Division int // clocks per beat; PPQN = one beat per quarter note
	count    int
}

// NewClockDivider creates a divider emitting one beat every division clocks
func NewClockDivider(division int) *ClockDivider {
	if division < 1 {
		division = PPQN
	}
	return &ClockDivider{Division: division}
}

// Tick counts one clock and reports whether it starts a new beat.
// The first clock after a Reset is a beat.
func (d *ClockDivider) Tick() bool {
	beat := d.count == 0
	d.count++
	if d.count >= d.Division {
		d.count = 0
	}
	return beat
}

// Reset realigns the divider so the next clock is a beat (on MIDI Start)
func (d *ClockDivider) Reset() {
	d.count = 0
}
