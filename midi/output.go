package midi

import (
	"fmt"
	"math"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// CVConfig describes how control outputs are rendered as MIDI
type CVConfig struct {
	Channel  uint8 // 0-15
	BaseNote uint8 // note for root C (root output 0)
	ChordCC  uint8 // controller carrying the chord index
	GateNote uint8 // note held while the bar light is on; 0 disables
}

// DefaultCVConfig sends roots from C3 and the chord on CC 20
func DefaultCVConfig() CVConfig {
	return CVConfig{
		Channel:  0,
		BaseNote: 48,
		ChordCC:  20,
	}
}

// CVOutput renders root/chord/indicator outputs as MIDI. Messages are only
// sent when a value changes, so it can be called every cycle.
type CVOutput struct {
	cfg  CVConfig
	send func(msg gomidi.Message) error

	mu    sync.Mutex
	note  int // sounding root note, -1 if none
	chord int // last chord value sent, -1 if none
	gate  bool
}

// NewCVOutput creates an output writing through send
func NewCVOutput(send func(msg gomidi.Message) error, cfg CVConfig) *CVOutput {
	return &CVOutput{
		cfg:   cfg,
		send:  send,
		note:  -1,
		chord: -1,
	}
}

// OpenCVOutput opens outPort for sending
func OpenCVOutput(outPort drivers.Out, cfg CVConfig) (*CVOutput, error) {
	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", outPort.String(), err)
	}
	return NewCVOutput(send, cfg), nil
}

// RootNote converts a root output (1/12 per semitone) to a MIDI note
func (o *CVOutput) RootNote(root float64) uint8 {
	return clamp7(int(o.cfg.BaseNote) + int(math.Round(root*12)))
}

// SetCV sends whatever changed since the last call
func (o *CVOutput) SetCV(root, chord, light float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := o.cfg.Channel & 0x0F

	chordVal := int(clamp7(int(math.Round(chord))))
	if chordVal != o.chord {
		if err := o.send(gomidi.ControlChange(ch, o.cfg.ChordCC, uint8(chordVal))); err != nil {
			return err
		}
		o.chord = chordVal
	}

	note := int(o.RootNote(root))
	if note != o.note {
		if o.note >= 0 {
			if err := o.send(gomidi.NoteOff(ch, uint8(o.note))); err != nil {
				return err
			}
		}
		if err := o.send(gomidi.NoteOn(ch, uint8(note), 100)); err != nil {
			return err
		}
		o.note = note
	}

	if o.cfg.GateNote > 0 {
		on := light > 0
		if on != o.gate {
			var msg gomidi.Message
			if on {
				msg = gomidi.NoteOn(ch, o.cfg.GateNote, 127)
			} else {
				msg = gomidi.NoteOff(ch, o.cfg.GateNote)
			}
			if err := o.send(msg); err != nil {
				return err
			}
			o.gate = on
		}
	}

	return nil
}

// Close releases any sounding notes
func (o *CVOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := o.cfg.Channel & 0x0F
	if o.note >= 0 {
		o.send(gomidi.NoteOff(ch, uint8(o.note)))
		o.note = -1
	}
	if o.gate {
		o.send(gomidi.NoteOff(ch, o.cfg.GateNote))
		o.gate = false
	}
	return nil
}

func clamp7(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
