package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn   uint8 = 0x90
	NoteOff  uint8 = 0x80
	CC       uint8 = 0xB0
	Clock    uint8 = 0xF8
	Start    uint8 = 0xFA
	Continue uint8 = 0xFB
	Stop     uint8 = 0xFC
)

// Event is an incoming message the sequencer cares about.
// For CC events Note holds the controller number and Velocity the value.
type Event struct {
	Type     uint8
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Parse converts a raw message; ok is false for anything we ignore
func Parse(msg gomidi.Message) (ev Event, ok bool) {
	var channel, note, velocity uint8

	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		return Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity}, true
	case msg.GetNoteOn(&channel, &note, &velocity):
		// velocity 0 note on is a note off
		return Event{Type: NoteOff, Channel: channel, Note: note}, true
	case msg.GetNoteOff(&channel, &note, &velocity):
		return Event{Type: NoteOff, Channel: channel, Note: note}, true
	case msg.GetControlChange(&channel, &note, &velocity):
		return Event{Type: CC, Channel: channel, Note: note, Velocity: velocity}, true
	}

	if len(msg) == 1 {
		switch msg[0] {
		case Clock, Start, Continue, Stop:
			return Event{Type: msg[0]}, true
		}
	}
	return Event{}, false
}
