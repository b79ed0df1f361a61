package sequencer

import "fmt"

// NoteNames are the 12 pitch classes a bar root can select (C=0 ... B=11).
var NoteNames = [...]string{
	"C", "C#", "D", "D#", "E", "F",
	"F#", "G", "G#", "A", "A#", "B",
}

// ChordNames are the abbreviated chord/scale presets a bar can select.
// Order matches the scale index of the downstream quantizer, so it is part
// of the saved format and must not be reordered.
var ChordNames = [...]string{
	"Aeo", "Blu", "Chr", "DMin", "Dor",
	"HMin", "Ind", "Loc", "Lyd", "Maj",
	"MMin", "Min", "Mix", "NMin", "Pent",
	"Phr", "Tur",
}

const (
	NumBars   = 32
	NumRoots  = len(NoteNames)
	NumChords = len(ChordNames)

	MaxBeatsPerBar = 16

	DefaultRoot        = 0
	DefaultChord       = 9 // Maj
	DefaultLength      = NumBars
	DefaultBeatsPerBar = 4
)

// NoteName returns the name for a root index, clamping out-of-range values.
func NoteName(root int) string {
	return NoteNames[Clamp(root, 0, NumRoots-1)]
}

// ChordName returns the abbreviation for a chord index, clamping out-of-range values.
func ChordName(chord int) string {
	return ChordNames[Clamp(chord, 0, NumChords-1)]
}

// Label renders a record the way the panel display shows it, e.g. "C Maj".
func Label(r BarRecord) string {
	return fmt.Sprintf("%s %s", NoteName(r.Root), ChordName(r.Chord))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
