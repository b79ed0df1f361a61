package sequencer

// BarRecord is the selection stored for one bar
type BarRecord struct {
	Root  int `json:"root"`  // 0-11 (C-B)
	Chord int `json:"chord"` // 0-16, index into ChordNames
}

// DefaultBar is C Maj
var DefaultBar = BarRecord{Root: DefaultRoot, Chord: DefaultChord}

// BarPatch is a partially-present record read back from a saved blob.
// Nil fields leave the stored value alone.
type BarPatch struct {
	Root  *int
	Chord *int
}

// BarTable holds the fixed set of bars. Indices are always in [0, NumBars);
// callers clamp before calling.
type BarTable struct {
	bars [NumBars]BarRecord
}

// NewBarTable returns a table with every bar at the default.
func NewBarTable() *BarTable {
	t := &BarTable{}
	t.ResetAll()
	return t
}

// Get returns the record at bar i
func (t *BarTable) Get(i int) BarRecord {
	return t.bars[i]
}

// Set overwrites bar i. root and chord must already be in domain.
func (t *BarTable) Set(i, root, chord int) {
	t.bars[i] = BarRecord{Root: root, Chord: chord}
}

// ResetAll puts every bar back to C Maj
func (t *BarTable) ResetAll() {
	for i := range t.bars {
		t.bars[i] = DefaultBar
	}
}

// Serialize returns all bars in order.
func (t *BarTable) Serialize() []BarRecord {
	out := make([]BarRecord, NumBars)
	copy(out, t.bars[:])
	return out
}

// Deserialize applies patches by index. Entries past the end of the table
// are ignored and bars without an entry keep their current value.
func (t *BarTable) Deserialize(patches []BarPatch) {
	for i, p := range patches {
		if i >= NumBars {
			break
		}
		if p.Root != nil {
			t.bars[i].Root = Clamp(*p.Root, 0, NumRoots-1)
		}
		if p.Chord != nil {
			t.bars[i].Chord = Clamp(*p.Chord, 0, NumChords-1)
		}
	}
}
