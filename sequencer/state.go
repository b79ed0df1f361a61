package sequencer

import (
	"encoding/json"
	"fmt"
)

// State is the persisted form of a sequencer: the bar table plus the
// playback position. Knob values belong to the control surface and are
// not part of it.
type State struct {
	Bars        []BarRecord `json:"bars"`
	CurrentBar  int         `json:"currentBar"`
	CurrentBeat int         `json:"currentBeat"`
}

// Snapshot captures the current table and cursor
func (s *Sequencer) Snapshot() State {
	return State{
		Bars:        s.table.Serialize(),
		CurrentBar:  s.bar,
		CurrentBeat: s.beat,
	}
}

// Restore loads a full State. Short bar lists only overwrite the bars they hold.
func (s *Sequencer) Restore(st State) {
	patches := make([]BarPatch, len(st.Bars))
	for i := range st.Bars {
		root, chord := st.Bars[i].Root, st.Bars[i].Chord
		patches[i] = BarPatch{Root: &root, Chord: &chord}
	}
	s.table.Deserialize(patches)
	s.setCursor(st.CurrentBar, st.CurrentBeat)
}

func (s *Sequencer) setCursor(bar, beat int) {
	// The next cycle reclamps bar against the active length
	s.bar = Clamp(bar, 0, NumBars-1)
	s.beat = Clamp(beat, 0, MaxBeatsPerBar-1)
}

// MarshalJSON writes the saved-state blob
func (s *Sequencer) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON loads a saved-state blob. Missing or malformed entries are
// skipped field by field; only a blob that is not a JSON object is an error,
// in which case nothing is changed.
func (s *Sequencer) UnmarshalJSON(data []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if root == nil {
		return fmt.Errorf("decode state: not an object")
	}

	if raw, ok := root["bars"]; ok {
		s.table.Deserialize(decodeBars(raw))
	}

	bar, beat := s.bar, s.beat
	if v, ok := decodeInt(root["currentBar"]); ok {
		bar = v
	}
	if v, ok := decodeInt(root["currentBeat"]); ok {
		beat = v
	}
	s.setCursor(bar, beat)

	return nil
}

// decodeBars reads a bar list leniently. A bar list that is not an array
// yields no patches.
func decodeBars(raw json.RawMessage) []BarPatch {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	patches := make([]BarPatch, len(entries))
	for i, e := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(e, &fields); err != nil {
			continue // leave this bar alone
		}
		if v, ok := decodeInt(fields["root"]); ok {
			patches[i].Root = &v
		}
		if v, ok := decodeInt(fields["chord"]); ok {
			patches[i].Chord = &v
		}
	}
	return patches
}

// decodeInt accepts any JSON number, truncating fractions
func decodeInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, false
	}
	return int(*f), true
}
