package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type recorder struct {
	msgs []gomidi.Message
	err  error
}

func (r *recorder) send(msg gomidi.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestCVOutputSendsChanges(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rec := &recorder{}
	out := NewCVOutput(rec.send, DefaultCVConfig())

	require.NoError(out.SetCV(0, 9, 0))
	assert.Equal([]gomidi.Message{
		gomidi.ControlChange(0, 20, 9),
		gomidi.NoteOn(0, 48, 100),
	}, rec.msgs)

	// nothing changed
	rec.msgs = nil
	require.NoError(out.SetCV(0, 9, 0.5))
	assert.Empty(rec.msgs)

	require.NoError(out.SetCV(7.0/12, 9, 0))
	assert.Equal([]gomidi.Message{
		gomidi.NoteOff(0, 48),
		gomidi.NoteOn(0, 55, 100),
	}, rec.msgs)

	rec.msgs = nil
	require.NoError(out.SetCV(7.0/12, 16, 0))
	assert.Equal([]gomidi.Message{gomidi.ControlChange(0, 20, 16)}, rec.msgs)
}

func TestCVOutputGate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rec := &recorder{}
	cfg := DefaultCVConfig()
	cfg.Channel = 2
	cfg.GateNote = 60
	out := NewCVOutput(rec.send, cfg)

	require.NoError(out.SetCV(0, 0, 1))
	assert.Contains(rec.msgs, gomidi.NoteOn(2, 60, 127))

	rec.msgs = nil
	require.NoError(out.SetCV(0, 0, 0.4))
	assert.Empty(rec.msgs)

	require.NoError(out.SetCV(0, 0, 0))
	assert.Equal([]gomidi.Message{gomidi.NoteOff(2, 60)}, rec.msgs)
}

func TestCVOutputClose(t *testing.T) {
	assert := assert.New(t)
	rec := &recorder{}
	cfg := DefaultCVConfig()
	cfg.GateNote = 60
	out := NewCVOutput(rec.send, cfg)

	out.SetCV(2.0/12, 0, 1)
	rec.msgs = nil

	assert.NoError(out.Close())
	assert.ElementsMatch([]gomidi.Message{gomidi.NoteOff(0, 50), gomidi.NoteOff(0, 60)}, rec.msgs)

	rec.msgs = nil
	assert.NoError(out.Close())
	assert.Empty(rec.msgs)
}

func TestCVOutputSendError(t *testing.T) {
	assert := assert.New(t)
	rec := &recorder{err: errors.New("gone")}
	out := NewCVOutput(rec.send, DefaultCVConfig())

	assert.Error(out.SetCV(0, 9, 0))

	// retried once the port is back
	rec.err = nil
	assert.NoError(out.SetCV(0, 9, 0))
	assert.Len(rec.msgs, 2)
}

func TestRootNote(t *testing.T) {
	assert := assert.New(t)
	out := NewCVOutput(nil, DefaultCVConfig())

	assert.Equal(uint8(48), out.RootNote(0))
	assert.Equal(uint8(59), out.RootNote(11.0/12))
	assert.Equal(uint8(127), out.RootNote(20))
	assert.Equal(uint8(0), out.RootNote(-10))
}
