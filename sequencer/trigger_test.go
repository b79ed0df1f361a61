package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerRisingEdge(t *testing.T) {
	assert := assert.New(t)
	var tr Trigger

	assert.False(tr.Process(false))
	assert.True(tr.Process(true))
	assert.False(tr.Process(true))
	assert.False(tr.Process(false))
	assert.True(tr.Process(true))

	tr.Reset()
	assert.True(tr.Process(true))
}

func TestPulseDecay(t *testing.T) {
	assert := assert.New(t)
	var p Pulse

	assert.Equal(0.0, p.Process(0.01))
	assert.False(p.Active())

	p.Trigger(0.1)
	assert.True(p.Active())
	assert.InDelta(1.0, p.Process(0.05), 1e-9)
	assert.InDelta(0.5, p.Process(0.05), 1e-9)
	assert.Equal(0.0, p.Process(0.05))
	assert.False(p.Active())
}

func TestPulseRetriggerDoesNotShorten(t *testing.T) {
	assert := assert.New(t)
	var p Pulse

	p.Trigger(1.0)
	p.Process(0.1)
	p.Trigger(0.1)
	assert.InDelta(0.9, p.Process(0), 1e-9)

	// a spent pulse restarts at full
	p.Process(2)
	p.Trigger(0.1)
	assert.InDelta(1.0, p.Process(0), 1e-9)
}

func TestPulseReset(t *testing.T) {
	var p Pulse
	p.Trigger(0.1)
	p.Reset()
	assert.Equal(t, 0.0, p.Process(0.01))
}
