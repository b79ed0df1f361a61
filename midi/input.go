package midi

import (
	"fmt"
	"sync"

	"bar-chord-seq/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// InputPort listens to a MIDI input (clock source, trigger pads, knobs)
type InputPort struct {
	id       string
	stopFunc func()

	mu     sync.Mutex
	closed bool
	events chan Event
}

// NewInputPort opens inPort and starts delivering parsed events
func NewInputPort(inPort drivers.In) (*InputPort, error) {
	ip := &InputPort{
		id:     inPort.String(),
		events: make(chan Event, 256),
	}

	// Real-time clock bytes are filtered by the driver unless timecode is on
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		ip.deliver(msg)
	}, gomidi.UseTimeCode())
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", ip.id, err)
	}
	ip.stopFunc = stop

	return ip, nil
}

func (ip *InputPort) deliver(msg gomidi.Message) {
	ev, ok := Parse(msg)
	if !ok {
		return
	}

	ip.mu.Lock()
	defer ip.mu.Unlock()
	if ip.closed {
		return
	}
	select {
	case ip.events <- ev:
	default:
		debug.LogEvery(100, "input", "dropped event from %s", ip.id)
	}
}

func (ip *InputPort) ID() string {
	return ip.id
}

// Events returns parsed incoming events
func (ip *InputPort) Events() <-chan Event {
	return ip.events
}

func (ip *InputPort) Close() error {
	if ip.stopFunc != nil {
		ip.stopFunc()
	}

	ip.mu.Lock()
	defer ip.mu.Unlock()
	if !ip.closed {
		ip.closed = true
		close(ip.events)
	}
	return nil
}
