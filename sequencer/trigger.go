package sequencer

// Trigger detects rising edges on a boolean input
type Trigger struct {
	high bool
}

// Process feeds the current level and reports whether it rose this cycle
func (t *Trigger) Process(level bool) bool {
	rose := level && !t.high
	t.high = level
	return rose
}

// Reset forgets the previous level
func (t *Trigger) Reset() {
	t.high = false
}

// IndicatorDuration is how long the bar light stays lit after an advance (seconds)
const IndicatorDuration = 0.1

// Pulse is a countdown timer whose output fades from 1 to 0 over its duration
type Pulse struct {
	remaining float64
	duration  float64
}

// Trigger starts (or extends) a pulse. An active longer pulse is not cut short.
func (p *Pulse) Trigger(duration float64) {
	if duration > p.remaining {
		p.remaining = duration
		p.duration = duration
	}
}

// Process returns the current intensity, then advances by dt seconds.
func (p *Pulse) Process(dt float64) float64 {
	if p.remaining <= 0 || p.duration <= 0 {
		return 0
	}
	level := p.remaining / p.duration
	p.remaining -= dt
	if p.remaining < 0 {
		p.remaining = 0
	}
	return level
}

// Active reports whether the pulse still has time left
func (p *Pulse) Active() bool {
	return p.remaining > 0
}

// Reset cancels any active pulse
func (p *Pulse) Reset() {
	p.remaining = 0
	p.duration = 0
}
