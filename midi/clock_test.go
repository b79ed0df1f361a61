package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockDivider(t *testing.T) {
	assert := assert.New(t)
	d := NewClockDivider(4)

	var beats []bool
	for i := 0; i < 9; i++ {
		beats = append(beats, d.Tick())
	}
	assert.Equal([]bool{true, false, false, false, true, false, false, false, true}, beats)

	d.Tick()
	d.Reset()
	assert.True(d.Tick())
}

func TestClockDividerDefault(t *testing.T) {
	assert := assert.New(t)
	d := NewClockDivider(0)
	assert.Equal(PPQN, d.Division)

	n := 0
	for i := 0; i < PPQN*4; i++ {
		if d.Tick() {
			n++
		}
	}
	assert.Equal(4, n)
}

func TestClockDividerEveryClock(t *testing.T) {
	d := NewClockDivider(1)
	for i := 0; i < 5; i++ {
		assert.True(t, d.Tick())
	}
}
