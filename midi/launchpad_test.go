package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestLaunchpadNoteMapping(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint8(11), rowColToNote(0, 0))
	assert.Equal(uint8(88), rowColToNote(7, 7))
	assert.Equal(uint8(89), rowColToNote(7, 8))
	assert.Equal(uint8(91), rowColToNote(8, 0))

	for row := 0; row < 8; row++ {
		for col := 0; col < 9; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			assert.Equal(row, r)
			assert.Equal(col, c)
		}
	}

	r, c := noteToRowCol(5)
	assert.Equal(-1, r)
	assert.Equal(-1, c)

	r, c = ccToRowCol(98)
	assert.Equal(8, r)
	assert.Equal(7, c)
	r, _ = ccToRowCol(20)
	assert.Equal(-1, r)
}

func TestMapRGBToLaunchpad(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint8(0), mapRGBToLaunchpad([3]uint8{0, 0, 0}))
	assert.Equal(uint8(119), mapRGBToLaunchpad([3]uint8{255, 255, 255}))
	assert.Equal(uint8(71), mapRGBToLaunchpad([3]uint8{20, 20, 20}))
	assert.Equal(uint8(5), mapRGBToLaunchpad([3]uint8{255, 0, 0}))
	assert.Equal(uint8(21), mapRGBToLaunchpad([3]uint8{0, 255, 0}))
}

func TestLaunchpadPadEvents(t *testing.T) {
	assert := assert.New(t)
	lp := &LaunchpadController{id: "lp", padChan: make(chan PadEvent, 4)}

	lp.handleMessage(gomidi.NoteOn(0, 23, 100), 0)
	lp.handleMessage(gomidi.NoteOn(0, 23, 0), 0) // release
	lp.handleMessage(gomidi.ControlChange(0, 97, 127), 0)
	lp.handleMessage(gomidi.ControlChange(0, 97, 0), 0)

	assert.Equal(PadEvent{Row: 1, Col: 2, Velocity: 100}, <-lp.PadEvents())
	assert.Equal(PadEvent{Row: 8, Col: 6, Velocity: 127}, <-lp.PadEvents())
	assert.Len(lp.padChan, 0)

	assert.NoError(lp.Close())
	lp.handleMessage(gomidi.NoteOn(0, 11, 100), 0)
	_, open := <-lp.PadEvents()
	assert.False(open)
}
