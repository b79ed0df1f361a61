package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bar-chord-seq/config"
	"bar-chord-seq/sequencer"
	"bar-chord-seq/theme"
)

func newTestModel(t *testing.T) Model {
	return NewModel(Options{
		Manager: sequencer.NewManager(sequencer.New(), 1000),
		Theme:   theme.New(theme.DefaultPalette()),
		Store:   sequencer.NewStore(t.TempDir()),
		Config:  config.DefaultConfig(),
	})
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestKeysEditControls(t *testing.T) {
	assert := assert.New(t)
	m := newTestModel(t)

	m = press(m, "l", "l", "k", "k", "k", "K", "[", "}")
	c := m.Manager.Controls()

	assert.Equal(2, c.Bar)
	assert.Equal(3, c.Root)
	assert.Equal(10, c.Chord)
	assert.Equal(31, c.Length)
	assert.Equal(5, c.BeatsPerBar)

	m = press(m, "h", "h", "h", "j", "J", "]", "{")
	c = m.Manager.Controls()
	assert.Equal(0, c.Bar)
	assert.Equal(32, c.Length)
	assert.Equal(4, c.BeatsPerBar)
}

func TestKeysPulse(t *testing.T) {
	assert := assert.New(t)
	m := newTestModel(t)

	m = press(m, " ")
	m.Manager.Step()
	assert.Equal(1, m.Manager.Frame().Beat)

	m = press(m, "r")
	m.Manager.Step()
	m.Manager.Step()
	assert.Equal(0, m.Manager.Frame().Beat)
}

func TestFactoryResetNeedsConfirm(t *testing.T) {
	assert := assert.New(t)
	m := newTestModel(t)
	m = press(m, "k", "k")
	m.Manager.Step()

	m = press(m, "R")
	assert.Contains(m.View(), "Reset all bars")

	m = press(m, "n")
	assert.Equal(2, m.Manager.Bars()[0].Root)

	m = press(m, "R", "y")
	assert.Equal(sequencer.DefaultBar, m.Manager.Bars()[0])
	assert.Equal("factory reset", m.status)
}

func TestSaveAndBrowse(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	m := newTestModel(t)

	m = press(m, "k", "k", "k", "k")
	m.Manager.Step()
	m = press(m, "s")
	assert.Contains(m.status, "saved untitled/")
	assert.Equal("untitled", m.Project())

	saves, err := m.Store.ListSaves("untitled")
	require.NoError(err)
	require.Len(saves, 1)

	// change the table, then load the save back
	m = press(m, "j")
	m.Manager.Step()
	assert.Equal(3, m.Manager.Bars()[0].Root)

	m = press(m, "o")
	require.NotNil(m.browser)
	assert.Contains(m.View(), "untitled")

	m = press(m, "enter")
	assert.Nil(m.browser)
	assert.Contains(m.status, "loaded untitled/")
	assert.Equal(4, m.Manager.Bars()[0].Root)
	assert.Equal(4, m.Manager.Controls().Root)
}

func TestBrowserNewProjectAndClose(t *testing.T) {
	assert := assert.New(t)
	m := newTestModel(t)

	m = press(m, "o", "n", "m", "y", " ", "s", "e", "t", "x", "backspace", "enter")
	projects, err := m.Store.ListProjects()
	assert.NoError(err)
	assert.Equal([]string{"my-set"}, projects)

	m = press(m, "esc")
	assert.Nil(m.browser)

	// keys reach the sequencer again
	m = press(m, "k")
	assert.Equal(1, m.Manager.Controls().Root)
}

func TestRenameProjectThenSave(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	m := NewModel(Options{
		Manager: sequencer.NewManager(sequencer.New(), 1000),
		Theme:   theme.New(theme.DefaultPalette()),
		Store:   sequencer.NewStore(t.TempDir()),
		Config:  config.DefaultConfig(),
		Project: "song",
	})

	m = press(m, "s")
	assert.Contains(m.status, "saved song/")

	m = press(m, "o", "r", "backspace", "backspace", "backspace", "backspace")
	m = press(m, "m", "y", " ", "s", "o", "n", "g", "enter", "esc")
	require.Nil(m.browser)
	assert.Equal("my-song", m.Project())

	m = press(m, "s")
	assert.Contains(m.status, "saved my-song/")

	projects, err := m.Store.ListProjects()
	require.NoError(err)
	assert.Equal([]string{"my-song"}, projects)

	saves, err := m.Store.ListSaves("my-song")
	require.NoError(err)
	assert.Len(saves, 2)
}

func TestProjectOptionIsSanitized(t *testing.T) {
	m := NewModel(Options{
		Manager: sequencer.NewManager(sequencer.New(), 1000),
		Store:   sequencer.NewStore(t.TempDir()),
		Project: "live/set",
	})
	assert.Equal(t, "live-set", m.Project())
}

func TestBrowserDeleteProject(t *testing.T) {
	assert := assert.New(t)
	m := newTestModel(t)
	_, err := m.Manager.SaveProject(m.Store, "gone")
	assert.NoError(err)

	m = press(m, "o", "d")
	assert.Contains(m.View(), "Delete project 'gone'")

	m = press(m, "y")
	projects, _ := m.Store.ListProjects()
	assert.Empty(projects)
}

func TestQuit(t *testing.T) {
	assert := assert.New(t)
	m := newTestModel(t)

	next, cmd := m.Update(keyMsg("q"))
	assert.NotNil(cmd)
	assert.Equal(tea.Quit(), cmd())
	assert.Equal("", next.(Model).View())
}

func TestViewShowsPlayingBar(t *testing.T) {
	assert := assert.New(t)
	m := newTestModel(t)
	m.Manager.SetControl(sequencer.ControlChord, 4)
	m.Manager.SetControl(sequencer.ControlRoot, 6)
	m.Manager.Step()

	view := m.View()
	assert.Contains(view, "F# Dor")
	assert.Contains(view, "bar 01/32")
	assert.Contains(view, "(unsaved)")
}

func TestUpdateMsgRelistens(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(UpdateMsg{})
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	m.Manager.PulseClock()
	m.Manager.Step()

	select {
	case msg := <-done:
		assert.Equal(t, UpdateMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}
