package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadFile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Engine.Rate = 2000
	cfg.Clock.PortName = "IAC Bus 1"
	cfg.Controls.Chord = 3
	cfg.UI.LastProject = "live set"
	require.NoError(cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(err)
	assert.Equal(cfg, loaded)
}

func TestLoadFileMergesDefaults(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(`{"clock":{"division":12},"controls":{"root":99}}`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(err)

	assert.Equal(12, cfg.Clock.Division)
	assert.Equal(11, cfg.Controls.Root)
	assert.Equal(1000, cfg.Engine.Rate)
	assert.Equal(48, cfg.Output.BaseNote)
}

func TestLoadFileBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"engine":`), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadUsesHome(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.Output.GateNote = 60
	require.NoError(cfg.Save())
	assert.FileExists(filepath.Join(home, ".config", "bar-chord-seq", "config.json"))

	loaded, err := Load()
	require.NoError(err)
	assert.Equal(60, loaded.Output.GateNote)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Engine.Rate = 1
	cfg.Clock.Channel = 40
	cfg.Clock.Division = 0
	cfg.Clock.ClockNote = -9
	cfg.Mapping.BarCC = 300
	cfg.Controls.Length = 0
	cfg.Controls.BeatsPerBar = 17
	cfg.Controls.Bar = 32
	cfg.Validate()

	high := DefaultConfig()
	high.Engine.Rate = 48000
	high.Validate()
	assert.Equal(2000, high.Engine.Rate)

	assert.Equal(50, cfg.Engine.Rate)
	assert.Equal(15, cfg.Clock.Channel)
	assert.Equal(1, cfg.Clock.Division)
	assert.Equal(-1, cfg.Clock.ClockNote)
	assert.Equal(127, cfg.Mapping.BarCC)
	assert.Equal(1, cfg.Controls.Length)
	assert.Equal(16, cfg.Controls.BeatsPerBar)
	assert.Equal(31, cfg.Controls.Bar)
}

func TestControllers(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()

	assert.NotNil(cfg.FindController("Launchpad X LPX MIDI"))
	assert.Nil(cfg.FindController("other"))

	cfg.AddController(ControllerConfig{PortName: "other", Type: ControllerLaunchpadMini})
	cfg.AddController(ControllerConfig{PortName: "Launchpad X LPX MIDI", Type: ControllerLaunchpadX})
	assert.Len(cfg.Controllers, 2)
	assert.False(cfg.FindController("Launchpad X LPX MIDI").AutoConnect)

	cfg.AddController(ControllerConfig{PortName: "other", AutoConnect: true})
	auto := cfg.AutoConnectControllers()
	assert.Len(auto, 1)
	assert.Equal("other", auto[0].PortName)
}
