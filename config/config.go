package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string         `json:"portName"`
	Type        ControllerType `json:"type"`
	AutoConnect bool           `json:"autoConnect"`
}

// EngineConfig controls the evaluation loop
type EngineConfig struct {
	Rate int `json:"rate"` // cycles per second
}

// ClockConfig selects the clock/reset source and how it is read
type ClockConfig struct {
	PortName    string `json:"portName,omitempty"`
	Channel     int    `json:"channel"`   // -1 = omni, else 0-15
	Division    int    `json:"division"`  // MIDI clocks per beat
	ClockNote   int    `json:"clockNote"` // -1 disables
	ResetNote   int    `json:"resetNote"` // -1 disables
	StartResets bool   `json:"startResets"`
}

// OutputConfig defines where root/chord outputs are sent
type OutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel"`  // 0-15
	BaseNote int    `json:"baseNote"` // note for root C
	ChordCC  int    `json:"chordCC"`
	GateNote int    `json:"gateNote,omitempty"` // 0 disables the bar gate
}

// MappingConfig assigns incoming CCs to the five knobs (-1 disables)
type MappingConfig struct {
	LengthCC int `json:"lengthCC"`
	BeatsCC  int `json:"beatsCC"`
	BarCC    int `json:"barCC"`
	RootCC   int `json:"rootCC"`
	ChordCC  int `json:"chordCC"`
}

// ControlsConfig remembers knob positions between runs
type ControlsConfig struct {
	Length      int `json:"length"`
	BeatsPerBar int `json:"beatsPerBar"`
	Bar         int `json:"bar"`
	Root        int `json:"root"`
	Chord       int `json:"chord"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastProject string `json:"lastProject,omitempty"`
	Palette     string `json:"palette,omitempty"` // path to a .gpl file
}

// Config is the main configuration structure
type Config struct {
	Engine      EngineConfig       `json:"engine"`
	Clock       ClockConfig        `json:"clock"`
	Output      OutputConfig       `json:"output"`
	Mapping     MappingConfig      `json:"mapping"`
	Controls    ControlsConfig     `json:"controls"`
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{Rate: 1000},
		Clock: ClockConfig{
			Channel:     -1,
			Division:    24,
			ClockNote:   36,
			ResetNote:   37,
			StartResets: true,
		},
		Output: OutputConfig{
			Channel:  0,
			BaseNote: 48,
			ChordCC:  20,
		},
		Mapping: MappingConfig{
			LengthCC: 21,
			BeatsCC:  22,
			BarCC:    23,
			RootCC:   24,
			ChordCC:  25,
		},
		Controls: ControlsConfig{
			Length:      32,
			BeatsPerBar: 4,
			Bar:         0,
			Root:        0,
			Chord:       9,
		},
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
	}
}

// Validate pulls out-of-range values back into range. Nothing is rejected.
func (c *Config) Validate() {
	c.Engine.Rate = clamp(c.Engine.Rate, 50, 2000)

	c.Clock.Channel = clamp(c.Clock.Channel, -1, 15)
	c.Clock.Division = clamp(c.Clock.Division, 1, 96)
	c.Clock.ClockNote = clamp(c.Clock.ClockNote, -1, 127)
	c.Clock.ResetNote = clamp(c.Clock.ResetNote, -1, 127)

	c.Output.Channel = clamp(c.Output.Channel, 0, 15)
	c.Output.BaseNote = clamp(c.Output.BaseNote, 0, 127)
	c.Output.ChordCC = clamp(c.Output.ChordCC, 0, 127)
	c.Output.GateNote = clamp(c.Output.GateNote, 0, 127)

	for _, cc := range []*int{&c.Mapping.LengthCC, &c.Mapping.BeatsCC, &c.Mapping.BarCC, &c.Mapping.RootCC, &c.Mapping.ChordCC} {
		*cc = clamp(*cc, -1, 127)
	}

	c.Controls.Length = clamp(c.Controls.Length, 1, 32)
	c.Controls.BeatsPerBar = clamp(c.Controls.BeatsPerBar, 1, 16)
	c.Controls.Bar = clamp(c.Controls.Bar, 0, 31)
	c.Controls.Root = clamp(c.Controls.Root, 0, 11)
	c.Controls.Chord = clamp(c.Controls.Chord, 0, 16)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bar-chord-seq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields missing from the file keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Validate()

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}
