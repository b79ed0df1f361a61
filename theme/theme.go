package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	BarEmpty    rune // · outside the active length
	BarActive   rune // ○ inside the active length
	BarPlayhead rune // ▶ currently playing
	BarSelected rune // ◉ under live edit
	BeatOn      rune // ● elapsed beat
	BeatOff     rune // · pending beat
	LightOn     rune // ● bar indicator lit
	LightOff    rune // ○ bar indicator dark
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BarEmpty:    '·',
			BarActive:   '○',
			BarPlayhead: '▶',
			BarSelected: '◉',
			BeatOn:      '●',
			BeatOff:     '·',
			LightOn:     '●',
			LightOff:    '○',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0
	RoleMuted    = 0.25
	RoleFG       = 0.45
	RoleAccent   = 0.55
	RoleSelected = 0.65
	RolePlayhead = 0.8
	RoleLight    = 1.0
)

func (t *Theme) BG() lipgloss.Color       { return t.Color(RoleBG) }
func (t *Theme) FG() lipgloss.Color       { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color   { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color    { return t.Color(RoleMuted) }
func (t *Theme) Selected() lipgloss.Color { return t.Color(RoleSelected) }
func (t *Theme) Playhead() lipgloss.Color { return t.Color(RolePlayhead) }
func (t *Theme) Light() lipgloss.Color    { return t.Color(RoleLight) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value (for Launchpad)
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
