package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/facebookfortune84/agentic-workforce/internal/arsenal"
	"github.com/facebookfortune84/agentic-workforce/internal/logbuf"
)

type uiTheme struct {
	root         lipgloss.Style
	header       lipgloss.Style
	tabActive    lipgloss.Style
	tabInactive  lipgloss.Style
	panel        lipgloss.Style
	panelTitle   lipgloss.Style
	footer       lipgloss.Style
	status       lipgloss.Style
	errorStatus  lipgloss.Style
	inputPanel   lipgloss.Style
	helpText     lipgloss.Style
	settingKey   lipgloss.Style
	settingValue lipgloss.Style
	settingPick  lipgloss.Style
	modalFrame   lipgloss.Style
	modalAccent  lipgloss.Style
	logKind      map[logbuf.Kind]lipgloss.Style
	origin       map[arsenal.Origin]lipgloss.Style

	pink lipgloss.Color
	blue lipgloss.Color
	bg   lipgloss.Color
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	bg := lipgloss.Color("#120924")
	panelBg := lipgloss.Color("#1b0f35")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")
	amber := lipgloss.Color("#ffd166")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		tabActive: lipgloss.NewStyle().
			Background(pink).
			Foreground(lipgloss.Color("#22062f")).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Background(lipgloss.Color("#2a184a")).
			Foreground(muted).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mint).
			Padding(0, 1),
		helpText:     lipgloss.NewStyle().Foreground(muted),
		settingKey:   lipgloss.NewStyle().Foreground(blue),
		settingValue: lipgloss.NewStyle().Foreground(text),
		settingPick:  lipgloss.NewStyle().Foreground(pink).Bold(true),
		modalFrame: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(blue).
			Padding(1, 2),
		modalAccent: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		logKind: map[logbuf.Kind]lipgloss.Style{
			logbuf.KindInfo:    lipgloss.NewStyle().Foreground(text),
			logbuf.KindSuccess: lipgloss.NewStyle().Foreground(mint).Bold(true),
			logbuf.KindFault:   lipgloss.NewStyle().Foreground(pink).Bold(true),
		},
		origin: map[arsenal.Origin]lipgloss.Style{
			arsenal.OriginPlatform: lipgloss.NewStyle().Foreground(blue),
			arsenal.OriginAgent:    lipgloss.NewStyle().Foreground(amber).Bold(true),
		},

		pink: pink,
		blue: blue,
		bg:   bg,
	}
}
