package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/core"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = buildColorStyles()

func buildColorStyles() map[core.Color]lipgloss.Style {
	styles := make(map[core.Color]lipgloss.Style)
	for _, c := range core.Colors() {
		style := lipgloss.NewStyle()
		if code := c.ANSI(); code != "" {
			style = style.Foreground(lipgloss.Color(code))
		}
		styles[c] = style
	}
	return styles
}

// RenderScreen converts a Screen buffer to a styled string for display.
func RenderScreen(s *core.Screen) string {
	lines := make([]string, s.Height())
	for y := range lines {
		lines[y] = renderRow(s, y)
	}
	return strings.Join(lines, "\n")
}

// renderRow styles each run of same-colored cells once.
func renderRow(s *core.Screen, y int) string {
	var b strings.Builder
	run := make([]rune, 0, s.Width())
	color := core.ColorDefault

	flush := func() {
		if len(run) > 0 {
			b.WriteString(colorStyles[color].Render(string(run)))
			run = run[:0]
		}
	}

	for x := range s.Width() {
		c := s.GetCell(x, y)
		if c.Color != color {
			flush()
			color = c.Color
		}
		run = append(run, c.Rune)
	}
	flush()

	return b.String()
}
