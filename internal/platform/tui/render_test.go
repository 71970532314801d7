package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockfall/internal/core"
)

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawText(0, 0, "ab")
	s.SetColor(2, 0, '#', core.ColorCyan)
	s.SetColor(3, 0, '#', core.ColorCyan)
	s.SetColor(4, 0, '@', core.ColorOrange)
	s.DrawText(1, 1, "xyz")

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("rendered %d lines, expected 2", len(lines))
	}

	// Styling must not change what is shown
	for y, line := range lines {
		if w := lipgloss.Width(line); w != 6 {
			t.Errorf("line %d is %d cells wide, expected 6", y, w)
		}
	}
	if !strings.Contains(out, "##") || !strings.Contains(out, "@") || !strings.Contains(out, "xyz") {
		t.Errorf("rendered text lost cells: %q", out)
	}
}

func TestColorStylesCoverPalette(t *testing.T) {
	for _, c := range core.Colors() {
		if _, ok := colorStyles[c]; !ok {
			t.Errorf("no style for color %d", c)
		}
	}
}
