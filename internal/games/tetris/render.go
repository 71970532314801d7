package tetris

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
)

// Visual characters for rendering
const (
	BlockChar = '█'
	GhostChar = '░'
)

// Layout in screen cells. Each board cell is two characters wide so the
// well looks square in a terminal.
const (
	cellWidth   = 2
	panelGap    = 2
	panelWidth  = 12
	nextPreview = 3
)

// kindColors maps piece kinds to their display color.
var kindColors = map[piece.Kind]core.Color{
	piece.I:       core.ColorBrightCyan,
	piece.O:       core.ColorBrightYellow,
	piece.T:       core.ColorMagenta,
	piece.S:       core.ColorBrightGreen,
	piece.Z:       core.ColorBrightRed,
	piece.J:       core.ColorBrightBlue,
	piece.L:       core.ColorOrange,
	piece.Garbage: core.ColorGray,
}

// KindColor returns the color a piece kind is drawn in.
func KindColor(k piece.Kind) core.Color {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return core.ColorDefault
}

// MinScreenSize returns the smallest screen that fits the well and panel.
func MinScreenSize(b *sim.Board) (int, int) {
	return b.Width*cellWidth + 2 + panelGap + panelWidth, b.VisualHeight + 2
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	w := g.session.World()
	b := w.Board()
	needW, needH := MinScreenSize(b)
	if dst.Width() < needW || dst.Height() < needH {
		g.drawCenteredMessage(dst, 0, dst.Width(), "Screen too small",
			fmt.Sprintf("Need %dx%d", needW, needH))
		return
	}

	boardW := b.Width*cellWidth + 2
	ox := (dst.Width() - needW) / 2
	oy := (dst.Height() - needH) / 2
	dst.DrawBox(core.NewRect(ox, oy, boardW, needH), core.ColorGray)

	top := b.FirstVisibleRow()
	cell := func(gx, gy int, r rune, c core.Color) {
		sy := gy - top
		if sy < 0 || sy >= b.VisualHeight || gx < 0 || gx >= b.Width {
			return
		}
		x := ox + 1 + gx*cellWidth
		dst.SetColor(x, oy+1+sy, r, c)
		dst.SetColor(x+1, oy+1+sy, r, c)
	}

	// Locked blocks
	pieces := w.Pieces()
	for y := top; y < b.Rows(); y++ {
		for x, id := range b.Grid[y] {
			if id != 0 {
				cell(x, y, BlockChar, KindColor(pieces.Kind(id)))
			}
		}
	}

	// Ghost, then the falling piece over it
	if p, ok := w.ActivePiece(); ok {
		blocks := piece.Blocks(p.Kind, p.Rotation)
		if gy, ok := w.GhostY(); ok && gy != p.Y {
			for _, c := range blocks {
				cell(p.X+c.X, gy+c.Y, GhostChar, core.ColorGray)
			}
		}
		for _, c := range blocks {
			cell(p.X+c.X, p.Y+c.Y, BlockChar, KindColor(p.Kind))
		}
	}

	g.drawPanel(dst, ox+boardW+panelGap, oy)

	st := g.State()
	switch {
	case st.Won:
		g.drawCenteredMessage(dst, ox, boardW, "CLEAR!", "R restart  B menu")
	case st.GameOver:
		g.drawCenteredMessage(dst, ox, boardW, "GAME OVER", "R restart  B menu")
	case st.Paused:
		g.drawCenteredMessage(dst, ox, boardW, "PAUSED", "P to resume")
	}
}

// drawPanel draws hold, next queue and stats to the right of the well.
func (g *Game) drawPanel(dst *core.Screen, x, y int) {
	w := g.session.World()

	dst.DrawText(x, y, "HOLD")
	if h := w.Hold(); h.Kind != piece.None {
		color := KindColor(h.Kind)
		if h.Used {
			color = core.ColorGray
		}
		drawMini(dst, x, y+1, h.Kind, color)
	}

	y += 4
	dst.DrawText(x, y, "NEXT")
	for i, k := range w.Queue().Peek(nextPreview) {
		drawMini(dst, x, y+1+i*3, k, KindColor(k))
	}

	y += 1 + nextPreview*3 + 1
	score := w.Score()
	stats := []struct {
		label string
		value int
	}{
		{"SCORE", score.Score},
		{"LINES", score.Lines},
		{"LEVEL", score.Level},
	}
	for i, s := range stats {
		dst.DrawText(x, y+i*2, s.label)
		dst.DrawTextColor(x, y+i*2+1, fmt.Sprint(s.value), core.ColorBrightWhite)
	}
	y += len(stats) * 2

	mode := w.Mode()
	label := strings.ToUpper(string(w.Board().GravityMode))
	if mode.Type == sim.ModeB {
		label += fmt.Sprintf(" B %d", mode.LinesGoal)
	}
	dst.DrawTextColor(x, y, label, core.ColorGray)

	if g.chainTicks > 0 {
		dst.DrawTextColor(x, y+1, fmt.Sprintf("CHAIN x%d", g.chain), core.ColorBrightYellow)
	}
}

// drawMini draws a kind in its spawn rotation, two rows tall at most.
func drawMini(dst *core.Screen, x, y int, k piece.Kind, color core.Color) {
	blocks := piece.Blocks(k, 0)
	minY := blocks[0].Y
	for _, c := range blocks {
		minY = min(minY, c.Y)
	}
	for _, c := range blocks {
		dst.SetColor(x+c.X*cellWidth, y+c.Y-minY, BlockChar, color)
		dst.SetColor(x+c.X*cellWidth+1, y+c.Y-minY, BlockChar, color)
	}
}

// drawCenteredMessage draws a message box centered over the columns
// [x, x+width).
func (g *Game) drawCenteredMessage(dst *core.Screen, x, width int, title, subtitle string) {
	boxW := max(len(title), len(subtitle)) + 4
	box := core.NewRect(x, 0, width, dst.Height()).Centered(boxW, 5)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box, core.ColorBrightYellow)

	inner := box.Inset(1)
	dst.DrawText(inner.X+(inner.W-len(title))/2, inner.Y, title)
	dst.DrawText(inner.X+(inner.W-len(subtitle))/2, inner.Y+2, subtitle)
}
