package sim

import (
	"fmt"

	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

// Point is a grid coordinate.
type Point struct {
	X, Y int
}

func newGrid(rows, width int) [][]PieceID {
	grid := make([][]PieceID, rows)
	for y := range grid {
		grid[y] = make([]PieceID, width)
	}
	return grid
}

// Rows is the total number of grid rows including the hidden buffer.
func (b *Board) Rows() int {
	return b.Height + b.BufferHeight
}

// InBounds reports whether (x, y) addresses a grid cell.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Rows()
}

// At returns the instance id at (x, y). Out-of-range access panics.
func (b *Board) At(x, y int) PieceID {
	if !b.InBounds(x, y) {
		panic(fmt.Sprintf("sim: cell (%d,%d) outside %dx%d board", x, y, b.Width, b.Rows()))
	}
	return b.Grid[y][x]
}

// Collides reports whether kind at rot placed at (x, y) hits a wall, the
// floor or an occupied cell. Cells above the grid (y < 0) are always free.
func (b *Board) Collides(kind piece.Kind, rot, x, y int) bool {
	rows := b.Rows()
	for _, c := range piece.Blocks(kind, rot) {
		gx, gy := x+c.X, y+c.Y
		if gx < 0 || gx >= b.Width {
			return true
		}
		if gy >= rows {
			return true
		}
		if gy >= 0 && b.Grid[gy][gx] != 0 {
			return true
		}
	}
	return false
}

// CanMove is the negation of Collides.
func (b *Board) CanMove(kind piece.Kind, rot, x, y int) bool {
	return !b.Collides(kind, rot, x, y)
}

// SpawnRow is the bounding-box row new pieces appear at.
func (b *Board) SpawnRow() int {
	return b.BufferHeight + max(0, b.Height-b.VisualHeight) - 2
}

// SpawnColumn centers kind horizontally.
func (b *Board) SpawnColumn(kind piece.Kind) int {
	return (b.Width - piece.Width(kind)) / 2
}

// FirstVisibleRow is the grid row rendered at the top of the well.
func (b *Board) FirstVisibleRow() int {
	return b.Rows() - b.VisualHeight
}

func (b *Board) rowFull(y int) bool {
	for _, id := range b.Grid[y] {
		if id == 0 {
			return false
		}
	}
	return true
}

// FullRows lists fully occupied rows, bottom to top.
func (b *Board) FullRows() []int {
	var rows []int
	for y := b.Rows() - 1; y >= 0; y-- {
		if b.rowFull(y) {
			rows = append(rows, y)
		}
	}
	return rows
}

// Occupied counts non-empty cells.
func (b *Board) Occupied() int {
	n := 0
	for _, row := range b.Grid {
		for _, id := range row {
			if id != 0 {
				n++
			}
		}
	}
	return n
}

// CloneGrid returns a deep copy of the grid.
func (b *Board) CloneGrid() [][]PieceID {
	out := make([][]PieceID, len(b.Grid))
	for y, row := range b.Grid {
		out[y] = append([]PieceID(nil), row...)
	}
	return out
}

// clearRowsShift removes full rows and unshifts empty ones, re-checking the
// same index after each shift. Returns the number of rows removed.
func (b *Board) clearRowsShift() int {
	cleared := 0
	for y := b.Rows() - 1; y >= 0; {
		if !b.rowFull(y) {
			y--
			continue
		}
		copy(b.Grid[1:y+1], b.Grid[:y])
		b.Grid[0] = make([]PieceID, b.Width)
		cleared++
	}
	if cleared > 0 {
		b.GridVersion++
	}
	return cleared
}

// pieceCells returns the absolute cells of a placed piece.
func pieceCells(kind piece.Kind, rot, x, y int) []Point {
	blocks := piece.Blocks(kind, rot)
	out := make([]Point, len(blocks))
	for i, c := range blocks {
		out[i] = Point{X: x + c.X, Y: y + c.Y}
	}
	return out
}
