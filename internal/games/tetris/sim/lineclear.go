package sim

import (
	"slices"

	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

// LinePoints is the base award for clearing 0..4 rows at once, times level.
var LinePoints = [5]int{0, 100, 300, 500, 800}

func linePoints(rows int) int {
	return LinePoints[min(rows, len(LinePoints)-1)]
}

// CascadeStep is one clear-then-settle iteration, kept for rendering.
type CascadeStep struct {
	Before  [][]piece.Kind // grid before the rows were cleared
	Cleared []int          // cleared row indices, bottom to top
	After   [][]piece.Kind // grid once everything stopped falling
	Falls   []CellFall     // how far each moved cell fell
}

// CellFall records the final position of a moved cell and its fall distance.
type CellFall struct {
	X, Y     int
	Distance int
}

// lineClear clears rows once no piece is falling, or settles the board on a
// manual shake.
func (w *World) lineClear() {
	st := w.State()
	if st.Phase.Terminal() {
		return
	}

	in := w.Input()
	shake := in.Shake
	in.Shake = false

	active, hasActive := w.ActivePiece()
	if hasActive && !shake {
		return
	}

	b := w.Board()
	score := w.Score()
	level := score.Level

	var lines int
	if b.GravityMode == GravityNormal {
		if hasActive {
			return
		}
		lines = b.clearRowsShift()
		score.Score += linePoints(lines) * level
	} else {
		var obstacles map[Point]bool
		if hasActive {
			obstacles = make(map[Point]bool, 4)
			for _, c := range pieceCells(active.Kind, active.Rotation, active.X, active.Y) {
				obstacles[c] = true
			}
		}
		lines = w.cascade(shake, obstacles)
	}

	if lines == 0 && !shake {
		return
	}

	mode := w.Mode()
	score.Lines += lines
	if mode.StartLevel > 0 {
		score.Level = score.Lines/10 + mode.StartLevel
	}
	w.reclaim()

	if mode.LinesGoal > 0 && score.Lines >= mode.LinesGoal {
		st.Phase = PhaseVictory
	}
}

// cascade alternates clearing full rows and settling until no row is full.
// With force set the first settle runs even without a clear.
func (w *World) cascade(force bool, obstacles map[Point]bool) int {
	b := w.Board()
	score := w.Score()
	level := score.Level
	w.animations = nil

	total := 0
	for iter := 0; iter <= b.Rows(); iter++ {
		full := b.FullRows()
		if len(full) == 0 && !(force && iter == 0) {
			break
		}

		before := w.kindGrid()
		for _, y := range full {
			clear(b.Grid[y])
		}
		if len(full) > 0 {
			b.GridVersion++
			score.Score += linePoints(len(full)) * level
			total += len(full)
		}

		if b.GravityMode == GravitySticky {
			w.mergeSameKind()
		}
		falls := w.settle(obstacles)

		w.animations = append(w.animations, CascadeStep{
			Before:  before,
			Cleared: full,
			After:   w.kindGrid(),
			Falls:   falls,
		})
	}
	return total
}

// kindGrid maps the grid through the piece table.
func (w *World) kindGrid() [][]piece.Kind {
	b, t := w.Board(), w.Pieces()
	out := make([][]piece.Kind, len(b.Grid))
	for y, row := range b.Grid {
		out[y] = make([]piece.Kind, len(row))
		for x, id := range row {
			if id != 0 {
				out[y][x] = t.Kind(id)
			}
		}
	}
	return out
}

var neighbors = [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// flood collects the 4-connected cells reachable from start for which match
// returns true, marking them in seen.
func (b *Board) flood(start Point, seen [][]bool, match func(Point) bool) []Point {
	cells := []Point{start}
	seen[start.Y][start.X] = true
	for i := 0; i < len(cells); i++ {
		c := cells[i]
		for _, n := range neighbors {
			p := Point{c.X + n.X, c.Y + n.Y}
			if !b.InBounds(p.X, p.Y) || seen[p.Y][p.X] || !match(p) {
				continue
			}
			seen[p.Y][p.X] = true
			cells = append(cells, p)
		}
	}
	return cells
}

func (b *Board) newSeen() [][]bool {
	seen := make([][]bool, b.Rows())
	for y := range seen {
		seen[y] = make([]bool, b.Width)
	}
	return seen
}

// mergeSameKind gives every 4-connected group of same-kind cells the
// smallest id in the group. Garbage is left alone.
func (w *World) mergeSameKind() bool {
	b, t := w.Board(), w.Pieces()
	seen := b.newSeen()
	changed := false

	for y := range b.Grid {
		for x, id := range b.Grid[y] {
			if id == 0 || seen[y][x] {
				continue
			}
			kind := t.Kind(id)
			if kind == piece.Garbage {
				seen[y][x] = true
				continue
			}
			group := b.flood(Point{x, y}, seen, func(p Point) bool {
				other := b.Grid[p.Y][p.X]
				return other != 0 && t.Kind(other) == kind
			})
			keep := id
			for _, c := range group {
				keep = min(keep, b.Grid[c.Y][c.X])
			}
			for _, c := range group {
				if b.Grid[c.Y][c.X] != keep {
					b.Grid[c.Y][c.X] = keep
					changed = true
				}
			}
		}
	}
	if changed {
		b.GridVersion++
	}
	return changed
}

type component struct {
	id      PieceID
	cells   []Point
	garbage bool
}

// components splits the grid into 4-connected groups sharing an instance id.
// index[y][x] is the group of each cell, or -1.
func (w *World) components() ([]component, [][]int) {
	b, t := w.Board(), w.Pieces()
	seen := b.newSeen()
	index := make([][]int, b.Rows())
	for y := range index {
		index[y] = make([]int, b.Width)
		for x := range index[y] {
			index[y][x] = -1
		}
	}

	var comps []component
	for y := range b.Grid {
		for x, id := range b.Grid[y] {
			if id == 0 || seen[y][x] {
				continue
			}
			cells := b.flood(Point{x, y}, seen, func(p Point) bool {
				return b.Grid[p.Y][p.X] == id
			})
			for _, c := range cells {
				index[c.Y][c.X] = len(comps)
			}
			comps = append(comps, component{id: id, cells: cells, garbage: t.Kind(id) == piece.Garbage})
		}
	}
	return comps, index
}

// settle drops unsupported groups until everything rests on the floor,
// garbage, an obstacle, or another supported group.
func (w *World) settle(obstacles map[Point]bool) []CellFall {
	b := w.Board()
	rows := b.Rows()
	fallen := make(map[Point]int)

	for range rows * b.Width {
		comps, index := w.components()
		if len(comps) == 0 {
			break
		}

		// rests[i] lists the groups directly under group i.
		rests := make([][]int, len(comps))
		supported := make([]bool, len(comps))
		for i, c := range comps {
			if c.garbage {
				supported[i] = true
			}
			for _, p := range c.cells {
				below := Point{p.X, p.Y + 1}
				switch {
				case below.Y >= rows || obstacles[below]:
					supported[i] = true
				case index[below.Y][below.X] >= 0 && index[below.Y][below.X] != i:
					rests[i] = append(rests[i], index[below.Y][below.X])
				}
			}
		}

		for changed := true; changed; {
			changed = false
			for i := range comps {
				if supported[i] {
					continue
				}
				for _, j := range rests[i] {
					if supported[j] {
						supported[i] = true
						changed = true
						break
					}
				}
			}
		}

		islands := unsupportedIslands(rests, supported)
		if len(islands) == 0 {
			break
		}

		type move struct {
			from, to Point
			id       PieceID
		}
		var moves []move
		for _, island := range islands {
			member := make(map[int]bool, len(island))
			for _, i := range island {
				member[i] = true
			}
			dist := rows
			for _, i := range island {
				for _, p := range comps[i].cells {
					d := 0
					for y := p.Y + 1; y < rows; y++ {
						q := Point{p.X, y}
						if obstacles[q] {
							break
						}
						if g := index[y][p.X]; g >= 0 && !member[g] {
							break
						}
						d++
					}
					dist = min(dist, d)
				}
			}
			if dist == 0 {
				continue
			}
			for _, i := range island {
				for _, p := range comps[i].cells {
					moves = append(moves, move{from: p, to: Point{p.X, p.Y + dist}, id: comps[i].id})
				}
			}
		}
		if len(moves) == 0 {
			break
		}

		carried := make([]int, len(moves))
		for i, m := range moves {
			carried[i] = fallen[m.from]
			delete(fallen, m.from)
			b.Grid[m.from.Y][m.from.X] = 0
		}
		for i, m := range moves {
			b.Grid[m.to.Y][m.to.X] = m.id
			fallen[m.to] = carried[i] + (m.to.Y - m.from.Y)
		}
		b.GridVersion++
	}

	falls := make([]CellFall, 0, len(fallen))
	for p, d := range fallen {
		if b.Grid[p.Y][p.X] != 0 {
			falls = append(falls, CellFall{X: p.X, Y: p.Y, Distance: d})
		}
	}
	slices.SortFunc(falls, func(a, c CellFall) int {
		if a.Y != c.Y {
			return a.Y - c.Y
		}
		return a.X - c.X
	})
	return falls
}

// unsupportedIslands groups unsupported components that rest on each other.
func unsupportedIslands(rests [][]int, supported []bool) [][]int {
	adj := make([][]int, len(rests))
	for i, under := range rests {
		if supported[i] {
			continue
		}
		for _, j := range under {
			if !supported[j] {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	seen := make([]bool, len(rests))
	var islands [][]int
	for i := range rests {
		if supported[i] || seen[i] {
			continue
		}
		island := []int{i}
		seen[i] = true
		for k := 0; k < len(island); k++ {
			for _, j := range adj[island[k]] {
				if !seen[j] {
					seen[j] = true
					island = append(island, j)
				}
			}
		}
		islands = append(islands, island)
	}
	return islands
}
