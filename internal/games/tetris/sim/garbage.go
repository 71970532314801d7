package sim

import "github.com/vovakirdan/blockfall/internal/games/tetris/piece"

// fillGarbage fills the bottom rows for mode B. Each row is one garbage
// instance with a single random gap; sparsity then knocks that many further
// holes per row, picked anywhere in the garbage.
// Draws come from the queue's generator before the first bag.
func (w *World) fillGarbage() {
	mode := w.Mode()
	if mode.Type != ModeB || mode.GarbageHeight <= 0 {
		return
	}

	b, t, rng := w.Board(), w.Pieces(), w.Queue().RNG
	height := min(mode.GarbageHeight, b.Height)
	rows := b.Rows()

	var filled []Point
	for i := range height {
		y := rows - 1 - i
		id := t.Alloc(piece.Garbage)
		gap := rng.IntN(b.Width)
		for x := range b.Width {
			if x == gap {
				continue
			}
			b.Grid[y][x] = id
			filled = append(filled, Point{x, y})
		}
	}

	if remove := min(mode.Sparsity*height, len(filled)); remove > 0 {
		for i := len(filled) - 1; i > 0; i-- {
			j := rng.IntN(i + 1)
			filled[i], filled[j] = filled[j], filled[i]
		}
		for _, p := range filled[:remove] {
			b.Grid[p.Y][p.X] = 0
		}
	}

	b.GridVersion++
	w.reclaim()
}
