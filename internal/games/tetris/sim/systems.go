package sim

import (
	"github.com/vovakirdan/blockfall/internal/ecs"
	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

// Kicks are tried in order when rotating; the first free offset wins.
var Kicks = []Point{
	{0, 0},
	{-1, 0}, {1, 0}, {-2, 0}, {2, 0},
	{0, -1}, {0, -2},
}

// HardDropPoints and SoftDropPoints are awarded per row descended.
const (
	HardDropPoints = 2
	SoftDropPoints = 1
)

// spawn pops the next kind and creates the piece entity.
func (w *World) spawn() {
	st := w.State()
	if st.Phase.Terminal() {
		return
	}
	if _, _, _, ok := w.Active(); ok {
		return
	}

	q := w.Queue()
	q.Refill()
	kind := q.Pop()
	w.Hold().Used = false

	b := w.Board()
	x, y := b.SpawnColumn(kind), b.SpawnRow()
	if b.Collides(kind, 0, x, y) {
		st.Phase = PhaseGameOver
		return
	}

	w.placeActive(kind, w.Pieces().Alloc(kind), x, y)
	st.Phase = PhasePlaying
	st.LockTimer = 0
	st.LockResets = 0
}

func (w *World) placeActive(kind piece.Kind, id PieceID, x, y int) {
	e := w.store.Create()
	w.actives.Attach(e, ActivePiece{Kind: kind, X: x, Y: y, PieceID: id})
	w.drops.Attach(e, Drop{Interval: w.rules.DropInterval(w.Score().Level)})
}

// movement drains the tick's tokens in order. The list is always cleared.
func (w *World) movement() {
	in := w.Input()
	actions := in.Actions
	in.Actions = nil

	st := w.State()
	if st.Phase.Terminal() {
		return
	}

	for _, a := range actions {
		if a == ActionShake {
			if w.shakeAllowed() {
				in.Shake = true
			}
			continue
		}

		e, p, d, ok := w.Active()
		if !ok {
			continue
		}

		switch a {
		case ActionLeft:
			w.shift(p, -1)
		case ActionRight:
			w.shift(p, 1)
		case ActionSoftDrop:
			d.SoftDrop = true
		case ActionSoftDropRelease:
			d.SoftDrop = false
		case ActionRotateCW:
			w.rotate(p, 1)
		case ActionRotateCCW:
			w.rotate(p, -1)
		case ActionHardDrop:
			rows := w.dropToFloor(p)
			w.Score().Score += HardDropPoints * rows
			st.HardDropping = true
		case ActionHardDropRelease:
			if st.HardDropping {
				st.HardDropping = false
				st.Phase = PhaseLockNow
			}
		case ActionHold:
			w.hold(e, p, d)
		}
	}
}

func (w *World) shakeAllowed() bool {
	return w.Mode().ManualShake && w.Board().GravityMode != GravityNormal
}

// dropToFloor moves p straight down until blocked and returns the rows moved.
func (w *World) dropToFloor(p *ActivePiece) int {
	b := w.Board()
	rows := 0
	for b.CanMove(p.Kind, p.Rotation, p.X, p.Y+1) {
		p.Y++
		rows++
	}
	return rows
}

func (w *World) shift(p *ActivePiece, dx int) {
	if !w.Board().CanMove(p.Kind, p.Rotation, p.X+dx, p.Y) {
		return
	}
	p.X += dx
	if w.State().HardDropping {
		w.dropToFloor(p)
		return
	}
	w.resetLock()
}

func (w *World) rotate(p *ActivePiece, dir int) {
	b := w.Board()
	rot := piece.NormalizeRotation(p.Rotation + dir)
	for _, k := range Kicks {
		if b.Collides(p.Kind, rot, p.X+k.X, p.Y+k.Y) {
			continue
		}
		p.X += k.X
		p.Y += k.Y
		p.Rotation = rot
		if w.State().HardDropping {
			w.dropToFloor(p)
			return
		}
		w.resetLock()
		return
	}
}

// resetLock restarts the lock timer while locking, up to MaxLockResets times.
func (w *World) resetLock() {
	st := w.State()
	if st.Phase == PhaseLocking && st.LockResets < st.MaxLockResets {
		st.LockTimer = 0
		st.LockResets++
	}
}

// hold stores the active piece, or swaps it with the stored one.
func (w *World) hold(e ecs.EntityID, p *ActivePiece, d *Drop) {
	h := w.Hold()
	if h.Used {
		return
	}

	st := w.State()
	st.Phase = PhasePlaying
	st.LockTimer = 0
	st.LockResets = 0
	st.HardDropping = false
	h.Used = true

	if h.Kind == piece.None {
		h.Kind, h.PieceID = p.Kind, p.PieceID
		w.store.Destroy(e)
		return
	}

	b := w.Board()
	h.Kind, p.Kind = p.Kind, h.Kind
	h.PieceID, p.PieceID = p.PieceID, h.PieceID
	p.X, p.Y, p.Rotation = b.SpawnColumn(p.Kind), b.SpawnRow(), 0
	d.Timer = 0
	if b.Collides(p.Kind, 0, p.X, p.Y) {
		st.Phase = PhaseGameOver
	}
}

// gravity advances the drop timer and moves the piece down.
func (w *World) gravity() {
	st := w.State()
	if st.Phase.Terminal() || st.Phase == PhaseLockNow || st.HardDropping {
		return
	}
	_, p, d, ok := w.Active()
	if !ok {
		return
	}

	interval := d.Interval
	if d.SoftDrop {
		interval = min(interval, w.rules.SoftDropInterval)
	}
	interval = max(interval, 1)

	b := w.Board()
	d.Timer++
	for d.Timer >= interval {
		d.Timer -= interval
		if !b.CanMove(p.Kind, p.Rotation, p.X, p.Y+1) {
			d.Timer = 0
			break
		}
		p.Y++
		if d.SoftDrop {
			w.Score().Score += SoftDropPoints
		}
	}
}

// lock runs the playing/locking state machine and commits grounded pieces.
func (w *World) lock() {
	st := w.State()
	if st.Phase.Terminal() {
		return
	}
	e, p, _, ok := w.Active()
	if !ok {
		return
	}

	b := w.Board()
	grounded := !b.CanMove(p.Kind, p.Rotation, p.X, p.Y+1)

	if st.Phase == PhaseLockNow || (st.Phase == PhaseLocking && grounded && st.LockTimer >= st.LockDelay) {
		for _, c := range pieceCells(p.Kind, p.Rotation, p.X, p.Y) {
			if b.InBounds(c.X, c.Y) {
				b.Grid[c.Y][c.X] = p.PieceID
			}
		}
		b.GridVersion++
		w.store.Destroy(e)
		st.Phase = PhasePlaying
		st.LockTimer = 0
		st.LockResets = 0
		st.HardDropping = false
		return
	}

	if st.HardDropping {
		return
	}

	switch {
	case grounded && st.Phase == PhaseLocking:
		st.LockTimer++
	case grounded && st.Phase == PhasePlaying:
		st.Phase = PhaseLocking
		st.LockTimer = 0
	case !grounded && st.Phase == PhaseLocking:
		st.Phase = PhasePlaying
		st.LockTimer = 0
		st.LockResets = 0
	}
}
