package sim

import (
	"testing"

	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

func newTestWorld(t *testing.T, opts Options) *World {
	t.Helper()
	w, err := New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return w
}

// forceQueue replaces the upcoming kinds so a test controls what spawns.
func forceQueue(w *World, kinds ...piece.Kind) {
	q := append([]piece.Kind(nil), kinds...)
	for len(q) < MinQueueLen {
		q = append(q, piece.O)
	}
	w.Queue().Queue = q
}

// occupy writes a fresh instance of kind into each cell.
func occupy(w *World, kind piece.Kind, cells ...Point) PieceID {
	id := w.Pieces().Alloc(kind)
	for _, c := range cells {
		w.Board().Grid[c.Y][c.X] = id
	}
	return id
}

func fillRow(w *World, y int, kind piece.Kind, skip ...int) PieceID {
	var cells []Point
	for x := range w.Board().Width {
		skipped := false
		for _, s := range skip {
			if s == x {
				skipped = true
			}
		}
		if !skipped {
			cells = append(cells, Point{x, y})
		}
	}
	return occupy(w, kind, cells...)
}

func TestSpawnFromQueue(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 5
	w := newTestWorld(t, opts)

	first := NewRNG(5).Bag()[0]
	w.Tick()

	p, ok := w.ActivePiece()
	if !ok {
		t.Fatal("expected an active piece after the first tick")
	}
	if p.Kind != first {
		t.Errorf("spawned %v, expected %v", p.Kind, first)
	}
	if p.X != (10-piece.Width(first))/2 || p.Y != 2 || p.Rotation != 0 {
		t.Errorf("spawned at (%d,%d) rot %d", p.X, p.Y, p.Rotation)
	}
	if len(w.Queue().Queue) < MinQueueLen-1 {
		t.Errorf("queue length %d after spawn", len(w.Queue().Queue))
	}
	if w.Pieces().Kind(p.PieceID) != first {
		t.Error("active piece id not registered in the piece table")
	}
}

func TestHardDropGolden(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	w := newTestWorld(t, opts)
	forceQueue(w, piece.I, piece.I, piece.O)

	// I flat against the left wall, 20 rows down.
	w.Step(ActionLeft, ActionLeft, ActionLeft, ActionHardDrop)
	if got := w.Score().Score; got != 40 {
		t.Fatalf("first hard drop scored %d, expected 40 (20 rows)", got)
	}
	if !w.State().HardDropping {
		t.Fatal("hard drop should set hardDropping")
	}
	w.Step(ActionHardDropRelease)
	if _, ok := w.ActivePiece(); ok {
		t.Fatal("piece should lock on the release tick")
	}

	// I against the right wall, then O into the middle gap.
	w.Step(ActionRight, ActionRight, ActionRight, ActionHardDrop)
	w.Step(ActionHardDropRelease)
	w.Step(ActionHardDrop)
	w.Step(ActionHardDropRelease)

	// Three drops of 20 rows, then a single at level 1.
	if got := w.Score().Score; got != 3*40+100 {
		t.Errorf("score = %d, expected %d", got, 3*40+100)
	}
	if got := w.Score().Lines; got != 1 {
		t.Errorf("lines = %d, expected 1", got)
	}
	if got := w.Score().Level; got != 1 {
		t.Errorf("level = %d, expected 1", got)
	}

	// Only the top half of the O is left, shifted onto the floor.
	b := w.Board()
	want := make([][]piece.Kind, b.Rows())
	for y := range want {
		want[y] = make([]piece.Kind, b.Width)
	}
	want[b.Rows()-1][4] = piece.O
	want[b.Rows()-1][5] = piece.O
	got := w.kindGrid()
	for y := range want {
		for x := range want[y] {
			if got[y][x] != want[y][x] {
				t.Errorf("cell (%d,%d) = %v, expected %v", x, y, got[y][x], want[y][x])
			}
		}
	}
	if got := b.Occupied(); got != 2 {
		t.Errorf("occupied cells = %d, expected 2", got)
	}

	// A second run of the same stream lands on the same bytes.
	again := newTestWorld(t, opts)
	forceQueue(again, piece.I, piece.I, piece.O)
	again.Step(ActionLeft, ActionLeft, ActionLeft, ActionHardDrop)
	again.Step(ActionHardDropRelease)
	again.Step(ActionRight, ActionRight, ActionRight, ActionHardDrop)
	again.Step(ActionHardDropRelease)
	again.Step(ActionHardDrop)
	again.Step(ActionHardDropRelease)
	a, _ := w.MarshalSnapshot()
	c, _ := again.MarshalSnapshot()
	if string(a) != string(c) {
		t.Error("identical runs produced different snapshots")
	}
}

// Moves between the hard drop and its release slide the piece and drop it
// again, so it never locks in the air.
func TestHardDropWindowRedrops(t *testing.T) {
	t.Run("shift off a ledge", func(t *testing.T) {
		w := newTestWorld(t, DefaultOptions())
		forceQueue(w, piece.O)
		occupy(w, piece.Z, Point{4, 23}, Point{5, 23})

		w.Step(ActionHardDrop)
		p, _ := w.ActivePiece()
		if p.Y != 21 || w.Score().Score != 38 {
			t.Fatalf("after hard drop y=%d score=%d, expected 21 and 38", p.Y, w.Score().Score)
		}

		w.Step(ActionRight)
		if p, _ = w.ActivePiece(); p.X != 5 || p.Y != 21 {
			t.Fatalf("still on the ledge: (%d,%d), expected (5,21)", p.X, p.Y)
		}
		w.Step(ActionRight)
		if p, _ = w.ActivePiece(); p.X != 6 || p.Y != 22 {
			t.Errorf("past the ledge: (%d,%d), expected (6,22)", p.X, p.Y)
		}
		if w.Score().Score != 38 {
			t.Errorf("re-drop scored: %d", w.Score().Score)
		}

		w.Step(ActionHardDropRelease)
		for _, c := range []Point{{6, 22}, {7, 22}, {6, 23}, {7, 23}} {
			if w.Pieces().Kind(w.Board().Grid[c.Y][c.X]) != piece.O {
				t.Errorf("cell %v not locked as O", c)
			}
		}
	})

	t.Run("rotate back to flat", func(t *testing.T) {
		w := newTestWorld(t, DefaultOptions())
		forceQueue(w, piece.I)

		// Standing up needs the (0,-2) kick, lying down again re-drops a row.
		w.Step(ActionHardDrop, ActionRotateCW, ActionRotateCW)
		p, _ := w.ActivePiece()
		if p.Rotation != 2 || p.Y != 21 {
			t.Fatalf("rot %d y=%d, expected rot 2 at y=21", p.Rotation, p.Y)
		}

		w.Step(ActionHardDropRelease)
		b := w.Board()
		for x := 3; x <= 6; x++ {
			if b.Grid[23][x] == 0 || b.Grid[22][x] != 0 {
				t.Errorf("column %d: the I should lie on the floor row", x)
			}
		}
	})
}

func TestHardDropSeededStream(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	w := newTestWorld(t, opts)
	bag := NewRNG(42).Bag()

	for range 4 {
		w.Step(ActionHardDrop)
		w.Step(ActionHardDropRelease)
	}
	if got := w.Board().Occupied(); got != 16 {
		t.Errorf("occupied cells = %d, expected 16", got)
	}
	for id := PieceID(1); id <= 4; id++ {
		if got := w.Pieces().Kind(id); got != bag[id-1] {
			t.Errorf("piece %d is %v, expected %v", id, got, bag[id-1])
		}
	}
}

func TestHoldBeforeLock(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 11
	w := newTestWorld(t, opts)
	bag := NewRNG(11).Bag()

	w.Tick()
	w.Step(ActionHold)

	h := w.Hold()
	if h.Kind != bag[0] || !h.Used {
		t.Fatalf("hold = %+v, expected %v used", *h, bag[0])
	}
	if _, ok := w.ActivePiece(); ok {
		t.Fatal("holding into an empty slot removes the active piece")
	}
	if w.Board().Occupied() != 0 {
		t.Fatal("hold must not touch the grid")
	}

	w.Tick()
	p, ok := w.ActivePiece()
	if !ok || p.Kind != bag[1] {
		t.Fatalf("next spawn = %v, expected %v", p.Kind, bag[1])
	}
	if w.Hold().Used {
		t.Error("spawn should reset hold.used")
	}

	// Second hold swaps the stored piece back in at the spawn position.
	w.Step(ActionLeft, ActionRotateCW, ActionHold)
	p, _ = w.ActivePiece()
	if p.Kind != bag[0] || p.Rotation != 0 || p.X != w.Board().SpawnColumn(bag[0]) {
		t.Errorf("swapped piece = %+v", p)
	}
	if w.Hold().Kind != bag[1] {
		t.Errorf("hold = %v, expected %v", w.Hold().Kind, bag[1])
	}

	// Used until the next spawn.
	w.Step(ActionHold)
	if w.Hold().Kind != bag[1] {
		t.Error("a second hold before locking should be ignored")
	}
}

func TestLockDelay(t *testing.T) {
	opts := DefaultOptions()
	opts.LockDelay = 5
	w := newTestWorld(t, opts)
	forceQueue(w, piece.O)

	w.Step(ActionSoftDrop)
	for w.State().Phase != PhaseLocking {
		w.Tick()
		if w.Ticks() > 500 {
			t.Fatal("piece never grounded")
		}
	}

	for i := range opts.LockDelay {
		w.Tick()
		if _, ok := w.ActivePiece(); !ok {
			t.Fatalf("locked after %d ticks, expected %d", i+1, opts.LockDelay+1)
		}
	}
	w.Tick()
	if _, ok := w.ActivePiece(); ok {
		t.Fatal("grounded piece with no resets should lock")
	}
	if w.Board().Occupied() != 4 {
		t.Errorf("occupied = %d after lock", w.Board().Occupied())
	}
}

func TestLockResetsAreBounded(t *testing.T) {
	opts := DefaultOptions()
	opts.LockDelay = 3
	opts.MaxLockResets = 4
	w := newTestWorld(t, opts)
	forceQueue(w, piece.O)

	w.Step(ActionSoftDrop)
	for w.State().Phase != PhaseLocking {
		w.Tick()
	}

	dir := []Action{ActionLeft, ActionRight}
	for i := 0; ; i++ {
		if _, ok := w.ActivePiece(); !ok {
			break
		}
		if i > 100 {
			t.Fatal("piece never locked despite the reset cap")
		}
		w.Step(dir[i%2])
		if st := w.State(); st.LockResets > st.MaxLockResets {
			t.Fatalf("lockResets %d exceeds max %d", st.LockResets, st.MaxLockResets)
		}
	}
}

func TestSoftDropScoresPerRow(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	forceQueue(w, piece.T)

	w.Step(ActionSoftDrop)
	start, _ := w.ActivePiece()
	for range 30 {
		w.Tick()
	}
	p, _ := w.ActivePiece()
	if rows := p.Y - start.Y; rows != w.Score().Score {
		t.Errorf("moved %d rows, scored %d", rows, w.Score().Score)
	}
	if p.Y-start.Y != 10 {
		t.Errorf("soft drop moved %d rows in 30 ticks, expected 10", p.Y-start.Y)
	}
}

func TestRotationKicksOffWall(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	forceQueue(w, piece.I)
	w.Tick()

	// Vertical I against the left wall.
	w.Step(ActionRotateCW)
	for range 5 {
		w.Step(ActionLeft)
	}
	p, _ := w.ActivePiece()
	if p.Rotation != 1 || p.X != -2 {
		t.Fatalf("expected vertical I flush left, got %+v", p)
	}

	w.Step(ActionRotateCW)
	p, _ = w.ActivePiece()
	if p.Rotation != 2 {
		t.Fatalf("rotation should succeed with a kick, got %+v", p)
	}
	if w.Board().Collides(p.Kind, p.Rotation, p.X, p.Y) {
		t.Error("kicked piece overlaps")
	}
}

func TestNormalLineClear(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	forceQueue(w, piece.I)
	fillRow(w, 23, piece.Garbage, 3, 4, 5, 6)

	w.Step(ActionHardDrop)
	w.Step(ActionHardDropRelease)

	s := w.Score()
	if s.Lines != 1 {
		t.Fatalf("lines = %d, expected 1", s.Lines)
	}
	if s.Score != 40+100 {
		t.Errorf("score = %d, expected 140", s.Score)
	}
	if w.Board().Occupied() != 0 {
		t.Errorf("board should be empty, has %d cells", w.Board().Occupied())
	}
	if len(w.Pieces().Pieces) != 0 {
		t.Errorf("piece table should be reclaimed, has %v", w.Pieces().Pieces)
	}
}

func TestLevelProgression(t *testing.T) {
	tests := []struct {
		start, lines, want int
	}{
		{1, 9, 1},
		{1, 10, 2},
		{5, 25, 7},
		{0, 40, 0},
	}
	for _, tt := range tests {
		opts := DefaultOptions()
		opts.Mode.StartLevel = tt.start
		w := newTestWorld(t, opts)
		if w.Score().Level != tt.start {
			t.Fatalf("initial level %d, expected %d", w.Score().Level, tt.start)
		}
		w.Score().Lines = tt.lines - 1
		fillRow(w, 23, piece.Garbage)
		w.lineClear()
		if got := w.Score().Level; got != tt.want {
			t.Errorf("start %d after %d lines: level %d, expected %d", tt.start, tt.lines, got, tt.want)
		}
	}
}

func TestVictoryIsAbsorbing(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = GameMode{Type: ModeB, StartLevel: 1, LinesGoal: 1}
	w := newTestWorld(t, opts)
	forceQueue(w, piece.I)
	fillRow(w, 23, piece.Garbage, 3, 4, 5, 6)

	w.Step(ActionHardDrop)
	w.Step(ActionHardDropRelease)
	if w.State().Phase != PhaseVictory {
		t.Fatalf("phase = %s, expected victory", w.State().Phase)
	}

	before, _ := w.MarshalSnapshot()
	for range 10 {
		w.Step(ActionLeft, ActionHardDrop)
	}
	after, _ := w.MarshalSnapshot()
	if string(before) != string(after) {
		t.Error("ticks after victory must not change state")
	}
}

func TestGameOverOnBlockedSpawn(t *testing.T) {
	w := newTestWorld(t, DefaultOptions())
	forceQueue(w, piece.T)
	fillRow(w, 3, piece.Garbage, 0)

	w.Tick()
	if w.State().Phase != PhaseGameOver {
		t.Fatalf("phase = %s, expected gameover", w.State().Phase)
	}
	if _, ok := w.ActivePiece(); ok {
		t.Error("no piece should spawn into a collision")
	}

	w.Step(ActionLeft)
	if len(w.Input().Actions) != 0 {
		t.Error("actions are cleared even after gameover")
	}

	w.Restart(77)
	if w.State().Phase != PhasePlaying || w.Board().Occupied() != 0 || w.Seed() != 77 {
		t.Error("restart should reset every component")
	}
	w.Tick()
	if _, ok := w.ActivePiece(); !ok {
		t.Error("expected a piece after restart")
	}
}

func TestGarbageFill(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 3
	opts.Mode = GameMode{Type: ModeB, StartLevel: 1, GarbageHeight: 4}
	w := newTestWorld(t, opts)

	b := w.Board()
	if w.Mode().LinesGoal != DefaultLinesGoal {
		t.Errorf("lines goal = %d, expected %d", w.Mode().LinesGoal, DefaultLinesGoal)
	}
	if got := b.Occupied(); got != 4*(b.Width-1) {
		t.Errorf("occupied = %d, expected %d", got, 4*(b.Width-1))
	}
	for y := b.Rows() - 4; y < b.Rows(); y++ {
		var id PieceID
		for _, c := range b.Grid[y] {
			if c == 0 {
				continue
			}
			if id == 0 {
				id = c
			}
			if c != id {
				t.Errorf("row %d mixes ids %d and %d", y, id, c)
			}
		}
		if w.Pieces().Kind(id) != piece.Garbage {
			t.Errorf("row %d id %d is %v", y, id, w.Pieces().Kind(id))
		}
	}

	tests := []struct {
		sparsity, height, want int
	}{
		{1, 4, 4*(b.Width-1) - 4},
		{2, 6, 6*(b.Width-1) - 12},
		{20, 2, 0}, // more holes than blocks clears the garbage
	}
	for _, tt := range tests {
		opts.Mode.Sparsity = tt.sparsity
		opts.Mode.GarbageHeight = tt.height
		sparse := newTestWorld(t, opts)
		if got := sparse.Board().Occupied(); got != tt.want {
			t.Errorf("sparsity %d on %d rows: occupied = %d, expected %d", tt.sparsity, tt.height, got, tt.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Options)
	}{
		{"narrow", func(o *Options) { o.Width = 3 }},
		{"gravity", func(o *Options) { o.GravityMode = "sideways" }},
		{"mode", func(o *Options) { o.Mode.Type = "c" }},
		{"level", func(o *Options) { o.Mode.StartLevel = -1 }},
		{"sparsity", func(o *Options) { o.Mode.Sparsity = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mut(&o)
			if _, err := New(o); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
