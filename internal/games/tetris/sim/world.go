// Package sim is the deterministic falling-block simulation.
//
// A World owns an ecs.Store with one board entity (Board, Score, GameState,
// NextQueue, HoldPiece, PieceTable, GameMode, Input) and at most one piece
// entity (ActivePiece, Drop). Tick runs the systems in a fixed order:
// spawn, movement, gravity, lock, line clear. Nothing in the package reads
// the clock or a global random source, so the same seed and the same action
// stream always produce the same state.
package sim

import (
	"fmt"

	"github.com/vovakirdan/blockfall/internal/ecs"
)

// Rules are tuning values that are not part of the saved state.
type Rules struct {
	DropBase         int // interval at level 1, in ticks
	DropStep         int // ticks removed per level
	DropMin          int // fastest interval
	SoftDropInterval int // effective interval cap while soft dropping
}

// DefaultRules match a 60 Hz tick.
func DefaultRules() Rules {
	return Rules{DropBase: 63, DropStep: 5, DropMin: 3, SoftDropInterval: 3}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.DropBase <= 0 {
		r.DropBase = d.DropBase
	}
	if r.DropStep < 0 {
		r.DropStep = d.DropStep
	}
	if r.DropMin <= 0 {
		r.DropMin = d.DropMin
	}
	if r.SoftDropInterval <= 0 {
		r.SoftDropInterval = d.SoftDropInterval
	}
	return r
}

// DropInterval is the auto-fall interval for level.
func (r Rules) DropInterval(level int) int {
	return max(r.DropMin, r.DropBase-(level-1)*r.DropStep)
}

// Options configure a new World.
type Options struct {
	Seed          int64
	Width         int
	Height        int
	BufferHeight  int
	VisualHeight  int
	GravityMode   GravityMode
	Mode          GameMode
	LockDelay     int
	MaxLockResets int
	Rules         Rules
}

// DefaultOptions is a 10x20 normal-gravity mode A game starting at level 1.
func DefaultOptions() Options {
	return Options{
		Width:         10,
		Height:        20,
		BufferHeight:  4,
		VisualHeight:  20,
		GravityMode:   GravityNormal,
		Mode:          GameMode{Type: ModeA, StartLevel: 1},
		LockDelay:     30,
		MaxLockResets: 15,
		Rules:         DefaultRules(),
	}
}

// DefaultLinesGoal applies to mode B when no goal is given.
const DefaultLinesGoal = 25

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.BufferHeight <= 0 {
		o.BufferHeight = d.BufferHeight
	}
	if o.VisualHeight <= 0 || o.VisualHeight > o.Height {
		o.VisualHeight = o.Height
	}
	if o.GravityMode == "" {
		o.GravityMode = d.GravityMode
	}
	if o.Mode.Type == "" {
		o.Mode.Type = ModeA
	}
	if o.Mode.Type == ModeB && o.Mode.LinesGoal == 0 {
		o.Mode.LinesGoal = DefaultLinesGoal
	}
	if o.LockDelay <= 0 {
		o.LockDelay = d.LockDelay
	}
	if o.MaxLockResets <= 0 {
		o.MaxLockResets = d.MaxLockResets
	}
	o.Rules = o.Rules.withDefaults()
	return o
}

// Validate rejects options no board can be built from.
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.Width < 4 {
		return fmt.Errorf("sim: board width %d is narrower than a piece", o.Width)
	}
	if !o.GravityMode.Valid() {
		return fmt.Errorf("sim: unknown gravity mode %q", o.GravityMode)
	}
	if o.Mode.Type != ModeA && o.Mode.Type != ModeB {
		return fmt.Errorf("sim: unknown game mode %q", o.Mode.Type)
	}
	if o.Mode.StartLevel < 0 {
		return fmt.Errorf("sim: negative start level %d", o.Mode.StartLevel)
	}
	if o.Mode.Sparsity < 0 {
		return fmt.Errorf("sim: negative sparsity %d", o.Mode.Sparsity)
	}
	return nil
}

// World is the simulation state plus its systems.
type World struct {
	store *ecs.Store

	boards      *ecs.Table[Board]
	scores      *ecs.Table[Score]
	states      *ecs.Table[GameState]
	queues      *ecs.Table[NextQueue]
	holds       *ecs.Table[HoldPiece]
	pieceTables *ecs.Table[PieceTable]
	modes       *ecs.Table[GameMode]
	inputs      *ecs.Table[Input]
	actives     *ecs.Table[ActivePiece]
	drops       *ecs.Table[Drop]

	boardID ecs.EntityID
	seed    int64
	rules   Rules
	ticks   uint64

	animations []CascadeStep
}

func newWorld(rules Rules) *World {
	s := ecs.NewStore()
	return &World{
		store:       s,
		boards:      ecs.NewTable[Board](s, CompBoard),
		scores:      ecs.NewTable[Score](s, CompScore),
		states:      ecs.NewTable[GameState](s, CompGameState),
		queues:      ecs.NewTable[NextQueue](s, CompNextQueue),
		holds:       ecs.NewTable[HoldPiece](s, CompHoldPiece),
		pieceTables: ecs.NewTable[PieceTable](s, CompPieceTable),
		modes:       ecs.NewTable[GameMode](s, CompGameMode),
		inputs:      ecs.NewTable[Input](s, CompInput),
		actives:     ecs.NewTable[ActivePiece](s, CompActivePiece),
		drops:       ecs.NewTable[Drop](s, CompDrop),
		rules:       rules.withDefaults(),
	}
}

// New builds a world ready for its first tick.
func New(opts Options) (*World, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	w := newWorld(opts.Rules)
	w.populate(opts)
	return w, nil
}

// populate creates the board entity and applies mode B garbage.
func (w *World) populate(opts Options) {
	w.seed = opts.Seed
	w.animations = nil

	id := w.store.Create()
	w.boardID = id
	w.boards.Attach(id, Board{
		Width:        opts.Width,
		Height:       opts.Height,
		BufferHeight: opts.BufferHeight,
		VisualHeight: opts.VisualHeight,
		Grid:         newGrid(opts.Height+opts.BufferHeight, opts.Width),
		GravityMode:  opts.GravityMode,
	})
	w.scores.Attach(id, Score{Level: opts.Mode.StartLevel})
	w.states.Attach(id, GameState{
		Phase:         PhasePlaying,
		LockDelay:     opts.LockDelay,
		MaxLockResets: opts.MaxLockResets,
	})
	w.queues.Attach(id, NextQueue{RNG: NewRNG(opts.Seed)})
	w.holds.Attach(id, HoldPiece{})
	w.pieceTables.Attach(id, NewPieceTable())
	w.modes.Attach(id, opts.Mode)
	w.inputs.Attach(id, Input{})

	w.fillGarbage()
}

// options reconstructs the options the current world was built with.
func (w *World) options(seed int64) Options {
	b, st, mode := w.Board(), w.State(), w.Mode()
	return Options{
		Seed:          seed,
		Width:         b.Width,
		Height:        b.Height,
		BufferHeight:  b.BufferHeight,
		VisualHeight:  b.VisualHeight,
		GravityMode:   b.GravityMode,
		Mode:          *mode,
		LockDelay:     st.LockDelay,
		MaxLockResets: st.MaxLockResets,
		Rules:         w.rules,
	}
}

// Options returns the resolved options the current game was built with.
func (w *World) Options() Options { return w.options(w.seed) }

// Restart discards all state and starts over with seed, keeping the
// board size, gravity mode, game mode and timing.
func (w *World) Restart(seed int64) {
	opts := w.options(seed)
	w.store.DestroyAll()
	w.ticks = 0
	w.populate(opts)
}

// Tick advances the simulation by one step.
func (w *World) Tick() {
	w.spawn()
	w.movement()
	w.gravity()
	w.lock()
	w.lineClear()
	w.ticks++
}

// Step queues actions and ticks once.
func (w *World) Step(actions ...Action) {
	w.PushActions(actions...)
	w.Tick()
}

// PushActions appends tokens to the current tick's input.
func (w *World) PushActions(actions ...Action) {
	in := w.Input()
	in.Actions = append(in.Actions, actions...)
}

// PendingActions returns the tokens queued for the next tick.
func (w *World) PendingActions() []Action {
	return append([]Action(nil), w.Input().Actions...)
}

// Seed returns the seed the world was started with.
func (w *World) Seed() int64 { return w.seed }

// Rules returns the tuning values.
func (w *World) Rules() Rules { return w.rules }

// Ticks counts ticks since creation or the last restart.
func (w *World) Ticks() uint64 { return w.ticks }

// Store exposes the underlying entity store for read-only inspection.
func (w *World) Store() *ecs.Store { return w.store }

// Board returns the playfield.
func (w *World) Board() *Board {
	b, _ := w.boards.Get(w.boardID)
	return b
}

// Score returns the score component.
func (w *World) Score() *Score {
	s, _ := w.scores.Get(w.boardID)
	return s
}

// State returns the lock state machine.
func (w *World) State() *GameState {
	s, _ := w.states.Get(w.boardID)
	return s
}

// Queue returns the next-piece queue.
func (w *World) Queue() *NextQueue {
	q, _ := w.queues.Get(w.boardID)
	return q
}

// Hold returns the hold slot.
func (w *World) Hold() *HoldPiece {
	h, _ := w.holds.Get(w.boardID)
	return h
}

// Pieces returns the piece table.
func (w *World) Pieces() *PieceTable {
	t, _ := w.pieceTables.Get(w.boardID)
	return t
}

// Mode returns the game mode settings.
func (w *World) Mode() *GameMode {
	m, _ := w.modes.Get(w.boardID)
	return m
}

// Input returns the pending input.
func (w *World) Input() *Input {
	in, _ := w.inputs.Get(w.boardID)
	return in
}

// Active returns the falling piece entity, if any.
func (w *World) Active() (ecs.EntityID, *ActivePiece, *Drop, bool) {
	ids := w.store.Query(w.actives.ID(), w.drops.ID())
	if len(ids) == 0 {
		return 0, nil, nil, false
	}
	e := ids[0]
	p, _ := w.actives.Get(e)
	d, _ := w.drops.Get(e)
	return e, p, d, true
}

// ActivePiece returns a copy of the falling piece.
func (w *World) ActivePiece() (ActivePiece, bool) {
	_, p, _, ok := w.Active()
	if !ok {
		return ActivePiece{}, false
	}
	return *p, true
}

// GhostY is the row the active piece would hard drop to.
func (w *World) GhostY() (int, bool) {
	_, p, _, ok := w.Active()
	if !ok {
		return 0, false
	}
	b := w.Board()
	y := p.Y
	for b.CanMove(p.Kind, p.Rotation, p.X, y+1) {
		y++
	}
	return y, true
}

// Animations returns the cascade steps recorded by the latest line clear.
// They are for display only and are not saved in snapshots.
func (w *World) Animations() []CascadeStep {
	return w.animations
}

// reclaim frees piece ids no longer referenced by the grid, the hold slot or
// the active piece.
func (w *World) reclaim() []PieceID {
	live := make(map[PieceID]bool)
	for _, row := range w.Board().Grid {
		for _, id := range row {
			if id != 0 {
				live[id] = true
			}
		}
	}
	if h := w.Hold(); h.Kind != 0 {
		live[h.PieceID] = true
	}
	if p, ok := w.ActivePiece(); ok {
		live[p.PieceID] = true
	}
	return w.Pieces().Reclaim(func(id PieceID) bool { return live[id] })
}
