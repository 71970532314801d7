package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vovakirdan/blockfall/internal/ecs"
	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

// CellAlphabet encodes instance id n as CellAlphabet[n]; ' ' is an empty cell.
const CellAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const emptyCell = ' '

var (
	// ErrInvalidSnapshot wraps every import validation failure.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrCellAlphabet is returned when an instance id has no cell character.
	ErrCellAlphabet = errors.New("instance id outside cell alphabet")
)

// Snapshot is the serializable form of a World.
type Snapshot struct {
	Seed         int64                           `json:"seed"`
	NextEntityID ecs.EntityID                    `json:"nextEntityId"`
	Entities     map[ecs.EntityID]EntitySnapshot `json:"entities"`
}

// EntitySnapshot holds whichever components an entity has.
type EntitySnapshot struct {
	Board       *BoardSnapshot `json:"Board,omitempty"`
	Score       *Score         `json:"Score,omitempty"`
	GameState   *GameState     `json:"GameState,omitempty"`
	NextQueue   *QueueSnapshot `json:"NextQueue,omitempty"`
	HoldPiece   *HoldPiece     `json:"HoldPiece,omitempty"`
	PieceTable  *PieceTable    `json:"PieceTable,omitempty"`
	GameMode    *GameMode      `json:"GameMode,omitempty"`
	Input       *Input         `json:"Input,omitempty"`
	ActivePiece *ActivePiece   `json:"ActivePiece,omitempty"`
	Drop        *Drop          `json:"Drop,omitempty"`
}

// BoardSnapshot stores only non-empty rows, one character per cell.
type BoardSnapshot struct {
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	BufferHeight int            `json:"bufferHeight"`
	VisualHeight int            `json:"visualHeight"`
	GravityMode  GravityMode    `json:"gravityMode"`
	GridVersion  uint64         `json:"gridVersion"`
	Rows         map[int]string `json:"rows"`
}

// QueueSnapshot stores the lookahead and the hex-encoded generator state.
type QueueSnapshot struct {
	Queue []piece.Kind `json:"queue"`
	RNG   string       `json:"rng"`
}

// EncodeRow renders one grid row with CellAlphabet.
func EncodeRow(row []PieceID) (string, error) {
	var sb strings.Builder
	sb.Grow(len(row))
	for _, id := range row {
		if id == 0 {
			sb.WriteByte(emptyCell)
			continue
		}
		if int(id) >= len(CellAlphabet) {
			return "", fmt.Errorf("%w: %d", ErrCellAlphabet, id)
		}
		sb.WriteByte(CellAlphabet[id])
	}
	return sb.String(), nil
}

// DecodeRow is the inverse of EncodeRow.
func DecodeRow(s string, width int) ([]PieceID, error) {
	if len(s) != width {
		return nil, fmt.Errorf("row length %d, want %d", len(s), width)
	}
	row := make([]PieceID, width)
	for x := range len(s) {
		if s[x] == emptyCell {
			continue
		}
		i := strings.IndexByte(CellAlphabet, s[x])
		if i <= 0 {
			return nil, fmt.Errorf("bad cell character %q", s[x])
		}
		row[x] = PieceID(i)
	}
	return row, nil
}

// EncodeRows returns the non-empty rows of b keyed by grid row index.
func (b *Board) EncodeRows() (map[int]string, error) {
	rows := make(map[int]string)
	for y, row := range b.Grid {
		if !slices.ContainsFunc(row, func(id PieceID) bool { return id != 0 }) {
			continue
		}
		s, err := EncodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		rows[y] = s
	}
	return rows, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

// Export captures the full world state.
func (w *World) Export() (*Snapshot, error) {
	snap := &Snapshot{
		Seed:         w.seed,
		NextEntityID: w.store.NextID(),
		Entities:     make(map[ecs.EntityID]EntitySnapshot),
	}

	for _, id := range w.store.Entities() {
		var es EntitySnapshot
		if b, ok := w.boards.Get(id); ok {
			rows, err := b.EncodeRows()
			if err != nil {
				return nil, err
			}
			es.Board = &BoardSnapshot{
				Width:        b.Width,
				Height:       b.Height,
				BufferHeight: b.BufferHeight,
				VisualHeight: b.VisualHeight,
				GravityMode:  b.GravityMode,
				GridVersion:  b.GridVersion,
				Rows:         rows,
			}
		}
		if s, ok := w.scores.Get(id); ok {
			v := *s
			es.Score = &v
		}
		if s, ok := w.states.Get(id); ok {
			v := *s
			es.GameState = &v
		}
		if q, ok := w.queues.Get(id); ok {
			state, err := q.RNG.State()
			if err != nil {
				return nil, fmt.Errorf("export rng: %w", err)
			}
			es.NextQueue = &QueueSnapshot{Queue: orEmpty(q.Queue), RNG: state}
		}
		if h, ok := w.holds.Get(id); ok {
			v := *h
			es.HoldPiece = &v
		}
		if t, ok := w.pieceTables.Get(id); ok {
			v := PieceTable{Pieces: make(map[PieceID]piece.Kind, len(t.Pieces)), NextID: t.NextID, FreeIDs: orEmpty(t.FreeIDs)}
			for k, kind := range t.Pieces {
				v.Pieces[k] = kind
			}
			es.PieceTable = &v
		}
		if m, ok := w.modes.Get(id); ok {
			v := *m
			es.GameMode = &v
		}
		if in, ok := w.inputs.Get(id); ok {
			es.Input = &Input{Actions: orEmpty(in.Actions), Shake: in.Shake}
		}
		if p, ok := w.actives.Get(id); ok {
			v := *p
			es.ActivePiece = &v
		}
		if d, ok := w.drops.Get(id); ok {
			v := *d
			es.Drop = &v
		}
		snap.Entities[id] = es
	}
	return snap, nil
}

// MarshalSnapshot exports the world as JSON. Map keys are sorted, so equal
// worlds always produce identical bytes.
func (w *World) MarshalSnapshot() ([]byte, error) {
	snap, err := w.Export()
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

// UnmarshalSnapshot parses JSON produced by MarshalSnapshot and imports it.
func UnmarshalSnapshot(data []byte, rules Rules) (*World, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return Import(&snap, rules)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}

// Import validates snap and rebuilds the world it describes.
func Import(snap *Snapshot, rules Rules) (*World, error) {
	if snap == nil {
		return nil, invalid("nil snapshot")
	}

	ids := make([]ecs.EntityID, 0, len(snap.Entities))
	for id := range snap.Entities {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var boardID, pieceID ecs.EntityID
	for _, id := range ids {
		if id == 0 || id >= snap.NextEntityID {
			return nil, invalid("entity id %d outside [1,%d)", id, snap.NextEntityID)
		}
		es := snap.Entities[id]
		if es.Board != nil {
			if boardID != 0 {
				return nil, invalid("more than one board entity")
			}
			boardID = id
		}
		if es.ActivePiece != nil || es.Drop != nil {
			if pieceID != 0 {
				return nil, invalid("more than one piece entity")
			}
			pieceID = id
		}
	}
	if boardID == 0 {
		return nil, invalid("no board entity")
	}

	w := newWorld(rules)
	w.seed = snap.Seed
	w.boardID = boardID

	for _, id := range ids {
		if err := w.store.CreateWithID(id); err != nil {
			return nil, invalid("%v", err)
		}
		es := snap.Entities[id]
		var err error
		switch id {
		case boardID:
			err = w.importBoardEntity(id, es)
		case pieceID:
			err = w.importPieceEntity(id, es)
		default:
			if es != (EntitySnapshot{}) {
				err = invalid("entity %d has components outside the board and piece entities", id)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if err := w.store.SetNextID(snap.NextEntityID); err != nil {
		return nil, invalid("%v", err)
	}
	if err := w.validateReferences(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) importBoardEntity(id ecs.EntityID, es EntitySnapshot) error {
	if es.Score == nil || es.GameState == nil || es.NextQueue == nil || es.HoldPiece == nil ||
		es.PieceTable == nil || es.GameMode == nil || es.Input == nil {
		return invalid("board entity %d is missing components", id)
	}
	if es.ActivePiece != nil || es.Drop != nil {
		return invalid("board entity %d also holds the active piece", id)
	}

	bs := es.Board
	if bs.Width < 4 || bs.Height < 1 || bs.BufferHeight < 0 {
		return invalid("board size %dx%d+%d", bs.Width, bs.Height, bs.BufferHeight)
	}
	if bs.VisualHeight < 1 || bs.VisualHeight > bs.Height {
		return invalid("visual height %d outside [1,%d]", bs.VisualHeight, bs.Height)
	}
	if !bs.GravityMode.Valid() {
		return invalid("gravity mode %q", bs.GravityMode)
	}
	grid := newGrid(bs.Height+bs.BufferHeight, bs.Width)
	for y, s := range bs.Rows {
		if y < 0 || y >= len(grid) {
			return invalid("row %d outside grid", y)
		}
		row, err := DecodeRow(s, bs.Width)
		if err != nil {
			return invalid("row %d: %v", y, err)
		}
		grid[y] = row
	}
	w.boards.Attach(id, Board{
		Width:        bs.Width,
		Height:       bs.Height,
		BufferHeight: bs.BufferHeight,
		VisualHeight: bs.VisualHeight,
		Grid:         grid,
		GravityMode:  bs.GravityMode,
		GridVersion:  bs.GridVersion,
	})

	if es.Score.Level < 0 || es.Score.Lines < 0 {
		return invalid("negative score fields")
	}
	w.scores.Attach(id, *es.Score)

	st := *es.GameState
	if !st.Phase.Valid() {
		return invalid("phase %q", st.Phase)
	}
	if st.LockResets < 0 || st.LockResets > st.MaxLockResets || st.LockTimer < 0 || st.LockDelay < 0 {
		return invalid("lock counters out of range")
	}
	w.states.Attach(id, st)

	rng, err := RestoreRNG(es.NextQueue.RNG)
	if err != nil {
		return invalid("%v", err)
	}
	for _, k := range es.NextQueue.Queue {
		if !k.Playable() {
			return invalid("queue holds %v", k)
		}
	}
	w.queues.Attach(id, NextQueue{Queue: slices.Clone(es.NextQueue.Queue), RNG: rng})

	h := *es.HoldPiece
	if h.Kind != piece.None && !h.Kind.Playable() {
		return invalid("hold holds %v", h.Kind)
	}
	w.holds.Attach(id, h)

	pt := es.PieceTable
	table := PieceTable{Pieces: make(map[PieceID]piece.Kind, len(pt.Pieces)), NextID: pt.NextID, FreeIDs: slices.Clone(pt.FreeIDs)}
	if table.NextID == 0 {
		return invalid("piece table next id is 0")
	}
	for pid, kind := range pt.Pieces {
		if pid == 0 || pid >= table.NextID || !kind.Valid() {
			return invalid("piece table entry %d=%v", pid, kind)
		}
		table.Pieces[pid] = kind
	}
	freed := make(map[PieceID]bool, len(table.FreeIDs))
	for _, pid := range table.FreeIDs {
		if pid == 0 || pid >= table.NextID || freed[pid] {
			return invalid("free id %d", pid)
		}
		if _, live := table.Pieces[pid]; live {
			return invalid("free id %d is still in use", pid)
		}
		freed[pid] = true
	}
	w.pieceTables.Attach(id, table)

	mode := *es.GameMode
	if mode.Type != ModeA && mode.Type != ModeB {
		return invalid("game mode %q", mode.Type)
	}
	w.modes.Attach(id, mode)

	for _, a := range es.Input.Actions {
		if !a.Valid() {
			return invalid("action %q", a)
		}
	}
	w.inputs.Attach(id, Input{Actions: slices.Clone(es.Input.Actions), Shake: es.Input.Shake})
	return nil
}

func (w *World) importPieceEntity(id ecs.EntityID, es EntitySnapshot) error {
	if es.ActivePiece == nil || es.Drop == nil {
		return invalid("piece entity %d needs both ActivePiece and Drop", id)
	}
	p := *es.ActivePiece
	if !p.Kind.Playable() || p.Rotation < 0 || p.Rotation > 3 {
		return invalid("active piece %v rotation %d", p.Kind, p.Rotation)
	}
	if es.Drop.Interval < 1 || es.Drop.Timer < 0 {
		return invalid("drop timer %d interval %d", es.Drop.Timer, es.Drop.Interval)
	}
	w.actives.Attach(id, p)
	w.drops.Attach(id, *es.Drop)
	return nil
}

// validateReferences checks that every id in the grid, hold slot and active
// piece resolves through the piece table.
func (w *World) validateReferences() error {
	b, t := w.Board(), w.Pieces()
	for y, row := range b.Grid {
		for x, id := range row {
			if id != 0 && t.Kind(id) == piece.None {
				return invalid("cell (%d,%d) references unknown id %d", x, y, id)
			}
		}
	}
	if h := w.Hold(); h.Kind != piece.None && t.Kind(h.PieceID) != h.Kind {
		return invalid("hold id %d does not match %v", h.PieceID, h.Kind)
	}
	if p, ok := w.ActivePiece(); ok {
		if t.Kind(p.PieceID) != p.Kind {
			return invalid("active id %d does not match %v", p.PieceID, p.Kind)
		}
		if b.Collides(p.Kind, p.Rotation, p.X, p.Y) && !w.State().Phase.Terminal() {
			return invalid("active piece overlaps the board")
		}
	}
	return nil
}
