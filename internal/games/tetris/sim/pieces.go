package sim

import (
	"slices"

	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

// MinQueueLen is the lookahead the queue keeps after a refill.
const MinQueueLen = 14

// PieceTable maps instance ids to their kind. Freed ids are reused LIFO.
type PieceTable struct {
	Pieces  map[PieceID]piece.Kind `json:"pieces"`
	NextID  PieceID                `json:"nextId"`
	FreeIDs []PieceID              `json:"freeIds"`
}

// NewPieceTable returns an empty table whose first id is 1.
func NewPieceTable() PieceTable {
	return PieceTable{Pieces: make(map[PieceID]piece.Kind), NextID: 1}
}

// Alloc registers a new instance of kind and returns its id.
func (t *PieceTable) Alloc(kind piece.Kind) PieceID {
	var id PieceID
	if n := len(t.FreeIDs); n > 0 {
		id = t.FreeIDs[n-1]
		t.FreeIDs = t.FreeIDs[:n-1]
	} else {
		id = t.NextID
		t.NextID++
	}
	t.Pieces[id] = kind
	return id
}

// Kind returns the kind of id, or piece.None if unknown.
func (t *PieceTable) Kind(id PieceID) piece.Kind {
	return t.Pieces[id]
}

// Reclaim frees every id for which alive returns false, in ascending order.
func (t *PieceTable) Reclaim(alive func(PieceID) bool) []PieceID {
	ids := make([]PieceID, 0, len(t.Pieces))
	for id := range t.Pieces {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var freed []PieceID
	for _, id := range ids {
		if alive(id) {
			continue
		}
		delete(t.Pieces, id)
		t.FreeIDs = append(t.FreeIDs, id)
		freed = append(freed, id)
	}
	return freed
}

// Refill appends whole bags until the queue holds at least MinQueueLen kinds.
func (q *NextQueue) Refill() {
	for len(q.Queue) < MinQueueLen {
		q.Queue = append(q.Queue, q.RNG.Bag()...)
	}
}

// Pop removes and returns the front of the queue.
func (q *NextQueue) Pop() piece.Kind {
	k := q.Queue[0]
	q.Queue = q.Queue[1:]
	return k
}

// Peek returns up to n upcoming kinds without consuming them.
func (q *NextQueue) Peek(n int) []piece.Kind {
	n = min(n, len(q.Queue))
	return slices.Clone(q.Queue[:n])
}
