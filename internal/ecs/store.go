// Package ecs is a small entity/component store.
//
// Entities are integer ids handed out by a monotonic arena. Components live in
// typed tables registered against a Store; each entity carries a bit mask of the
// tables it has a row in, which makes multi-component queries a mask test.
package ecs

import (
	"fmt"
	"slices"

	"github.com/kamstrup/intmap"
)

// EntityID identifies an entity within a Store. Zero is never issued.
type EntityID uint32

// ComponentID is the bit index of a registered component table.
type ComponentID uint8

// Mask is a set of ComponentIDs.
type Mask uint64

// MaxComponents is the number of tables a single Store can hold.
const MaxComponents = 64

// Has reports whether every component in other is present in m.
func (m Mask) Has(other Mask) bool {
	return m&other == other
}

// With returns m with c added.
func (m Mask) With(c ComponentID) Mask {
	return m | 1<<c
}

// Without returns m with c removed.
func (m Mask) Without(c ComponentID) Mask {
	return m &^ (1 << c)
}

// table is the type-erased view a Store keeps of each registered Table.
type table interface {
	Name() string
	remove(id EntityID)
}

// Store owns entity ids and the component tables attached to them.
type Store struct {
	nextID   EntityID
	entities []EntityID // kept sorted
	masks    *intmap.Map[EntityID, Mask]
	tables   []table
	byName   map[string]ComponentID
}

// NewStore creates an empty store. The first entity created gets id 1.
func NewStore() *Store {
	return &Store{
		nextID: 1,
		masks:  intmap.New[EntityID, Mask](16),
		byName: make(map[string]ComponentID),
	}
}

func (s *Store) register(t table) ComponentID {
	if len(s.tables) >= MaxComponents {
		panic(fmt.Sprintf("ecs: too many component tables (max %d)", MaxComponents))
	}
	if _, dup := s.byName[t.Name()]; dup {
		panic(fmt.Sprintf("ecs: component %q already registered", t.Name()))
	}
	id := ComponentID(len(s.tables))
	s.tables = append(s.tables, t)
	s.byName[t.Name()] = id
	return id
}

// Create allocates a new entity with no components.
func (s *Store) Create() EntityID {
	id := s.nextID
	s.nextID++
	s.insert(id)
	return id
}

// CreateWithID revives a specific id, used when restoring saved state.
// The arena counter is advanced past id if needed.
func (s *Store) CreateWithID(id EntityID) error {
	if id == 0 {
		return fmt.Errorf("ecs: entity id 0 is reserved")
	}
	if s.Alive(id) {
		return fmt.Errorf("ecs: entity %d already exists", id)
	}
	s.insert(id)
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return nil
}

func (s *Store) insert(id EntityID) {
	s.masks.Put(id, 0)
	i, _ := slices.BinarySearch(s.entities, id)
	s.entities = slices.Insert(s.entities, i, id)
}

// Destroy removes an entity and all of its components.
// Returns false if the entity was not alive.
func (s *Store) Destroy(id EntityID) bool {
	mask, ok := s.masks.Get(id)
	if !ok {
		return false
	}
	for c, t := range s.tables {
		if mask.Has(Mask(0).With(ComponentID(c))) {
			t.remove(id)
		}
	}
	s.masks.Del(id)
	if i, found := slices.BinarySearch(s.entities, id); found {
		s.entities = slices.Delete(s.entities, i, i+1)
	}
	return true
}

// DestroyAll removes every entity. The id arena keeps counting.
func (s *Store) DestroyAll() {
	for _, id := range slices.Clone(s.entities) {
		s.Destroy(id)
	}
}

// Alive reports whether id refers to a live entity.
func (s *Store) Alive(id EntityID) bool {
	_, ok := s.masks.Get(id)
	return ok
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return len(s.entities)
}

// Entities returns all live ids in ascending order.
func (s *Store) Entities() []EntityID {
	return slices.Clone(s.entities)
}

// NextID returns the id the next Create call will hand out.
func (s *Store) NextID() EntityID {
	return s.nextID
}

// SetNextID moves the arena counter. It refuses to move it at or below a live id.
func (s *Store) SetNextID(next EntityID) error {
	if n := len(s.entities); n > 0 && next <= s.entities[n-1] {
		return fmt.Errorf("ecs: next id %d would collide with live entity %d", next, s.entities[n-1])
	}
	if next == 0 {
		next = 1
	}
	s.nextID = next
	return nil
}

// Mask returns the component set of an entity.
func (s *Store) Mask(id EntityID) Mask {
	m, _ := s.masks.Get(id)
	return m
}

// Component looks up a registered table by name.
func (s *Store) Component(name string) (ComponentID, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Names lists the components attached to id in registration order.
func (s *Store) Names(id EntityID) []string {
	mask := s.Mask(id)
	var names []string
	for c, t := range s.tables {
		if mask.Has(Mask(0).With(ComponentID(c))) {
			names = append(names, t.Name())
		}
	}
	return names
}

// Query returns the ids of entities holding every listed component, ascending.
func (s *Store) Query(components ...ComponentID) []EntityID {
	var want Mask
	for _, c := range components {
		want = want.With(c)
	}
	var out []EntityID
	for _, id := range s.entities {
		if m, _ := s.masks.Get(id); m.Has(want) {
			out = append(out, id)
		}
	}
	return out
}

// QueryNames is Query keyed by component name. An unknown name matches nothing.
func (s *Store) QueryNames(names ...string) []EntityID {
	ids := make([]ComponentID, 0, len(names))
	for _, n := range names {
		c, ok := s.byName[n]
		if !ok {
			return nil
		}
		ids = append(ids, c)
	}
	return s.Query(ids...)
}

func (s *Store) setBit(id EntityID, c ComponentID, on bool) {
	m, ok := s.masks.Get(id)
	if !ok {
		panic(fmt.Sprintf("ecs: entity %d is not alive", id))
	}
	if on {
		m = m.With(c)
	} else {
		m = m.Without(c)
	}
	s.masks.Put(id, m)
}
