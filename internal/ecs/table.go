package ecs

import "github.com/kamstrup/intmap"

// Table holds one component type for any number of entities.
type Table[T any] struct {
	store *Store
	id    ComponentID
	name  string
	rows  *intmap.Map[EntityID, *T]
}

// NewTable registers a component table named name on s.
// Registering the same name twice panics.
func NewTable[T any](s *Store, name string) *Table[T] {
	t := &Table[T]{
		store: s,
		name:  name,
		rows:  intmap.New[EntityID, *T](8),
	}
	t.id = s.register(t)
	return t
}

// Name returns the component name.
func (t *Table[T]) Name() string { return t.name }

// ID returns the component bit used in queries.
func (t *Table[T]) ID() ComponentID { return t.id }

// Len returns the number of rows.
func (t *Table[T]) Len() int { return t.rows.Len() }

// Attach sets the component value for e, replacing any previous one,
// and returns a pointer to the stored value. e must be alive.
func (t *Table[T]) Attach(e EntityID, v T) *T {
	t.store.setBit(e, t.id, true)
	p := &v
	t.rows.Put(e, p)
	return p
}

// Detach removes the component from e. Returns false if it was absent.
func (t *Table[T]) Detach(e EntityID) bool {
	if _, ok := t.rows.Get(e); !ok {
		return false
	}
	t.rows.Del(e)
	t.store.setBit(e, t.id, false)
	return true
}

// Get returns the component of e.
func (t *Table[T]) Get(e EntityID) (*T, bool) {
	return t.rows.Get(e)
}

// Has reports whether e has this component.
func (t *Table[T]) Has(e EntityID) bool {
	_, ok := t.rows.Get(e)
	return ok
}

func (t *Table[T]) remove(e EntityID) {
	t.rows.Del(e)
}
