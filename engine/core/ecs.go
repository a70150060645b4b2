package core

import "slices"

// EntityID identifies an entity within one World. IDs start at 1 and are
// never reused, so a replay against a fresh World sees the same IDs.
type EntityID uint64

// Component is a marker interface for all components
type Component interface {
	Type() ComponentType
}

// ComponentType identifies the type of component
type ComponentType uint32

const (
	CompPosition ComponentType = iota
	CompMovable
	CompSelectable
	CompTrail
	CompMax
)

// World holds the agents of a simulation and the systems that step them.
// Components are stored per type.
type World struct {
	stores    [CompMax]map[EntityID]Component
	alive     map[EntityID]struct{}
	lastID    EntityID
	systems   []System
	doomed    []EntityID
	TickCount uint64
	TickRate  float64 // fixed ticks per second
}

// System processes entities each tick
type System interface {
	Update(w *World, dt float64)
	Priority() int
}

// NewWorld creates an empty world
func NewWorld(tickRate float64) *World {
	w := &World{
		alive:    make(map[EntityID]struct{}),
		TickRate: tickRate,
	}
	for i := range w.stores {
		w.stores[i] = make(map[EntityID]Component)
	}
	return w
}

// Spawn creates a new entity and returns its ID
func (w *World) Spawn() EntityID {
	w.lastID++
	w.alive[w.lastID] = struct{}{}
	return w.lastID
}

func (w *World) store(ct ComponentType) map[EntityID]Component {
	if ct >= CompMax {
		return nil
	}
	return w.stores[ct]
}

// Attach sets a component on a live entity, replacing any of the same type
func (w *World) Attach(id EntityID, c Component) {
	if _, ok := w.alive[id]; !ok {
		return
	}
	if s := w.store(c.Type()); s != nil {
		s[id] = c
	}
}

// Detach removes a component from an entity
func (w *World) Detach(id EntityID, ct ComponentType) {
	if s := w.store(ct); s != nil {
		delete(s, id)
	}
}

// Get returns a component for an entity, or nil
func (w *World) Get(id EntityID, ct ComponentType) Component {
	return w.store(ct)[id]
}

// Has checks if an entity has a component
func (w *World) Has(id EntityID, ct ComponentType) bool {
	_, ok := w.store(ct)[id]
	return ok
}

// Destroy marks an entity for removal at the end of the tick
func (w *World) Destroy(id EntityID) {
	w.doomed = append(w.doomed, id)
}

// Query returns the entities carrying every listed component type, in
// spawn order so systems run deterministically. With no types it returns
// every live entity.
func (w *World) Query(types ...ComponentType) []EntityID {
	var result []EntityID
	for id := range w.alive {
		if w.hasAll(id, types) {
			result = append(result, id)
		}
	}
	slices.Sort(result)
	return result
}

func (w *World) hasAll(id EntityID, types []ComponentType) bool {
	for _, ct := range types {
		if !w.Has(id, ct) {
			return false
		}
	}
	return true
}

// AddSystem registers a system; systems run in ascending Priority, ties in
// registration order
func (w *World) AddSystem(s System) {
	w.systems = append(w.systems, s)
	slices.SortStableFunc(w.systems, func(a, b System) int {
		return a.Priority() - b.Priority()
	})
}

// Tick runs all systems once, then drops destroyed entities
func (w *World) Tick(dt float64) {
	for _, s := range w.systems {
		s.Update(w, dt)
	}
	for _, id := range w.doomed {
		delete(w.alive, id)
		for _, s := range w.stores {
			delete(s, id)
		}
	}
	w.doomed = w.doomed[:0]
	w.TickCount++
}

// EntityCount returns the number of alive entities
func (w *World) EntityCount() int {
	return len(w.alive)
}
