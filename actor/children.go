package actor

import "sync"

// Children is a concurrent mapping from child name to a weak (untyped)
// handle on the child's cell, protected by a single reader-preferring
// lock (component A of SPEC_FULL.md).
//
// Iteration is weakly consistent: Iter clones the current value sequence
// under a read lock, so a concurrent Add/Remove may or may not be
// reflected in any given snapshot, but Iter never panics, deadlocks, or
// yields a torn reference.
type Children struct {
	mu sync.RWMutex
	m  map[string]BasicRef
}

// NewChildren returns an empty Children registry.
func NewChildren() *Children {
	return &Children{m: make(map[string]BasicRef)}
}

// Add inserts ref under its own name. Add is idempotent: on a name
// collision the last write wins. Callers are responsible for ensuring
// names are unique per parent (see BasicRef.AddChild, which enforces this).
func (c *Children) Add(ref BasicRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.m == nil {
		c.m = make(map[string]BasicRef)
	}
	c.m[ref.Name()] = ref
}

// Remove deletes the entry for ref's name. It is a no-op if no such entry
// exists.
func (c *Children) Remove(ref BasicRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.m, ref.Name())
}

// Get looks up a child by name.
func (c *Children) Get(name string) (BasicRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ref, ok := c.m[name]
	return ref, ok
}

// Len returns the current number of children.
func (c *Children) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.m)
}

// Iter returns a snapshot of the current entries, safe to range over
// while concurrent Add/Remove calls proceed.
func (c *Children) Iter() []BasicRef {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]BasicRef, 0, len(c.m))
	for _, ref := range c.m {
		out = append(out, ref)
	}
	return out
}
