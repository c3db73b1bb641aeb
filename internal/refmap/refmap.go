// Package refmap provides a reference-counted, copy-on-write map container.
//
// A Map handle is cheap to share: Retain increments a reference count on the
// underlying table instead of duplicating entries. Mutations through any
// handle sharing a table are visible through every other handle. Callers that
// need independent storage take an explicit Copy.
package refmap

import (
	"sync"
	"sync/atomic"
)

// table is the shared storage block behind one or more Map handles.
// It is never exposed directly; all access goes through a handle.
type table[K comparable, V any] struct {
	entries map[K]V
	refs    atomic.Int32
	mu      sync.Mutex // For safe teardown
}

// newTable creates a table with refs = 1.
func newTable[K comparable, V any]() *table[K, V] {
	t := &table[K, V]{
		entries: make(map[K]V),
	}
	t.refs.Store(1)
	return t
}

// addRef increments the reference count (for Retain operations).
func (t *table[K, V]) addRef() {
	t.refs.Add(1)
}

// release decrements the reference count and tears the table down when it
// reaches 0. The table is freed exactly once.
func (t *table[K, V]) release() {
	if t.refs.Add(-1) == 0 {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.entries = nil
	}
}

// isUnique returns true if this table has only one referencing handle.
func (t *table[K, V]) isUnique() bool {
	return t.refs.Load() == 1
}

// Map is a handle to a shared table. The zero Map is not usable; construct
// with New. Handles are small and intended to be passed by value.
//
// The reference count is the only state safe to touch from multiple
// goroutines without external locking; concurrent table access through
// sibling handles needs caller-side synchronization.
type Map[K comparable, V any] struct {
	tab *table[K, V]
}

// New creates a handle owning a fresh empty table (refcount 1).
func New[K comparable, V any]() Map[K, V] {
	return Map[K, V]{tab: newTable[K, V]()}
}

// Retain returns a new handle sharing this handle's table. Mutations through
// either handle are visible through the other.
func (m Map[K, V]) Retain() Map[K, V] {
	m.tab.addRef()
	return Map[K, V]{tab: m.tab}
}

// Release drops this handle's reference. The table is reclaimed when the last
// handle releases it. A released handle must not be used again except by
// reassignment.
func (m Map[K, V]) Release() {
	m.tab.release()
}

// Exclusive reports whether this handle is the only live reference to its
// table. Only when this returns true is in-place mutation guaranteed to be
// unobservable through any other handle. The answer is a point-in-time
// snapshot: the caller must ensure no sibling handle is created between the
// check and the mutation.
func (m Map[K, V]) Exclusive() bool {
	return m.tab.isUnique()
}

// Insert adds key→value only if key is absent and reports whether the
// insertion happened. An existing entry is never overwritten.
func (m Map[K, V]) Insert(key K, value V) bool {
	if _, ok := m.tab.entries[key]; ok {
		return false
	}
	m.tab.entries[key] = value
	return true
}

// Replace unconditionally sets key→value, inserting if absent.
func (m Map[K, V]) Replace(key K, value V) {
	m.tab.entries[key] = value
}

// Find returns the value for key and whether the key is present.
func (m Map[K, V]) Find(key K) (V, bool) {
	v, ok := m.tab.entries[key]
	return v, ok
}

// Lookup returns the value for a key known to be present. The caller must
// have checked presence via Find first; for an absent key the result is the
// value type's zero value.
func (m Map[K, V]) Lookup(key K) V {
	return m.tab.entries[key]
}

// Erase removes the entry for key if present and returns the number of
// entries removed (0 or 1).
func (m Map[K, V]) Erase(key K) int {
	if _, ok := m.tab.entries[key]; !ok {
		return 0
	}
	delete(m.tab.entries, key)
	return 1
}

// Len returns the current number of entries.
func (m Map[K, V]) Len() int {
	return len(m.tab.entries)
}

// Keys returns all current keys in unspecified order.
func (m Map[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.tab.entries))
	for k := range m.tab.entries {
		keys = append(keys, k)
	}
	return keys
}

// Range calls fn for every entry until fn returns false. Iteration order is
// unspecified.
func (m Map[K, V]) Range(fn func(key K, value V) bool) {
	for k, v := range m.tab.entries {
		if !fn(k, v) {
			return
		}
	}
}

// Copy returns a handle owning a fresh table (refcount 1) holding a
// structural duplicate of this handle's entries. Values are copied shallowly:
// the mapping is duplicated, not whatever resources the values refer to.
func (m Map[K, V]) Copy() Map[K, V] {
	out := New[K, V]()
	for k, v := range m.tab.entries {
		out.tab.entries[k] = v
	}
	return out
}

// Fill returns a handle owning a fresh table with the same key set, every
// value produced by zero from the existing entry.
func (m Map[K, V]) Fill(zero func(key K, value V) V) Map[K, V] {
	out := New[K, V]()
	for k, v := range m.tab.entries {
		out.tab.entries[k] = zero(k, v)
	}
	return out
}
