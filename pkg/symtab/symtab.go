// SPDX-License-Identifier: MPL-2.0

// Package symtab provides a mutex-guarded associative store mapping names to
// values. The interactive environment keeps one instance per declaration kind
// (fixity, value, type, signature, structure, functor), and the build
// machinery keeps two more for its timestamp and dependency records. Each
// instance is an independent lock domain: no operation ever holds the lock of
// another table, so cross-table deadlock is impossible.
package symtab

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	// Entry is a single name/value pair returned by Enumerate.
	Entry[V any] struct {
		Name  string
		Value V
	}

	// Table is a concurrent name-to-value map. The zero value is not usable;
	// construct with New. All operations acquire the table's mutex for their
	// full duration, so a concurrent reader never observes a half-inserted
	// entry.
	Table[V any] struct {
		mu sync.Mutex
		m  map[string]V
	}
)

// New creates an empty Table.
func New[V any]() *Table[V] {
	return &Table[V]{m: make(map[string]V)}
}

// Lookup returns the value bound to name, if any.
func (t *Table[V]) Lookup(name string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[name]
	return v, ok
}

// Insert binds name to value, replacing any previous binding.
func (t *Table[V]) Insert(name string, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[name] = value
}

// Delete removes the binding for name. Deleting an absent name is a no-op.
func (t *Table[V]) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, name)
}

// Len returns the number of bindings.
func (t *Table[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}

// Enumerate returns a snapshot of all bindings, consistent at some point
// during the call, sorted by name for deterministic iteration. Mutations
// made after Enumerate returns are not reflected in the snapshot.
func (t *Table[V]) Enumerate() []Entry[V] {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := maps.Keys(t.m)
	slices.Sort(names)

	entries := make([]Entry[V], 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry[V]{Name: name, Value: t.m[name]})
	}
	return entries
}
