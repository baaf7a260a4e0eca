// SPDX-License-Identifier: MPL-2.0

// Package depstore keeps the process-lifetime build record: per object, the
// stamp of its last successful build and the list of names it depended on at
// that time. Both maps are keyed by bare object name and survive across
// top-level build invocations; nothing is persisted across process restarts.
package depstore

import (
	"golang.org/x/exp/slices"

	"mlmake/pkg/symtab"
)

type (
	// Record is one object's exported build record, as produced by Snapshot.
	Record struct {
		Name    string   `toml:"name"`
		Built   string   `toml:"built"`
		Depends []string `toml:"depends,omitempty"`
	}

	// Store holds the timestamp and dependency tables. The two tables are
	// independent lock domains with no cross-table transaction: a concurrent
	// reader may observe a stamp update before the matching dependency list
	// or vice versa. Callers must not assume atomic commit across both.
	Store struct {
		stamps *symtab.Table[Stamp]
		deps   *symtab.Table[[]string]
	}
)

// New creates an empty store.
func New() *Store {
	return &Store{
		stamps: symtab.New[Stamp](),
		deps:   symtab.New[[]string](),
	}
}

// Stamp returns the recorded build stamp for name, or the zero Stamp if the
// object has never been built.
func (s *Store) Stamp(name string) Stamp {
	st, _ := s.stamps.Lookup(name)
	return st
}

// Dependencies returns the dependency list recorded at name's last successful
// build. The second result is false if no record exists.
func (s *Store) Dependencies(name string) ([]string, bool) {
	return s.deps.Lookup(name)
}

// Commit overwrites name's record with a new stamp and dependency list. The
// list is cloned so later mutation by the caller cannot corrupt the record.
func (s *Store) Commit(name string, stamp Stamp, depends []string) {
	s.stamps.Insert(name, stamp)
	s.deps.Insert(name, slices.Clone(depends))
}

// Forget drops name's record entirely, forcing a rebuild on next reference.
func (s *Store) Forget(name string) {
	s.stamps.Delete(name)
	s.deps.Delete(name)
}

// Snapshot returns every recorded object sorted by name, for inspection and
// export. Objects with a stamp but no committed dependency list (or the
// reverse, mid-commit) still appear.
func (s *Store) Snapshot() []Record {
	byName := make(map[string]*Record)

	for _, e := range s.stamps.Enumerate() {
		byName[e.Name] = &Record{Name: e.Name, Built: e.Value.String()}
	}
	for _, e := range s.deps.Enumerate() {
		r, ok := byName[e.Name]
		if !ok {
			r = &Record{Name: e.Name, Built: Stamp{}.String()}
			byName[e.Name] = r
		}
		r.Depends = e.Value
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	records := make([]Record, 0, len(names))
	for _, name := range names {
		records = append(records, *byName[name])
	}
	return records
}
