// SPDX-License-Identifier: MPL-2.0

package build

import (
	"fmt"

	"mlmake/internal/depstore"
	"mlmake/pkg/mlenv"
)

type localKey struct {
	kind mlenv.Kind
	name string
}

// recordingEnv is the environment one compilation unit sees. Lookups of the
// three buildable kinds (structure, signature, functor) that miss the unit's
// own in-progress declarations trigger a recursive build of the looked-up
// name and record it in the frame's dependency set; plain values, types and
// fixity directives pass straight through to the shared environment.
//
// When the unit declares a name equal to the frame's target, the dependency
// set collected so far is committed to the store with a stamp that is the
// max of the source modification time, the current wall clock, and every
// recorded dependency's stamp — so a fresh build can never look older than
// its inputs, whatever the clocks involved were doing.
type recordingEnv struct {
	o        *Orchestrator
	bc       *buildContext
	sc       *scope
	target   string
	srcStamp depstore.Stamp

	deps      []string
	depSeen   map[string]bool
	local     map[localKey]bool
	committed bool
}

func newRecordingEnv(o *Orchestrator, bc *buildContext, sc *scope, target string, srcStamp depstore.Stamp) *recordingEnv {
	return &recordingEnv{
		o:        o,
		bc:       bc,
		sc:       sc,
		target:   target,
		srcStamp: srcStamp,
		depSeen:  make(map[string]bool),
		local:    make(map[localKey]bool),
	}
}

// Lookup resolves a free name on behalf of the compilation callback. For
// buildable kinds it first brings the name up to date (which may recurse
// into the orchestrator), then consults the shared environment. Every name
// resolved this way is recorded as a dependency, whether it was freshly
// built, already checked, or turned out to be a library symbol — except the
// target itself, which must not appear in its own dependency list.
func (e *recordingEnv) Lookup(kind mlenv.Kind, name string) (any, bool, error) {
	if !kind.Buildable() {
		return e.o.env.Lookup(kind, name)
	}

	if !e.local[localKey{kind: kind, name: name}] {
		if err := e.o.check(e.bc, e.sc, name, false); err != nil {
			return nil, false, err
		}
		e.recordDep(name)
	}
	return e.o.env.Lookup(kind, name)
}

// Insert declares a name into the shared environment and remembers it as
// locally declared so later references within the same unit do not trigger a
// self-build.
func (e *recordingEnv) Insert(kind mlenv.Kind, name string, value any) {
	e.o.env.Insert(kind, name, value)
	e.local[localKey{kind: kind, name: name}] = true

	if !kind.Buildable() {
		return
	}
	fmt.Fprintf(e.o.out, "Created %s %s\n", kind, name)

	if name == e.target && !e.committed {
		e.commit()
	}
}

func (e *recordingEnv) recordDep(name string) {
	if name == e.target || e.depSeen[name] {
		return
	}
	e.depSeen[name] = true
	e.deps = append(e.deps, name)
}

func (e *recordingEnv) commit() {
	stamp := e.srcStamp.Max(depstore.StampOf(e.o.now()))
	for _, dep := range e.deps {
		stamp = stamp.Max(e.o.store.Stamp(dep))
	}
	e.o.store.Commit(e.target, stamp, e.deps)
	e.committed = true
	e.o.logger.Debug("committed record", "name", e.target, "stamp", stamp, "dependencies", e.deps)
}
