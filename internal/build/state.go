// SPDX-License-Identifier: MPL-2.0

package build

// compileState is the classic DFS coloring used for cycle detection:
// notProcessed (white), searching (gray, somewhere on the current call
// stack), checked (black, done for this invocation).
type compileState int

const (
	stateNotProcessed compileState = iota
	stateSearching
	stateChecked
)

type (
	// buildContext is the per-top-level-invocation scope. It exists only to
	// detect cycles and avoid reprocessing within one Build call; it is
	// discarded when that call returns and never shared, so independent
	// invocations cannot interfere with each other's cycle detection.
	buildContext struct {
		states map[string]compileState
	}

	// scope is one level of the directory-resolution chain. Sibling lookups
	// try the innermost directory first and recurse outward through parents.
	// A single-file target gets a one-element chain, restricting siblings to
	// its own directory; a directory target chains the directory onto the
	// scope it was requested from.
	scope struct {
		dir    string
		parent *scope
	}
)

func newBuildContext() *buildContext {
	return &buildContext{states: make(map[string]compileState)}
}

func (bc *buildContext) status(name string) compileState {
	return bc.states[name]
}

func (bc *buildContext) setStatus(name string, st compileState) {
	bc.states[name] = st
}
