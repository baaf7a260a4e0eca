// SPDX-License-Identifier: MPL-2.0

// Package mlenv models the ambient naming environment of the interactive ML
// session: one table per declaration kind, shared by every subsystem that
// resolves or declares names (the REPL, the build orchestrator, the
// debugger). The environment is an explicitly constructed object passed by
// reference rather than ambient global state, which keeps ownership and
// lifetime visible and lets tests build isolated instances.
package mlenv

import "mlmake/pkg/symtab"

// Kind identifies one of the six declaration namespaces.
type Kind int

const (
	// KindFixity holds infix/nonfix directives.
	KindFixity Kind = iota
	// KindValue holds ordinary value bindings.
	KindValue
	// KindType holds type constructors.
	KindType
	// KindSignature holds signature declarations.
	KindSignature
	// KindStructure holds structure declarations.
	KindStructure
	// KindFunctor holds functor declarations.
	KindFunctor

	numKinds
)

// String returns the lowercase kind name as it appears in diagnostics
// ("Created structure X").
func (k Kind) String() string {
	switch k {
	case KindFixity:
		return "fixity"
	case KindValue:
		return "value"
	case KindType:
		return "type"
	case KindSignature:
		return "signature"
	case KindStructure:
		return "structure"
	case KindFunctor:
		return "functor"
	default:
		return "unknown"
	}
}

// Buildable reports whether a declaration of this kind may resolve to an
// independently buildable source object. Only structures, signatures and
// functors map to files; values, types and fixity directives are assumed
// pre-existing.
func (k Kind) Buildable() bool {
	return k == KindSignature || k == KindStructure || k == KindFunctor
}

type (
	// Binding is the value the reference front end stores for a declared
	// name. Real embedding compilers store their own elaborated objects; the
	// environment treats values as opaque.
	Binding struct {
		Kind Kind
		Name string
	}

	// Environment is the lookup/insert contract a compilation callback
	// consumes. The build orchestrator hands the callback a wrapper that
	// implements this interface and triggers recursive builds on lookup
	// misses; Lookup therefore carries an error so a failed nested build can
	// abort the enclosing compilation.
	Environment interface {
		Lookup(kind Kind, name string) (any, bool, error)
		Insert(kind Kind, name string, value any)
	}

	// Env is the concrete shared environment: six independent symbol tables,
	// one per kind. Safe for concurrent use; each table is its own lock
	// domain.
	Env struct {
		tables [numKinds]*symtab.Table[any]
	}
)

// New creates an empty environment.
func New() *Env {
	e := &Env{}
	for k := range e.tables {
		e.tables[k] = symtab.New[any]()
	}
	return e
}

// Lookup returns the binding for name in the given kind's namespace.
// The error is always nil; it exists to satisfy Environment.
func (e *Env) Lookup(kind Kind, name string) (any, bool, error) {
	v, ok := e.tables[kind].Lookup(name)
	return v, ok, nil
}

// Insert binds name in the given kind's namespace, replacing any previous
// binding.
func (e *Env) Insert(kind Kind, name string, value any) {
	e.tables[kind].Insert(name, value)
}

// Delete removes the binding for name from the given kind's namespace.
func (e *Env) Delete(kind Kind, name string) {
	e.tables[kind].Delete(name)
}

// Enumerate returns a snapshot of the given kind's namespace, sorted by name.
func (e *Env) Enumerate(kind Kind) []symtab.Entry[any] {
	return e.tables[kind].Enumerate()
}
