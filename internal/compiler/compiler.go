// SPDX-License-Identifier: MPL-2.0

// Package compiler provides a minimal directive front end so the build
// orchestrator can be driven end to end without a full ML compiler. A source
// file is a sequence of lines:
//
//	structure NAME    declare a structure
//	signature NAME    declare a signature
//	functor NAME      declare a functor
//	open NAME         reference a structure
//	include NAME      reference a signature
//	apply NAME        reference a functor
//
// Blank lines and lines starting with "(*" are ignored. Embedding
// environments with a real front end supply their own compilation callback;
// the build machinery only depends on the callback signature, never on this
// package.
package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"mlmake/pkg/mlenv"
)

// SyntaxError reports a line the front end could not interpret.
type SyntaxError struct {
	Line int
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error on line %d: %q", e.Line, e.Text)
}

var directives = map[string]struct {
	kind     mlenv.Kind
	declares bool
}{
	"structure": {mlenv.KindStructure, true},
	"signature": {mlenv.KindSignature, true},
	"functor":   {mlenv.KindFunctor, true},
	"open":      {mlenv.KindStructure, false},
	"include":   {mlenv.KindSignature, false},
	"apply":     {mlenv.KindFunctor, false},
}

// Compile runs one compilation unit: it inserts a binding for every declared
// name and looks up every referenced name through the supplied environment.
// A referenced name the environment cannot produce is tolerated (it is
// presumed to be a library symbol); a lookup that fails with an error aborts
// the unit, since that error is a nested build failure.
func Compile(src io.Reader, env mlenv.Environment) error {
	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "(*") {
			continue
		}

		fields := strings.Fields(line)
		d, ok := directives[fields[0]]
		if !ok || len(fields) != 2 {
			return &SyntaxError{Line: lineNo, Text: line}
		}
		name := fields[1]

		if d.declares {
			env.Insert(d.kind, name, mlenv.Binding{Kind: d.kind, Name: name})
			continue
		}
		if _, _, err := env.Lookup(d.kind, name); err != nil {
			return fmt.Errorf("resolving %s %s: %w", d.kind, name, err)
		}
	}
	return scanner.Err()
}
