// SPDX-License-Identifier: MPL-2.0

package build

import "fmt"

type (
	// NotFoundError is returned when the top-level target cannot be located
	// at all. Names that go missing below the top level are assumed to be
	// library symbols and are not errors.
	NotFoundError struct {
		Name string
		Dir  string
	}

	// BuildError wraps a compilation failure for one object. It propagates
	// up through everything that depended on the object, aborting the rest
	// of the top-level build.
	BuildError struct {
		Name string
		Err  error
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("File %s not found (directory %s)", e.Name, e.Dir)
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building %s: %v", e.Name, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
