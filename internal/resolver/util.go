// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// isNotExist treats both a missing path and a path component that is a
// regular file (ENOTDIR) as "nothing there to enumerate".
func isNotExist(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	// afero's OsFs surfaces ENOTDIR as a *PathError with a syscall errno;
	// matching on the message keeps this portable across its backends.
	return strings.Contains(err.Error(), "not a directory")
}
