// SPDX-License-Identifier: MPL-2.0

package depstore

import "time"

// Stamp is the opaque, totally ordered value recorded for a successful build.
// The zero Stamp is the minimum and sorts before every real stamp; it is what
// the store reports for an object that has never been built.
//
// Stamps are compared, never subtracted: two build steps may observe
// non-monotonic wall clocks (NFS servers, dependency chains crossing
// machines), so a freshly built object takes the max of its source
// modification time, the local clock, and every dependency stamp rather than
// trusting any single clock.
type Stamp struct {
	t time.Time
}

// StampOf converts a wall-clock time (typically a file modification time)
// into a Stamp.
func StampOf(t time.Time) Stamp {
	return Stamp{t: t}
}

// After reports whether s is strictly newer than other.
func (s Stamp) After(other Stamp) bool {
	return s.t.After(other.t)
}

// Max returns the newer of s and other.
func (s Stamp) Max(other Stamp) Stamp {
	if other.After(s) {
		return other
	}
	return s
}

// IsZero reports whether s is the minimum stamp.
func (s Stamp) IsZero() bool {
	return s.t.IsZero()
}

// Time exposes the underlying wall-clock value for display and export.
func (s Stamp) Time() time.Time {
	return s.t
}

func (s Stamp) String() string {
	if s.IsZero() {
		return "never"
	}
	return s.t.Format(time.RFC3339Nano)
}
