// SPDX-License-Identifier: MPL-2.0

// Package resolver locates the source file for a bare object name within a
// directory. Candidate filenames are tried in a configurable order, and
// existence is decided against the enumerated directory listing rather than a
// direct open, so a case-insensitive filesystem cannot hand back an unrelated
// entry whose name differs only in case.
package resolver

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// Options configures candidate construction.
	Options struct {
		// BaseSuffixes is the ordered list of source suffixes to try. An
		// empty string means the bare name itself. For each base suffix the
		// resolver tries the arch-qualified, version-qualified and
		// unqualified forms, in that order.
		BaseSuffixes []string

		// ArchQualifier discriminates per-architecture variants, e.g. ".amd64".
		ArchQualifier string

		// VersionQualifier discriminates per-release variants, e.g. ".v1".
		VersionQualifier string

		// BinderName is the designated file inside a directory target that
		// stands in for the directory's combined source, e.g. "ml_bind".
		BinderName string
	}

	// Location is a resolved source artifact. Dir and File name the source to
	// compile; for a directory target, Dir is the target directory itself and
	// File is its binder, with FromDir set.
	Location struct {
		Dir  string
		File string

		// FromDir records that the object resolved to a directory, so the
		// object's own dependency lookups must search inside it first.
		FromDir bool
	}

	// Resolver performs directory-scoped name resolution over an afero
	// filesystem.
	Resolver struct {
		fs     afero.Fs
		opts   Options
		logger *log.Logger
	}
)

// Path returns the full path of the resolved source file.
func (l Location) Path() string {
	return filepath.Join(l.Dir, l.File)
}

// New creates a Resolver. A nil logger disables tracing.
func New(fsys afero.Fs, opts Options, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = discardLogger()
	}
	return &Resolver{fs: fsys, opts: opts, logger: logger}
}

// Resolve looks for an object named bare inside dir. It returns the source
// location and true on a hit; false with a nil error when nothing matches
// (the caller decides whether that is fatal); a non-nil error only for
// filesystem failures other than non-existence.
//
// File candidates are tried before the directory interpretation, so a file
// "x.sml" shadows a sibling directory "x".
func (r *Resolver) Resolve(dir, bare string) (Location, bool, error) {
	listing, err := r.listDir(dir)
	if err != nil {
		return Location{}, false, err
	}
	if listing == nil {
		// Directory absent: nothing can match.
		r.logger.Debug("resolve: directory absent", "dir", dir, "name", bare)
		return Location{}, false, nil
	}

	for _, candidate := range r.candidates(bare) {
		kind, present := listing[candidate]
		if !present || kind == entryDir {
			continue
		}
		r.logger.Debug("resolve: hit", "dir", dir, "name", bare, "file", candidate)
		return Location{Dir: dir, File: candidate}, true, nil
	}

	// A directory whose byte-exact name matches the bare name is a target
	// too, compiled through its binder file.
	if kind, present := listing[bare]; present && kind == entryDir {
		sub := filepath.Join(dir, bare)
		subListing, err := r.listDir(sub)
		if err != nil {
			return Location{}, false, err
		}
		if kind, ok := subListing[r.opts.BinderName]; ok && kind == entryFile {
			r.logger.Debug("resolve: directory target", "dir", sub, "binder", r.opts.BinderName)
			return Location{Dir: sub, File: r.opts.BinderName, FromDir: true}, true, nil
		}
	}

	r.logger.Debug("resolve: miss", "dir", dir, "name", bare)
	return Location{}, false, nil
}

// candidates builds the trial list for a bare name: for each base suffix, the
// arch-qualified, version-qualified and unqualified candidates in that order.
func (r *Resolver) candidates(bare string) []string {
	out := make([]string, 0, 3*len(r.opts.BaseSuffixes))
	for _, base := range r.opts.BaseSuffixes {
		stem := bare + base
		if r.opts.ArchQualifier != "" {
			out = append(out, stem+r.opts.ArchQualifier)
		}
		if r.opts.VersionQualifier != "" {
			out = append(out, stem+r.opts.VersionQualifier)
		}
		out = append(out, stem)
	}
	return out
}

type entryKind int

const (
	entryFile entryKind = iota
	entryDir
)

// listDir enumerates dir into a byte-exact name set. It returns a nil map
// (and nil error) when dir does not exist or is not a directory; the host
// filesystem may well have opened a differently-cased variant, but only the
// names the listing actually reports count as matches.
func (r *Resolver) listDir(dir string) (map[string]entryKind, error) {
	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	listing := make(map[string]entryKind, len(infos))
	for _, info := range infos {
		kind := entryFile
		if info.IsDir() {
			kind = entryDir
		}
		listing[info.Name()] = kind
	}
	return listing, nil
}
