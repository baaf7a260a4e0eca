// SPDX-License-Identifier: MPL-2.0

// Package build implements the incremental build orchestrator: given a target
// name it decides whether the corresponding source object is stale relative
// to its recorded build and its transitive dependencies, and recompiles
// exactly the stale subset in dependency order. Dependency edges are not read
// from a manifest; they are discovered during compilation by intercepting the
// identifier lookups the compilation callback performs.
package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"mlmake/internal/depstore"
	"mlmake/internal/resolver"
	"mlmake/pkg/mlenv"
)

type (
	// CompileFunc performs one compilation unit. It must insert every name
	// the unit declares and look up every free external name it references
	// through the supplied environment; the orchestrator's environment
	// wrapper turns those lookups into recursive builds.
	CompileFunc func(src io.Reader, env mlenv.Environment) error

	// Options wires an Orchestrator. FS, Resolver, Env, Store and Compile
	// are required; the rest default sensibly.
	Options struct {
		FS       afero.Fs
		Resolver *resolver.Resolver
		Env      *mlenv.Env
		Store    *depstore.Store
		Compile  CompileFunc

		// Out receives the user-facing diagnostic lines ("Making X" and
		// friends). Defaults to os.Stdout. Test harnesses capture it.
		Out io.Writer

		// Logger receives supplementary tracing; nil disables it.
		Logger *log.Logger

		// Now is the wall clock used when stamping a fresh build. Defaults
		// to time.Now; tests inject a fake.
		Now func() time.Time
	}

	// Orchestrator drives recursive builds. One Build call is strictly
	// single-threaded and call-stack-recursive (recursion depth equals
	// dependency-chain depth); the environment and store it mutates are
	// process-wide and safe for concurrent invocations, but two concurrent
	// builds of the same object are not mutually exclusive and may
	// redundantly rebuild.
	Orchestrator struct {
		fs      afero.Fs
		res     *resolver.Resolver
		env     *mlenv.Env
		store   *depstore.Store
		compile CompileFunc
		out     io.Writer
		logger  *log.Logger
		now     func() time.Time
	}
)

// New creates an Orchestrator from opts.
func New(opts Options) *Orchestrator {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		fs:      opts.FS,
		res:     opts.Resolver,
		env:     opts.Env,
		store:   opts.Store,
		compile: opts.Compile,
		out:     out,
		logger:  logger,
		now:     now,
	}
}

// Build brings the named target up to date. The target is a path whose last
// element is the bare object name; its directory anchors sibling resolution.
// On success the store holds a fresh record for every rebuilt object and the
// ambient environment holds the target's declarations. It returns a
// *NotFoundError if nothing matches the target, or a *BuildError wrapping
// the first compilation failure.
func (o *Orchestrator) Build(target string) error {
	dir := filepath.Dir(target)
	bare := filepath.Base(target)

	bc := newBuildContext()
	sc := &scope{dir: dir}

	o.logger.Debug("build requested", "target", bare, "dir", dir)
	return o.check(bc, sc, bare, true)
}

// check is one frame of the recursive build: resolve the name, decide
// staleness, recompile if needed. top marks the user's original target, for
// which a failed resolution is fatal rather than "assume library symbol".
func (o *Orchestrator) check(bc *buildContext, sc *scope, bare string, top bool) error {
	switch bc.status(bare) {
	case stateChecked:
		return nil
	case stateSearching:
		// The name is already being built higher on this call stack. Report
		// and continue as if it were satisfied; the triggering object's
		// recorded dependency set may come out incomplete, which is the
		// accepted behavior.
		fmt.Fprintf(o.out, "Circular dependency: %s depends on itself\n", bare)
		o.logger.Warn("circular dependency", "name", bare)
		return nil
	}
	bc.setStatus(bare, stateSearching)

	loc, at, found, err := o.locate(sc, bare)
	if err != nil {
		bc.setStatus(bare, stateChecked)
		return err
	}
	if !found {
		bc.setStatus(bare, stateChecked)
		if top {
			fmt.Fprintf(o.out, "File %s not found (directory %s)\n", bare, sc.dir)
			return &NotFoundError{Name: bare, Dir: sc.dir}
		}
		o.logger.Debug("not buildable, assuming library symbol", "name", bare)
		return nil
	}

	// Dependencies of this object resolve from where it was found, outward.
	// A directory target additionally searches inside itself first.
	depScope := at
	if loc.FromDir {
		depScope = &scope{dir: loc.Dir, parent: at}
	}

	info, err := o.fs.Stat(loc.Path())
	if err != nil {
		bc.setStatus(bare, stateChecked)
		return fmt.Errorf("stat %s: %w", loc.Path(), err)
	}
	srcStamp := depstore.StampOf(info.ModTime())
	stored := o.store.Stamp(bare)
	recorded, hasRecord := o.store.Dependencies(bare)

	stale := !hasRecord || srcStamp.After(stored)
	if !stale {
		// The source itself is unchanged, but a recorded dependency may have
		// just been rebuilt as a side effect of some other target: bring
		// each one up to date and compare stamps.
		for _, dep := range recorded {
			if err := o.check(bc, depScope, dep, false); err != nil {
				bc.setStatus(bare, stateChecked)
				return err
			}
			if o.store.Stamp(dep).After(stored) {
				o.logger.Debug("dependency newer than object", "name", bare, "dependency", dep)
				stale = true
				break
			}
		}
	}

	if !stale {
		o.logger.Debug("up to date", "name", bare)
		bc.setStatus(bare, stateChecked)
		return nil
	}

	err = o.recompile(bc, depScope, bare, loc, srcStamp)
	// Checked even on failure, so the same broken object is not re-attempted
	// and re-reported within this invocation.
	bc.setStatus(bare, stateChecked)
	return err
}

// recompile runs the compilation callback for one stale object behind the
// dependency-recording environment wrapper.
func (o *Orchestrator) recompile(bc *buildContext, sc *scope, bare string, loc resolver.Location, srcStamp depstore.Stamp) error {
	fmt.Fprintf(o.out, "Making %s\n", bare)

	src, err := o.fs.Open(loc.Path())
	if err != nil {
		return fmt.Errorf("open %s: %w", loc.Path(), err)
	}
	defer src.Close()

	frame := newRecordingEnv(o, bc, sc, bare, srcStamp)
	if err := o.compile(src, frame); err != nil {
		return &BuildError{Name: bare, Err: err}
	}
	o.logger.Debug("compiled", "name", bare, "file", loc.Path(), "dependencies", len(frame.deps))
	return nil
}

// locate walks the scope chain innermost-first and returns the first
// resolution hit along with the scope level it was found at.
func (o *Orchestrator) locate(sc *scope, bare string) (resolver.Location, *scope, bool, error) {
	for s := sc; s != nil; s = s.parent {
		loc, found, err := o.res.Resolve(s.dir, bare)
		if err != nil {
			return resolver.Location{}, nil, false, err
		}
		if found {
			return loc, s, true, nil
		}
	}
	return resolver.Location{}, nil, false, nil
}
