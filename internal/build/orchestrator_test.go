// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlmake/internal/compiler"
	"mlmake/internal/depstore"
	"mlmake/internal/resolver"
	"mlmake/pkg/mlenv"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

// harness wires an orchestrator over an in-memory filesystem with a fake
// clock and captured diagnostics.
type harness struct {
	fs    afero.Fs
	env   *mlenv.Env
	store *depstore.Store
	out   *bytes.Buffer
	clock *fakeClock
	orch  *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fs:    afero.NewMemMapFs(),
		env:   mlenv.New(),
		store: depstore.New(),
		out:   &bytes.Buffer{},
		clock: &fakeClock{t: baseTime.Add(time.Hour)},
	}
	res := resolver.New(h.fs, resolver.Options{
		BaseSuffixes: []string{"", ".sml", ".sig"},
		BinderName:   "ml_bind",
	}, nil)
	h.orch = New(Options{
		FS:       h.fs,
		Resolver: res,
		Env:      h.env,
		Store:    h.store,
		Compile:  compiler.Compile,
		Out:      h.out,
		Now:      h.clock.now,
	})
	return h
}

func (h *harness) write(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, afero.WriteFile(h.fs, path, []byte(content), 0o644))
	require.NoError(t, h.fs.Chtimes(path, mtime, mtime))
}

// drain returns the diagnostics emitted since the last call.
func (h *harness) drain() string {
	s := h.out.String()
	h.out.Reset()
	return s
}

func TestBuildSimpleChain(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open b\nstructure a\n", baseTime)
	h.write(t, "/p/b.sml", "structure b\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))

	want := "Making a\n" +
		"Making b\n" +
		"Created structure b\n" +
		"Created structure a\n"
	assert.Equal(t, want, h.drain())

	deps, ok := h.store.Dependencies("a")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, deps)

	_, ok, _ = h.env.Lookup(mlenv.KindStructure, "a")
	assert.True(t, ok, "structure a should be live in the environment")
	_, ok, _ = h.env.Lookup(mlenv.KindStructure, "b")
	assert.True(t, ok, "structure b should be live in the environment")

	assert.False(t, h.store.Stamp("b").After(h.store.Stamp("a")),
		"a must not be stamped older than its dependency")
}

func TestBuildIsIdempotent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open b\nstructure a\n", baseTime)
	h.write(t, "/p/b.sml", "structure b\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))
	stampA := h.store.Stamp("a")
	stampB := h.store.Stamp("b")
	h.drain()

	require.NoError(t, h.orch.Build("/p/a"))

	assert.Empty(t, h.drain(), "no recompilation expected on an unchanged tree")
	assert.Equal(t, stampA, h.store.Stamp("a"))
	assert.Equal(t, stampB, h.store.Stamp("b"))
}

func TestBuildPropagatesDependencyChange(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open b\nstructure a\n", baseTime)
	h.write(t, "/p/b.sml", "structure b\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))
	firstStampA := h.store.Stamp("a")
	h.drain()

	// Touch only b, then rebuild a: b must be remade, and a with it, even
	// though a.sml itself never changed.
	touched := h.clock.t.Add(time.Minute)
	require.NoError(t, h.fs.Chtimes("/p/b.sml", touched, touched))
	h.clock.t = touched.Add(time.Minute)

	require.NoError(t, h.orch.Build("/p/a"))

	out := h.drain()
	assert.Contains(t, out, "Making b\n")
	assert.Contains(t, out, "Making a\n")

	assert.True(t, h.store.Stamp("a").After(firstStampA), "rebuild must move the stamp forward")
	assert.False(t, h.store.Stamp("b").After(h.store.Stamp("a")))
}

func TestBuildMissingTarget(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	err := h.orch.Build("/missing/x")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "x", notFound.Name)
	assert.Equal(t, "/missing", notFound.Dir)
	assert.Equal(t, "File x not found (directory /missing)\n", h.drain())
}

func TestBuildCycleTerminatesAndWarnsOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open b\nstructure a\n", baseTime)
	h.write(t, "/p/b.sml", "open a\nstructure b\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))

	out := h.drain()
	assert.Equal(t, 1, strings.Count(out, "Circular dependency: a depends on itself\n"))

	// Both objects still complete.
	depsA, _ := h.store.Dependencies("a")
	assert.Equal(t, []string{"b"}, depsA)
	depsB, _ := h.store.Dependencies("b")
	assert.Equal(t, []string{"a"}, depsB)
}

func TestBuildSelfReferenceExcludedFromRecord(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open a\nstructure a\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))

	out := h.drain()
	assert.Equal(t, 1, strings.Count(out, "Circular dependency: a depends on itself\n"))

	deps, ok := h.store.Dependencies("a")
	require.True(t, ok)
	assert.Empty(t, deps, "an object must not appear in its own dependency list")
}

func TestBuildStampDefendsAgainstClockSkew(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	// The local clock lags the file server: source mtimes are "newer" than
	// the wall clock the build observes.
	mtime := baseTime.Add(48 * time.Hour)
	h.write(t, "/p/a.sml", "open b\nstructure a\n", mtime)
	h.write(t, "/p/b.sml", "structure b\n", mtime)
	h.clock.t = baseTime

	require.NoError(t, h.orch.Build("/p/a"))
	h.drain()

	srcStamp := depstore.StampOf(mtime)
	assert.False(t, srcStamp.After(h.store.Stamp("a")), "stamp must cover the source mtime")
	assert.False(t, srcStamp.After(h.store.Stamp("b")))
	assert.False(t, h.store.Stamp("b").After(h.store.Stamp("a")))

	// With stamps covering the skewed mtimes, nothing is stale on rebuild.
	require.NoError(t, h.orch.Build("/p/a"))
	assert.Empty(t, h.drain())
}

func TestBuildUnresolvedNameAssumedLibrary(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open ext\nstructure a\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))

	// The name is still recorded as a dependency; its stamp stays zero so it
	// can never make a look stale.
	deps, _ := h.store.Dependencies("a")
	assert.Equal(t, []string{"ext"}, deps)
	assert.True(t, h.store.Stamp("ext").IsZero())

	h.drain()
	require.NoError(t, h.orch.Build("/p/a"))
	assert.Empty(t, h.drain())
}

func TestBuildDuplicateReferencesRecordedOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open b\nopen b\nstructure a\n", baseTime)
	h.write(t, "/p/b.sml", "structure b\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))

	deps, _ := h.store.Dependencies("a")
	assert.Equal(t, []string{"b"}, deps)
}

func TestBuildCompileFailurePropagates(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "open b\nstructure a\n", baseTime)
	h.write(t, "/p/b.sml", "this is not a directive\n", baseTime)

	err := h.orch.Build("/p/a")

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "a", buildErr.Name, "failure surfaces through the dependent chain")

	var inner *BuildError
	require.ErrorAs(t, buildErr.Err, &inner)
	assert.Equal(t, "b", inner.Name)

	var syntaxErr *compiler.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr), "root cause should be the compiler's error")

	out := h.drain()
	assert.Contains(t, out, "Making a\n")
	assert.Contains(t, out, "Making b\n")
	assert.NotContains(t, out, "Created")

	// Neither object got a record: a rebuild is re-attempted next invocation.
	_, ok := h.store.Dependencies("a")
	assert.False(t, ok)
	_, ok = h.store.Dependencies("b")
	assert.False(t, ok)
}

func TestBuildDirectoryTarget(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/lib/ml_bind", "open util\nopen shared\nstructure lib\n", baseTime)
	h.write(t, "/p/lib/util.sml", "structure util\n", baseTime)
	h.write(t, "/p/shared.sml", "structure shared\n", baseTime)

	require.NoError(t, h.orch.Build("/p/lib"))

	// util resolves inside the directory, shared via the enclosing scope.
	deps, ok := h.store.Dependencies("lib")
	require.True(t, ok)
	assert.Equal(t, []string{"util", "shared"}, deps)

	out := h.drain()
	assert.Contains(t, out, "Making lib\n")
	assert.Contains(t, out, "Making util\n")
	assert.Contains(t, out, "Making shared\n")
}

func TestBuildFileTargetRestrictsSiblingsToOwnDirectory(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/sub/a.sml", "open shared\nstructure a\n", baseTime)
	// shared exists only in the parent directory, which a single-file
	// target's sibling lookups never reach.
	h.write(t, "/p/shared.sml", "structure shared\n", baseTime)

	require.NoError(t, h.orch.Build("/p/sub/a"))

	assert.NotContains(t, h.drain(), "Making shared")
	assert.True(t, h.store.Stamp("shared").IsZero())
}

func TestBuildMonotonicStamps(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.write(t, "/p/a.sml", "structure a\n", baseTime)

	require.NoError(t, h.orch.Build("/p/a"))
	first := h.store.Stamp("a")

	touched := h.clock.t.Add(time.Minute)
	require.NoError(t, h.fs.Chtimes("/p/a.sml", touched, touched))
	h.clock.t = touched.Add(time.Minute)

	require.NoError(t, h.orch.Build("/p/a"))
	second := h.store.Stamp("a")

	assert.True(t, second.After(first))
}
