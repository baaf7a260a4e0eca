// SPDX-License-Identifier: MPL-2.0

package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"mlmake/internal/build"
	"mlmake/internal/compiler"
	"mlmake/internal/config"
	"mlmake/internal/depstore"
	"mlmake/internal/resolver"
	"mlmake/pkg/mlenv"
)

// session holds the process-lifetime build state: the shared naming
// environment and the dependency/timestamp store outlive individual build
// invocations, exactly as they do inside the interactive environment.
type session struct {
	env   *mlenv.Env
	store *depstore.Store
	orch  *build.Orchestrator
}

// newSession wires a session over the host filesystem. Diagnostics go to
// out; tracing goes to stderr when verbose.
func newSession(cfg *config.Config, out io.Writer) *session {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "mlmake",
	})
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	fsys := afero.NewOsFs()
	res := resolver.New(fsys, resolver.Options{
		BaseSuffixes:     cfg.Suffixes,
		ArchQualifier:    cfg.ArchQualifier,
		VersionQualifier: cfg.VersionQualifier,
		BinderName:       cfg.Binder,
	}, logger)

	env := mlenv.New()
	store := depstore.New()
	orch := build.New(build.Options{
		FS:       fsys,
		Resolver: res,
		Env:      env,
		Store:    store,
		Compile:  compiler.Compile,
		Out:      out,
		Logger:   logger,
	})

	return &session{env: env, store: store, orch: orch}
}

// buildAll builds each target in order, stopping at the first failure.
func (s *session) buildAll(targets []string) error {
	for _, target := range targets {
		if err := s.orch.Build(target); err != nil {
			return err
		}
	}
	return nil
}
