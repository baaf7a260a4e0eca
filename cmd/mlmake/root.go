// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"mlmake/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "mlmake",
		Short: "Incremental builds for the interactive ML environment",
		Long: TitleStyle.Render("mlmake") + SubtitleStyle.Render(" - incremental builds for the interactive ML environment") + `

mlmake rebuilds a target when its source, or any dependency discovered
during its last compilation, is newer than its recorded build. Dependencies
are found lazily: every external structure, signature or functor the
compiler resolves triggers a recursive build of that name.

` + SubtitleStyle.Render("Examples:") + `
  mlmake build lib/core      Bring lib/core up to date
  mlmake graph lib/core      Build, then dump the dependency records as TOML
  mlmake docs                Show the manual`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/mlmake/config.toml)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(docsCmd)
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// loadConfig reads the configuration, honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
