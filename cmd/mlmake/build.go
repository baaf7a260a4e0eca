// SPDX-License-Identifier: MPL-2.0

package main

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <target>...",
	Short: "Bring targets up to date",
	Long: `Build each named target, recompiling it and any stale dependency.

A target is a path whose last element is the bare object name: "lib/core"
looks for core with each configured suffix inside lib, or for a directory
lib/core compiled through its binder file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s := newSession(cfg, cmd.OutOrStdout())
		return s.buildAll(args)
	},
}
