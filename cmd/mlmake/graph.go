// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"mlmake/internal/depstore"
)

var graphOut string

// graphDoc is the TOML shape written by the graph command: one [[object]]
// block per recorded build. Export only; the records are never read back.
type graphDoc struct {
	Objects []depstore.Record `toml:"object"`
}

var graphCmd = &cobra.Command{
	Use:   "graph <target>...",
	Short: "Build targets, then dump the recorded dependency graph as TOML",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s := newSession(cfg, cmd.OutOrStdout())
		if err := s.buildAll(args); err != nil {
			return err
		}

		data, err := toml.Marshal(graphDoc{Objects: s.store.Snapshot()})
		if err != nil {
			return fmt.Errorf("encoding dependency graph: %w", err)
		}

		if graphOut == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(graphOut, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", graphOut, err)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVarP(&graphOut, "out", "o", "", "write the TOML graph to a file instead of stdout")
}
