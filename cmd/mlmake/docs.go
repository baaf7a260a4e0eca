// SPDX-License-Identifier: MPL-2.0

package main

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs.md
var manual string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the mlmake manual",
	RunE: func(cmd *cobra.Command, _ []string) error {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return fmt.Errorf("creating renderer: %w", err)
		}
		rendered, err := renderer.Render(manual)
		if err != nil {
			return fmt.Errorf("rendering manual: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}
