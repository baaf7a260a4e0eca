// SPDX-License-Identifier: MPL-2.0

// mlmake is the incremental build orchestrator of the interactive ML
// environment, packaged as a standalone CLI. Given target names it rebuilds
// exactly the stale subset of the dependency graph, discovering edges during
// compilation.
package main

func main() {
	execute()
}
