// Package main hosts the voicejudge CLI entrypoint and command graph.
//
// The Cobra-based command tree runs participant sessions at a testing
// station, checks that a station is ready, summarizes the session archive,
// extracts acoustic features for a stimulus set, and scaffolds configuration.
// It centralizes configuration resolution and logging setup so subcommands
// can focus on wiring the internal packages together.
package main
