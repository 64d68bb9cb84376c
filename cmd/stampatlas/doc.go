// Package main hosts the stampatlas CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, merges transcript
// timestamps into an Atlas.ti export, writes the coding report, and records
// each run in the history database. It also exposes read-only views of an
// export and of past runs.
//
// Keep this package thin: matching, document handling, and persistence live in
// the internal packages, and commands here only wire them together and render
// results for the terminal.
package main
