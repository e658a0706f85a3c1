// Package main hosts the labbook CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into registry
// loads, module runs, report compilation, run history queries, and
// configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
