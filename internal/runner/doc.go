// Package runner executes one notebook module as an isolated child process.
//
// The interpreter is chosen from the entry script's extension, stdout and
// stderr are captured for diagnostics, and produced PDFs are collected from
// the module's output directory (newest file per base name, since modules
// timestamp their outputs). Every failure mode, from a missing entry script
// to a non-zero exit, becomes a Failed result; the runner never lets a module
// crash the batch.
package runner
