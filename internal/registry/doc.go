// Package registry loads and validates the declarative module registry.
//
// The registry file maps module IDs to directories, enabled flags, and
// priorities, with optional nested submodule groups. Load flattens the
// nesting into one ordered descriptor list; execution order is ascending
// priority with ID tie-breaks, and that order is the single sequencing
// authority for the orchestrator and the report compiler.
//
// Duplicate IDs, missing entry scripts, and non-numeric priorities are
// configuration errors that abort before any module runs. External overrides
// (a shared spreadsheet) may flip the Enabled flag only; ApplyOverrides keeps
// every other field untouched. Discover can seed a registry from a notebook
// directory tree, but the written file remains the source of truth.
package registry
