// Package services defines the shared error taxonomy and context annotations
// used across labbook components.
//
// Sentinel errors distinguish fatal configuration problems from recoverable
// per-module failures and report-compilation errors; Wrap attaches component
// and operation context while preserving errors.Is classification. Context
// helpers carry module, run, and component identifiers so structured logs stay
// consistent without threading extra parameters through every call.
package services
