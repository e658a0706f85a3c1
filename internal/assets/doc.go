// Package assets downloads shared drive drawings, documents, and files
// referenced by notebook modules into a local cache. Drawings are always
// re-exported; everything else is reused once cached.
package assets
