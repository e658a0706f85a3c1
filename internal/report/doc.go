// Package report compiles per-module artifacts into one notebook PDF.
//
// The compiler walks the run summary in execution order, keeps only
// artifacts from successful modules, and delegates the actual concatenation
// to an external merge tool (pdfunite or ghostscript). Compiling with zero
// artifacts is a hard error rather than an empty document.
package report
