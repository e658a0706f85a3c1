// Package orchestrator sequences module execution for one notebook run.
//
// RunAll filters the registry down to the requested selection, walks it in
// ascending priority order, and hands each descriptor to the runner one at a
// time. There is no fail-fast: a broken module is recorded in the summary and
// the batch continues. The only errors RunAll itself returns are
// configuration problems (unknown selection IDs) and lock contention, both
// raised before any module starts.
package orchestrator
