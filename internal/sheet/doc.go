// Package sheet integrates a shared spreadsheet with the orchestrator: the
// sheet's CSV export supplies per-module enabled overrides before a run, and
// a webhook receives the run summary afterwards. Both directions are
// best-effort; the registry file remains the source of truth when the sheet
// is unreachable.
package sheet
