// Package logging builds the slog loggers used throughout labbook.
//
// Console and JSON handlers share a level variable and output fanout; the
// console format keeps lines terse for interactive runs while JSON serves the
// mirrored log file. Context helpers attach standardized fields (component,
// module_id, run_id) so every component logs consistently.
package logging
