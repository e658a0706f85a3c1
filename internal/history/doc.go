// Package history stores run summaries and the fetched-asset index in a
// local SQLite database. The schema is managed through embedded
// migrations applied at open time.
package history
