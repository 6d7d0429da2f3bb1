// Package database provides SQLite-based storage for build run history.
//
// This package implements the RunDB, which stores:
//   - One row per pipeline run with the complete report as JSON
//   - Per-stage result rows with commands, exit codes, and durations
//
// SQLite (via modernc.org/sqlite) keeps the history in a single file under
// the user's data directory, needs no external service, and cross-compiles
// without CGO. WAL mode gives good concurrent read performance when a build
// is writing while another process lists history.
package database
