// Package database provides SQLite-based storage for locascan.
//
// This package implements the SessionDB, which stores finished scan
// sessions: summary metadata in queryable columns and the complete
// report as JSON. Keeping history lets teams watch the gap count trend
// toward zero across releases.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
