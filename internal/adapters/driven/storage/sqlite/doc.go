// Package sqlite persists materialized nodes and the sync run history in
// one SQLite database, using the pure Go modernc.org/sqlite driver.
//
// Each node is one row keyed by its logical id, with the document body
// stored as JSON. The schema is created by the numbered .up.sql files in
// migrations/, applied in order on open.
//
// The database lives at ~/.lakesync/data/lakesync.db unless a data
// directory is given. It is opened in WAL mode with a busy timeout, so
// the MCP server and a running sync can share it.
package sqlite
