// Package database stores snapshot history in SQLite (modernc.org/sqlite,
// no cgo).
//
// Every recorded snapshot gets a ULID, so IDs sort in the order snapshots
// were taken. The per-service rows keep the full record as JSON next to the
// columns used for queries (name, status).
package database
