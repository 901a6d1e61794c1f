// Package database provides SQLite-based storage for seilist run history.
//
// The HistoryDB stores:
//   - one row per listing run with its outcome and counts
//   - the records each run collected, with a fingerprint of their fields
//
// Comparing the records of two runs shows which processes entered or left
// the unit's control screen, and which changed in between.
//
// The database is a single file opened through modernc.org/sqlite, so the
// binary stays CGO-free.
package database
