// Package model defines the data structures shared by every stage of a
// listing run.
//
// This package contains the following main types:
//   - Record: one process row listed on the control screen
//   - RecordSet: the first-seen-wins aggregate of records across pages
//   - PaginationInfo: the page geometry of one result group
//   - Run: the state and statistics of a single listing run
//   - Error: the tagged domain error (config, auth, listing)
//
// The types carry JSON tags because runs are stored in the history
// database and may be exported as JSON.
package model
