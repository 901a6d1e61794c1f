package database

import "errors"

var (
	// ErrRunNotFound is returned when no stored run matches an ID or prefix.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an ID prefix matches several runs.
	ErrAmbiguousRunID = errors.New("run id prefix matches more than one run")

	// ErrNotEnoughRuns is returned by DiffLatest when fewer than two runs exist.
	ErrNotEnoughRuns = errors.New("at least two runs are needed for a diff")
)
