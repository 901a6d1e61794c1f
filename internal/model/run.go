package model

import (
	"time"

	"github.com/google/uuid"
)

// GroupStats counts what happened while collecting one result group.
type GroupStats struct {
	// Total is the record count announced by the portal for the group.
	Total int `json:"total"`

	// Pages is the number of pages fetched, including the first one.
	Pages int `json:"pages"`

	// Rows is the number of candidate rows seen.
	Rows int `json:"rows"`

	// Extracted is the number of rows that produced a record.
	Extracted int `json:"extracted"`

	// Skipped is the number of rows dropped: no process link, no process
	// number, or a failure while reading the row.
	Skipped int `json:"skipped"`

	// Duplicates is the number of extracted records already in the set.
	Duplicates int `json:"duplicates"`
}

// Run holds the state of one listing run from login to export.
type Run struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended. Zero while running.
	FinishedAt time.Time `json:"finished_at"`

	// OrgCode is the tenant code sent in the selector cookie.
	OrgCode string `json:"org_code"`

	// TargetUnit is the unit the run asked for.
	TargetUnit string `json:"target_unit"`

	// ActiveUnit is the unit the records were listed under.
	ActiveUnit string `json:"active_unit"`

	// UnitSwitched is true when a unit switch was performed successfully.
	UnitSwitched bool `json:"unit_switched"`

	// Groups holds per-group statistics keyed by category.
	Groups map[Category]*GroupStats `json:"groups"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Records is the aggregate record set.
	Records *RecordSet `json:"-"`

	// LoginHTML is the page returned by a successful login.
	LoginHTML string `json:"-"`

	// ControlHTML is the most recent control screen markup.
	ControlHTML string `json:"-"`

	// ControlURL is the URL the control screen was loaded from. It is the
	// Referer of every page-advance request.
	ControlURL string `json:"-"`

	// Canceled is true when the run stopped because its context ended.
	Canceled bool `json:"canceled"`

	// Error is the failure that ended the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for storage.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewRun returns a run started now with an empty record set.
func NewRun(orgCode, targetUnit string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		OrgCode:    orgCode,
		TargetUnit: targetUnit,
		Groups:     make(map[Category]*GroupStats),
		Records:    NewRecordSet(),
	}
}

// Group returns the statistics of c, creating them on first use.
func (r *Run) Group(c Category) *GroupStats {
	g, ok := r.Groups[c]
	if !ok {
		g = &GroupStats{}
		r.Groups[c] = g
	}
	return g
}

// Stats returns a copy of the statistics of c without creating them.
func (r *Run) Stats(c Category) GroupStats {
	if g, ok := r.Groups[c]; ok {
		return *g
	}
	return GroupStats{}
}

// MarkStep records that a pipeline step completed.
func (r *Run) MarkStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// Finish stamps the end time and stores err.
func (r *Run) Finish(err error) {
	r.FinishedAt = time.Now()
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Duration returns how long the run took, or has taken so far.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordCount returns the number of distinct records collected.
func (r *Run) RecordCount() int {
	if r.Records == nil {
		return 0
	}
	return r.Records.Len()
}
