package database

import (
	"context"
	"slices"

	"github.com/automatizamg/seilist/internal/model"
)

// Change is a record present in both runs whose fingerprint differs.
type Change struct {
	Old model.Record
	New model.Record
}

// Fields returns the names of the exported fields that differ.
func (c Change) Fields() []string {
	var fields []string
	add := func(name string, changed bool) {
		if changed {
			fields = append(fields, name)
		}
	}
	add("categoria", c.Old.Category != c.New.Category)
	add("visualizado", c.Old.Viewed != c.New.Viewed)
	add("titulo", c.Old.Title != c.New.Title)
	add("tipo_especificidade", c.Old.Type != c.New.Type)
	add("responsavel_nome", c.Old.ResponsibleName != c.New.ResponsibleName)
	add("responsavel_cpf", c.Old.ResponsibleID != c.New.ResponsibleID)
	add("marcadores", !slices.Equal(c.Old.Markers, c.New.Markers))
	add("tem_documentos_novos", c.Old.HasNewDocuments != c.New.HasNewDocuments)
	add("tem_anotacoes", c.Old.HasAnnotations != c.New.HasAnnotations)
	add("numero_processo", c.Old.Number != c.New.Number)
	return fields
}

// RunDiff compares the records of two runs by identity.
type RunDiff struct {
	Old RunSummary
	New RunSummary

	// Added are records only in the newer run, in its order.
	Added []model.Record

	// Removed are records only in the older run, in its order.
	Removed []model.Record

	// Changed are records in both runs with different fingerprints.
	Changed []Change

	// Unchanged counts records present in both runs with equal fingerprints.
	Unchanged int
}

// Empty reports whether the two runs listed the same records.
func (d *RunDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares the runs identified by oldID and newID (IDs or prefixes).
func (h *HistoryDB) Diff(ctx context.Context, oldID, newID string) (*RunDiff, error) {
	oldRun, err := h.FindRun(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newRun, err := h.FindRun(ctx, newID)
	if err != nil {
		return nil, err
	}
	return h.diffRuns(ctx, *oldRun, *newRun)
}

// DiffLatest compares the two most recent runs.
func (h *HistoryDB) DiffLatest(ctx context.Context) (*RunDiff, error) {
	runs, err := h.ListRuns(ctx, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, ErrNotEnoughRuns
	}
	return h.diffRuns(ctx, runs[1], runs[0])
}

func (h *HistoryDB) diffRuns(ctx context.Context, oldRun, newRun RunSummary) (*RunDiff, error) {
	oldRecords, err := h.Records(ctx, oldRun.ID)
	if err != nil {
		return nil, err
	}
	newRecords, err := h.Records(ctx, newRun.ID)
	if err != nil {
		return nil, err
	}

	d := DiffRecords(oldRecords, newRecords)
	d.Old = oldRun
	d.New = newRun
	return d, nil
}

// DiffRecords compares two record lists by identity and fingerprint.
func DiffRecords(oldRecords, newRecords []model.Record) *RunDiff {
	d := &RunDiff{}

	previous := make(map[string]model.Record, len(oldRecords))
	for _, r := range oldRecords {
		previous[r.Identity()] = r
	}
	current := make(map[string]struct{}, len(newRecords))

	for _, r := range newRecords {
		id := r.Identity()
		current[id] = struct{}{}
		old, ok := previous[id]
		switch {
		case !ok:
			d.Added = append(d.Added, r)
		case old.Fingerprint() != r.Fingerprint():
			d.Changed = append(d.Changed, Change{Old: old, New: r})
		default:
			d.Unchanged++
		}
	}
	for _, r := range oldRecords {
		if _, ok := current[r.Identity()]; !ok {
			d.Removed = append(d.Removed, r)
		}
	}
	return d
}
