package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/automatizamg/seilist/internal/model"
)

// TableWriter prints the run as console tables: a per-group summary and,
// unless disabled, one line per process.
type TableWriter struct {
	baseWriter

	// summaryOnly skips the process table.
	summaryOnly bool

	// maxWidth truncates long text cells. Zero disables truncation.
	maxWidth int
}

// TableWriterOption configures a TableWriter.
type TableWriterOption func(*TableWriter)

// WithSummaryOnly prints only the per-group summary.
func WithSummaryOnly(only bool) TableWriterOption {
	return func(w *TableWriter) {
		w.summaryOnly = only
	}
}

// WithMaxWidth truncates text cells to n runes.
func WithMaxWidth(n int) TableWriterOption {
	return func(w *TableWriter) {
		w.maxWidth = n
	}
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer, opts ...TableWriterOption) *TableWriter {
	w := &TableWriter{
		baseWriter: newBaseWriter(output),
		maxWidth:   40,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the tables.
func (w *TableWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Unit: %s", dash(run.ActiveUnit))
	if run.UnitSwitched {
		sb.WriteString(" (switched)")
	}
	fmt.Fprintf(&sb, "  Duration: %s  Status: %s\n", run.Duration().Round(time.Second), plainStatus(run))

	summary := table.NewWriter()
	summary.SetOutputMirror(&sb)
	summary.AppendHeader(table.Row{"Group", "Announced", "Pages", "Extracted", "Skipped", "Duplicates", "Listed"})
	for _, c := range model.Categories {
		g := run.Stats(c)
		summary.AppendRow(table.Row{c.String(), g.Total, g.Pages, g.Extracted, g.Skipped, g.Duplicates, run.Records.CountByCategory(c)})
	}
	summary.AppendFooter(table.Row{"Total", "", "", "", "", "", run.RecordCount()})
	summary.SetStyle(table.StyleRounded)
	summary.Render()

	if !w.summaryOnly && run.RecordCount() > 0 {
		records := table.NewWriter()
		records.SetOutputMirror(&sb)
		records.AppendHeader(table.Row{"#", "Process", "Group", "Viewed", "Title", "Assigned To", "Markers"})
		for i, r := range run.Records.Records() {
			records.AppendRow(table.Row{
				strconv.Itoa(i + 1),
				r.Number,
				r.Category.String(),
				yesNo(r.Viewed),
				w.cell(r.Title),
				w.cell(r.ResponsibleName),
				w.cell(strings.Join(r.Markers, MarkerSeparator)),
			})
		}
		records.SetStyle(table.StyleRounded)
		records.Render()
	}

	return io.WriteString(w.output, sb.String())
}

func (w *TableWriter) cell(s string) string {
	if w.maxWidth > 0 {
		return truncateString(s, w.maxWidth)
	}
	return s
}

func plainStatus(run *model.Run) string {
	switch {
	case run.Canceled:
		return "interrupted"
	case run.ErrorMessage != "":
		return "failed"
	default:
		return "complete"
	}
}
