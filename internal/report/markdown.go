package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/automatizamg/seilist/internal/model"
)

// MarkdownWriter outputs a run summary in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeSummary(md, run)
	w.writeRecords(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("SEI Process Listing")
	md.PlainText("")

	active := run.ActiveUnit
	if active == "" {
		active = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Organization", "`" + run.OrgCode + "`"},
			{"Target Unit", run.TargetUnit},
			{"Active Unit", active},
			{"Unit Switched", yesNo(run.UnitSwitched)},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Duration().Round(time.Second).String()},
			{"Status", statusText(run)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on run state.
func statusText(run *model.Run) string {
	switch {
	case run.Canceled:
		return "⚠️ Interrupted (partial results)"
	case run.ErrorMessage != "":
		return "❌ Error - " + run.ErrorMessage
	default:
		return "✅ Complete"
	}
}

// writeSummary writes the per-group statistics section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, run *model.Run) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Categories)+1)
	for _, c := range model.Categories {
		g := run.Stats(c)
		rows = append(rows, []string{
			c.String(),
			strconv.Itoa(g.Total),
			strconv.Itoa(g.Pages),
			strconv.Itoa(g.Extracted),
			strconv.Itoa(g.Skipped),
			strconv.Itoa(g.Duplicates),
			strconv.Itoa(run.Records.CountByCategory(c)),
		})
	}
	rows = append(rows, []string{"**Total**", "", "", "", "", "", "**" + strconv.Itoa(run.RecordCount()) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Group", "Announced", "Pages", "Extracted", "Skipped", "Duplicates", "Listed"},
		Rows:   rows,
	})
	md.PlainText("")

	if run.RecordCount() > 0 {
		w.writePieChart(md, run)
	}
	w.writeAlert(md, run)
}

// writePieChart writes a mermaid pie chart of records per group.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, run *model.Run) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Processes by Group"),
		piechart.WithShowData(true),
	)
	for _, c := range model.Categories {
		if n := run.Records.CountByCategory(c); n > 0 {
			chart.LabelAndIntValue(c.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the outcome of the run.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.Run) {
	switch {
	case run.ErrorMessage != "" && !run.Canceled:
		md.Cautionf("The run failed: %s", run.ErrorMessage)
	case run.Canceled:
		md.Warningf("The run was interrupted. %d process(es) were collected before it stopped.", run.RecordCount())
	case run.TargetUnit != "" && !run.UnitSwitched && run.ActiveUnit != "" && !sameUnitText(run.ActiveUnit, run.TargetUnit):
		md.Importantf("Processes were listed under %s instead of %s.", run.ActiveUnit, run.TargetUnit)
	case run.RecordCount() == 0:
		md.Note("No processes were listed for the unit.")
	default:
		md.Tip(fmt.Sprintf("%d process(es) listed.", run.RecordCount()))
	}
	md.PlainText("")
}

func sameUnitText(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), ""), strings.Join(strings.Fields(b), ""))
}

// writeRecords writes the record table.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, run *model.Run) {
	md.H2("Processes")
	md.PlainText("")

	records := run.Records.Records()
	if len(records) == 0 {
		md.PlainText("No processes listed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			"[" + r.Number + "](" + r.URL + ")",
			r.Category.String(),
			yesNo(r.Viewed),
			truncateString(dash(r.Title), 50),
			truncateString(dash(r.ResponsibleName), 40),
			truncateString(dash(strings.Join(r.Markers, MarkerSeparator)), 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Process", "Group", "Viewed", "Title", "Assigned To", "Markers"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by seilist*")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
