package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/automatizamg/seilist/internal/model"
)

// JSONWriter outputs runs in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the seilist version recorded in the document.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the document written by JSONWriter: run metadata and the
// records in collection order.
type JSONReport struct {
	// Version is the seilist version that generated this report.
	Version string `json:"version,omitempty"`

	// Run holds the run metadata and per-group statistics.
	Run *model.Run `json:"run"`

	// DurationSeconds is the run duration.
	DurationSeconds float64 `json:"duration_seconds"`

	// Counts maps each category to the number of records listed in it.
	Counts map[model.Category]int `json:"counts"`

	// Records are the collected processes.
	Records []model.Record `json:"records"`
}

// NewJSONReport builds the document for run.
func NewJSONReport(run *model.Run, version string) *JSONReport {
	counts := make(map[model.Category]int, len(model.Categories))
	for _, c := range model.Categories {
		counts[c] = run.Records.CountByCategory(c)
	}
	return &JSONReport{
		Version:         version,
		Run:             run,
		DurationSeconds: run.Duration().Round(time.Millisecond).Seconds(),
		Counts:          counts,
		Records:         run.Records.Records(),
	}
}

// Write outputs the run in JSON format.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	var data []byte
	var err error

	report := NewJSONReport(run, w.version)
	if w.indent {
		data, err = json.MarshalIndent(report, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(report)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
