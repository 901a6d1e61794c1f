package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/automatizamg/seilist/internal/model"
)

const (
	// SheetName is the name of the worksheet holding the listing.
	SheetName = "Processos"

	// DefaultFileName is used when the output path names a directory.
	DefaultFileName = "processos.xlsx"

	xlsxExt      = ".xlsx"
	defaultSheet = "Sheet1"
	columnWidth  = 22
)

// XLSXWriter writes the listing as a spreadsheet: a header row followed
// by one row per record, in collection order.
type XLSXWriter struct {
	baseWriter
	logger *slog.Logger
}

// XLSXWriterOption configures an XLSXWriter.
type XLSXWriterOption func(*XLSXWriter)

// WithXLSXLogger sets the logger used for the empty-listing warning.
func WithXLSXLogger(logger *slog.Logger) XLSXWriterOption {
	return func(w *XLSXWriter) {
		w.logger = logger
	}
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer, opts ...XLSXWriterOption) *XLSXWriter {
	w := &XLSXWriter{
		baseWriter: newBaseWriter(output),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the workbook. A run without records still produces the
// header row.
func (w *XLSXWriter) Write(run *model.Run) (int, error) {
	records := run.Records.Records()
	if len(records) == 0 {
		w.logger.Warn("no processes found; the spreadsheet has only the header row")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return 0, fmt.Errorf("open stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, len(Columns), columnWidth); err != nil {
		return 0, fmt.Errorf("set column width: %w", err)
	}
	if err := sw.SetRow("A1", cells(Columns), excelize.RowOpts{StyleID: bold}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := sw.SetRow(cell, cells(Row(r))); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return 0, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return 0, fmt.Errorf("encode workbook: %w", err)
	}
	n, err := buf.WriteTo(w.output)
	return int(n), err
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// ResolveOutputPath turns the requested output location into the file the
// spreadsheet is written to, and creates its parent directories.
//
// An existing directory, or a path ending in a separator, receives
// DefaultFileName. Any other extension is replaced by ".xlsx".
// A leading "~" is expanded to the home directory.
func ResolveOutputPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty output path")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) || isDir(path) {
		path = filepath.Join(path, DefaultFileName)
	} else if ext := filepath.Ext(path); !strings.EqualFold(ext, xlsxExt) {
		path = strings.TrimSuffix(path, ext) + xlsxExt
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return path, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
