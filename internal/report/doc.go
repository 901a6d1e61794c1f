// Package report exports the result of a listing run.
//
// This package contains writers for different output formats:
//   - XLSXWriter: the spreadsheet with one row per process
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: a run summary for sharing
//   - TableWriter: a console table for terminal display
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
