package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// SnapshotWriter saves raw pages for offline debugging. Pages are written
// back in ISO-8859-1, the encoding the portal serves, so a saved file
// opens the same way the original response would.
type SnapshotWriter struct {
	dir    string
	logger *slog.Logger
}

// NewSnapshotWriter returns a writer storing files under dir.
func NewSnapshotWriter(dir string, logger *slog.Logger) *SnapshotWriter {
	return &SnapshotWriter{dir: dir, logger: logger}
}

// Write stores markup as dir/name. Errors are logged as warnings.
func (w *SnapshotWriter) Write(name, markup string) {
	path, err := w.write(name, markup)
	if err != nil {
		w.logger.Warn("failed to save debug snapshot", "file", name, "error", err)
		return
	}
	w.logger.Debug("saved debug snapshot", "path", path)
}

func (w *SnapshotWriter) write(name, markup string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	data, err := enc.String(markup)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	path := filepath.Join(w.dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
