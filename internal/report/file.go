package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/automatizamg/seilist/internal/model"
)

// FileWriter creates a file and delegates to a format writer bound to it.
// The file is created only when Write is called.
type FileWriter struct {
	path    string
	newFunc func(io.Writer) Writer
}

// NewFileWriter returns a Writer that writes the format produced by
// newFunc to path, creating parent directories as needed.
func NewFileWriter(path string, newFunc func(io.Writer) Writer) *FileWriter {
	return &FileWriter{path: path, newFunc: newFunc}
}

// Path returns the destination file.
func (w *FileWriter) Path() string {
	return w.path
}

// Write creates the file and exports the run into it.
func (w *FileWriter) Write(run *model.Run) (n int, err error) {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o750); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", w.path, err)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", w.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", w.path, cerr)
		}
	}()
	return w.newFunc(f).Write(run)
}
