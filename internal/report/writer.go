package report

import (
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/automatizamg/seilist/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write exports the run to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.Run) (int, error)
}

// Columns is the header of the exported listing, one entry per record field.
var Columns = []string{
	"numero_processo",
	"categoria",
	"visualizado",
	"titulo",
	"tipo_especificidade",
	"responsavel_nome",
	"responsavel_cpf",
	"marcadores",
	"tem_documentos_novos",
	"tem_anotacoes",
	"id_procedimento",
	"hash",
	"url",
}

// MarkerSeparator joins marker labels into a single cell.
const MarkerSeparator = "; "

// Row returns the cells of r in Columns order.
func Row(r model.Record) []string {
	return []string{
		r.Number,
		r.Category.String(),
		yesNo(r.Viewed),
		r.Title,
		r.Type,
		r.ResponsibleName,
		r.ResponsibleID,
		strings.Join(r.Markers, MarkerSeparator),
		yesNo(r.HasNewDocuments),
		yesNo(r.HasAnnotations),
		r.ID,
		r.Hash,
		r.URL,
	}
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

// MultiWriter writes to multiple Writers concurrently.
// The run must not change while Write is in progress.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write exports the run with every writer and returns the total bytes
// written. All writers run to completion; the first error is returned.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var (
		g     errgroup.Group
		mu    sync.Mutex
		total int
	)
	for _, w := range m.writers {
		g.Go(func() error {
			n, err := w.Write(run)
			mu.Lock()
			total += n
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	return total, err
}

// Len returns the number of writers.
func (m *MultiWriter) Len() int {
	return len(m.writers)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
