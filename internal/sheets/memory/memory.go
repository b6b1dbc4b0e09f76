// Package memory is an in-memory ReportWriter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	ports "despesas/internal/sheets"
)

type Writer struct {
	mu    sync.Mutex
	rows  map[string][][]string
	calls int
}

var _ ports.ReportWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{rows: make(map[string][][]string)}
}

func (w *Writer) AppendRows(_ context.Context, sheetTitle string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	w.rows[sheetTitle] = append(w.rows[sheetTitle], rows...)
	return nil
}

// Rows returns a copy of everything appended to the named sheet.
func (w *Writer) Rows(sheetTitle string) [][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	src := w.rows[sheetTitle]
	out := make([][]string, len(src))
	for i, row := range src {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (w *Writer) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}
