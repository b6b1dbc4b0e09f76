package memory

import (
	"context"
	"testing"
)

func TestAppendRowsAccumulates(t *testing.T) {
	w := NewWriter()
	ctx := context.Background()

	if err := w.AppendRows(ctx, "Relatorio", [][]string{{"Data", "Total"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}
	if err := w.AppendRows(ctx, "Relatorio", [][]string{{"10/03/2025", "150,00"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	rows := w.Rows("Relatorio")
	if len(rows) != 2 {
		t.Fatalf("Rows() len = %d, want 2", len(rows))
	}
	if rows[1][1] != "150,00" {
		t.Errorf("rows[1][1] = %q, want %q", rows[1][1], "150,00")
	}
	if w.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", w.Calls())
	}
}

func TestRowsIsolatedPerSheet(t *testing.T) {
	w := NewWriter()
	ctx := context.Background()

	if err := w.AppendRows(ctx, "A", [][]string{{"x"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}
	if got := w.Rows("B"); len(got) != 0 {
		t.Errorf("Rows(B) = %v, want empty", got)
	}
}
