package report

import (
	"strings"
	"testing"

	"despesas/internal/core"
)

func TestExportTable(t *testing.T) {
	records := []core.Record{
		rec("Colina B1", "2024-03-01", core.StatusUnpaid, map[string]int64{"condominio": 10000, "luz": 5000}),
		rec("Colina B1", "2024-03-15", core.StatusPaid, map[string]int64{"agua": 2000}),
	}
	loc := DefaultLocale()
	table := ExportTable(records, Columns(records), loc)

	if len(table) != 4 { // header + 2 data rows + totals
		t.Fatalf("expected 4 rows, got %d", len(table))
	}

	header := table[0]
	wantHeader := []string{"Data", "Categoria", "Status", "Condomínio", "Luz", "Água", "Total"}
	if strings.Join(header, "|") != strings.Join(wantHeader, "|") {
		t.Fatalf("header mismatch: %v", header)
	}

	first := table[1]
	if first[0] != "01/03/2024" || first[1] != "Colina B1" || first[2] != "À Pagar" {
		t.Fatalf("first row prefix wrong: %v", first)
	}
	if first[3] != "100,00" || first[4] != "50,00" || first[5] != "0,00" || first[6] != "150,00" {
		t.Fatalf("first row amounts wrong: %v", first)
	}

	second := table[2]
	if second[2] != "Pago" || second[5] != "20,00" || second[6] != "20,00" {
		t.Fatalf("second row wrong: %v", second)
	}

	totals := table[3]
	if totals[0] != "TOTAL GERAL" || totals[6] != "170,00" {
		t.Fatalf("totals row wrong: %v", totals)
	}
	if totals[3] != "100,00" || totals[4] != "50,00" || totals[5] != "20,00" {
		t.Fatalf("column totals wrong: %v", totals)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	records := []core.Record{
		rec("Colina B1", "2024-03-01", "", map[string]int64{"condominio": 10000}),
		rec("D'Azur", "2024-03-02", core.StatusPaid, map[string]int64{"gas": 500}),
		rec("Aluguel Bahia Marina", "2024-03-03", "", map[string]int64{"vagaLanchaRole": 250000}),
	}
	loc := DefaultLocale()
	table := ExportTable(records, Columns(records), loc)

	var sb strings.Builder
	if err := WriteCSV(&sb, table, loc); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("output must start with a UTF-8 BOM")
	}

	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(out, "\uFEFF"), "\n"), "\n")
	// Header, one line per record, totals.
	if len(lines) != len(records)+2 {
		t.Fatalf("expected %d lines, got %d", len(records)+2, len(lines))
	}
	width := len(strings.Split(lines[0], ";"))
	for i, line := range lines {
		if got := len(strings.Split(line, ";")); got != width {
			t.Fatalf("line %d: expected %d columns, got %d (%q)", i, width, got, line)
		}
	}
}

func TestWriteCSVEscapesDelimiter(t *testing.T) {
	table := [][]string{{"a;b", `say "hi"`, "plain"}}
	var sb strings.Builder
	if err := WriteCSV(&sb, table, DefaultLocale()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	got := strings.TrimPrefix(strings.TrimRight(sb.String(), "\n"), "\uFEFF")
	want := `"a;b";"say ""hi""";plain`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExportTableUnknownProperty(t *testing.T) {
	records := []core.Record{
		rec("Chalé Legado", "2024-03-01", "", map[string]int64{"luz": 5000}),
	}
	table := ExportTable(records, Columns(records), DefaultLocale())
	// No schema: no field columns, zero total, no error.
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	row := table[1]
	if row[len(row)-1] != "0,00" {
		t.Fatalf("unknown property must total 0,00, got %q", row[len(row)-1])
	}
}
