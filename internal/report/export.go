package report

import (
	"bufio"
	"io"
	"strings"

	"despesas/internal/core"
)

// Locale fixes the separators used when rendering an export. The defaults
// target Brazilian Excel: semicolon columns, comma decimals. Whatever the
// choice, rendered numbers never contain the column delimiter, and any
// cell that does is quoted by WriteCSV.
type Locale struct {
	Delimiter  rune
	DecimalSep rune
}

// DefaultLocale is pt-BR spreadsheet formatting.
func DefaultLocale() Locale {
	return Locale{Delimiter: ';', DecimalSep: ','}
}

// zeroCell is the sentinel for fields absent from a record.
func (l Locale) zeroCell() string {
	return "0" + string(l.DecimalSep) + "00"
}

// ExportTable builds the tabular report: a header row, one row per record
// and a final totals row. Columns follow the given field-key order;
// callers usually pass Columns(records).
func ExportTable(records []core.Record, columns []string, loc Locale) [][]string {
	header := make([]string, 0, len(columns)+4)
	header = append(header, "Data", "Categoria", "Status")
	for _, key := range columns {
		header = append(header, core.LabelFor(key))
	}
	header = append(header, "Total")

	rows := make([][]string, 0, len(records)+2)
	rows = append(rows, header)

	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row, r.Date.Display(), r.Property, core.NormalizeStatus(r.Status).Label())
		valid := make(map[string]bool)
		for _, key := range core.FieldKeysFor(r.Property) {
			valid[key] = true
		}
		for _, key := range columns {
			if m, ok := r.Fields[key]; ok && valid[key] {
				row = append(row, m.FormatFixed(loc.DecimalSep))
			} else {
				row = append(row, loc.zeroCell())
			}
		}
		row = append(row, RecordTotal(r).FormatFixed(loc.DecimalSep))
		rows = append(rows, row)
	}

	colTotals := ColumnTotals(records)
	totalsRow := make([]string, 0, len(header))
	totalsRow = append(totalsRow, "TOTAL GERAL", "", "")
	for _, key := range columns {
		totalsRow = append(totalsRow, colTotals[key].FormatFixed(loc.DecimalSep))
	}
	totalsRow = append(totalsRow, StatusTotals(records).Grand.FormatFixed(loc.DecimalSep))
	rows = append(rows, totalsRow)

	return rows
}

// WriteCSV serializes a table with the locale's delimiter, prefixed with a
// UTF-8 byte-order mark so Excel picks up the accents. Cells containing
// the delimiter, quotes or newlines are quoted with doubled inner quotes.
func WriteCSV(w io.Writer, table [][]string, loc Locale) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("\uFEFF"); err != nil {
		return err
	}
	delim := string(loc.Delimiter)
	for _, row := range table {
		for i, cell := range row {
			if i > 0 {
				if _, err := bw.WriteString(delim); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(escapeCell(cell, loc.Delimiter)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func escapeCell(cell string, delim rune) string {
	if strings.ContainsRune(cell, delim) || strings.ContainsAny(cell, "\"\n\r") {
		return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return cell
}
