package sheets

import "context"

// Ports for outbound adapters.
type (
	// ReportWriter appends pre-rendered report rows to a sheet. Rows
	// arrive as display strings, already localized.
	ReportWriter interface {
		AppendRows(ctx context.Context, sheetTitle string, rows [][]string) error
	}
)
