// Package worker consumes export requests and record notifications,
// appending report rows to the spreadsheet, and sweeps idle sessions.
package worker

import (
	"context"
	"fmt"
	"time"

	"despesas/internal/amqp"
	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/report"
	"despesas/internal/session"
	"despesas/internal/sheets"
	"despesas/internal/storage"
)

// ExportWorker renders report tables for queued export requests and
// mirrors newly created records onto the spreadsheet.
type ExportWorker struct {
	storage    *storage.Repository
	writer     sheets.ReportWriter
	sheetTitle string
	locale     report.Locale
	log        *applog.Logger
}

func NewExportWorker(storage *storage.Repository, writer sheets.ReportWriter, sheetTitle string, locale report.Locale) *ExportWorker {
	return &ExportWorker{
		storage:    storage,
		writer:     writer,
		sheetTitle: sheetTitle,
		locale:     locale,
		log:        applog.ForComponent(applog.ComponentWorker),
	}
}

// HandleExportRequest builds the requested report and appends the whole
// table, totals row included.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	w.log.InfoContext(ctx, "Processing export request",
		"user_id", msg.UserID,
		"property", msg.Property)

	q, err := queryFromMessage(msg)
	if err != nil {
		// A malformed request will never succeed; drop it.
		w.log.ErrorContext(ctx, "Discarding malformed export request",
			"user_id", msg.UserID, "error", err)
		return nil
	}

	records, err := w.storage.ListRecords(ctx, msg.UserID, q.Property)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	filtered := report.Sort(report.Filter(records, q), report.OrderAscending)
	table := report.ExportTable(filtered, report.Columns(filtered), w.locale)

	if err := w.writer.AppendRows(ctx, w.sheetTitle, table); err != nil {
		return fmt.Errorf("append report: %w", err)
	}

	w.log.InfoContext(ctx, "Export completed",
		"user_id", msg.UserID,
		"rows", len(table))
	return nil
}

// HandleRecordCreated appends a single row for the new record.
func (w *ExportWorker) HandleRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error {
	w.log.InfoContext(ctx, "Processing record created message", "id", msg.ID)

	rec, err := w.storage.GetRecord(ctx, msg.UserID, msg.ID)
	if err != nil {
		return fmt.Errorf("get record %d: %w", msg.ID, err)
	}

	row := []string{
		rec.Date.Display(),
		rec.Property,
		rec.Status.Label(),
		report.RecordTotal(*rec).FormatFixed(w.locale.DecimalSep),
	}
	if err := w.writer.AppendRows(ctx, w.sheetTitle, [][]string{row}); err != nil {
		return fmt.Errorf("append record row: %w", err)
	}

	return nil
}

// Handlers wires the worker into the AMQP consumer.
func (w *ExportWorker) Handlers() amqp.Handlers {
	return amqp.Handlers{
		OnExportRequest: w.HandleExportRequest,
		OnRecordCreated: w.HandleRecordCreated,
	}
}

func queryFromMessage(msg *amqp.ExportRequestMessage) (report.Query, error) {
	q := report.Query{
		Property: msg.Property,
		Status:   core.Status(msg.Status),
	}
	if msg.StartDate != "" {
		d, err := core.ParseDate(msg.StartDate)
		if err != nil {
			return report.Query{}, fmt.Errorf("parse start date: %w", err)
		}
		q.StartDate = d
	}
	if msg.EndDate != "" {
		d, err := core.ParseDate(msg.EndDate)
		if err != nil {
			return report.Query{}, fmt.Errorf("parse end date: %w", err)
		}
		q.EndDate = d
	}
	return q, nil
}

// RunSessionSweeper expires idle sessions on a fixed interval until the
// context is cancelled.
func RunSessionSweeper(ctx context.Context, guard *session.Guard, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := applog.ForComponent(applog.ComponentSession)
	logger.InfoContext(ctx, "Session sweeper started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "Session sweeper stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			count, err := guard.Sweep(ctx, time.Now())
			if err != nil {
				logger.ErrorContext(ctx, "Session sweep failed", "error", err)
				continue
			}
			if count > 0 {
				logger.InfoContext(ctx, "Swept idle sessions", "count", count)
			}
		}
	}
}
