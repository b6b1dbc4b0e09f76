package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"despesas/internal/amqp"
	"despesas/internal/cache"
	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/report"
	"despesas/internal/session"
	"despesas/internal/storage"
)

// ErrExportUnavailable is returned when a spreadsheet export is
// requested but no message broker is configured.
var ErrExportUnavailable = errors.New("exportação para planilha indisponível")

const (
	reportCacheSize = 256
	reportCacheTTL  = 5 * time.Minute
)

// ReportService builds filtered report tables with a per-user cache.
// Record mutations invalidate the user's cached tables.
type ReportService struct {
	storage    *storage.Repository
	guard      *session.Guard
	amqpClient *amqp.Client
	locale     report.Locale
	tables     *cache.Cache[[][]string]
	log        *applog.Logger
}

func NewReportService(storage *storage.Repository, guard *session.Guard, amqpClient *amqp.Client, locale report.Locale) *ReportService {
	return &ReportService{
		storage:    storage,
		guard:      guard,
		amqpClient: amqpClient,
		locale:     locale,
		tables:     cache.New[[][]string](reportCacheSize, reportCacheTTL),
		log:        applog.ForComponent(applog.ComponentReport),
	}
}

// Invalidate drops every cached table for the user.
func (s *ReportService) Invalidate(userID string) {
	s.tables.Invalidate(userID)
}

// Locale returns the delimiter and decimal separator used for exports.
func (s *ReportService) Locale() report.Locale {
	return s.locale
}

// Generate returns the user's records matching the query, oldest first.
func (s *ReportService) Generate(ctx context.Context, userID string, q report.Query) ([]core.Record, error) {
	if err := s.guard.Require(ctx, userID); err != nil {
		return nil, err
	}
	return s.generate(ctx, userID, q)
}

func (s *ReportService) generate(ctx context.Context, userID string, q report.Query) ([]core.Record, error) {
	records, err := s.storage.ListRecords(ctx, userID, q.Property)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	filtered := report.Filter(records, q)
	return report.Sort(filtered, report.OrderAscending), nil
}

// Table builds the export table for the query, serving repeated
// requests from cache until the user's records change.
func (s *ReportService) Table(ctx context.Context, userID string, q report.Query) ([][]string, error) {
	if err := s.guard.Require(ctx, userID); err != nil {
		return nil, err
	}

	key := s.tables.Key(userID, queryKey(q))
	if table, ok := s.tables.Get(key); ok {
		return table, nil
	}

	records, err := s.generate(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	columns := report.Columns(records)
	table := report.ExportTable(records, columns, s.locale)
	s.tables.Set(key, table)
	return table, nil
}

// WriteCSV streams the query's table as a CSV document.
func (s *ReportService) WriteCSV(ctx context.Context, userID string, q report.Query, w io.Writer) error {
	table, err := s.Table(ctx, userID, q)
	if err != nil {
		return err
	}
	return report.WriteCSV(w, table, s.locale)
}

// StatusTotals sums the filtered records by payment status.
func (s *ReportService) StatusTotals(ctx context.Context, userID string, q report.Query) (report.Totals, error) {
	records, err := s.Generate(ctx, userID, q)
	if err != nil {
		return report.Totals{}, err
	}
	return report.StatusTotals(records), nil
}

// RequestSheetsExport queues an asynchronous export for the worker.
func (s *ReportService) RequestSheetsExport(ctx context.Context, userID string, q report.Query) error {
	if err := s.guard.Require(ctx, userID); err != nil {
		return err
	}
	if s.amqpClient == nil {
		return ErrExportUnavailable
	}

	msg := amqp.ExportRequestMessage{
		UserID:   userID,
		Property: q.Property,
		Status:   string(q.Status),
	}
	if !q.StartDate.IsZero() {
		msg.StartDate = q.StartDate.String()
	}
	if !q.EndDate.IsZero() {
		msg.EndDate = q.EndDate.String()
	}

	if err := s.amqpClient.PublishExportRequest(ctx, msg); err != nil {
		return fmt.Errorf("queue export: %w", err)
	}
	s.log.InfoContext(ctx, "Sheets export queued", "property", q.Property)
	return nil
}

func queryKey(q report.Query) string {
	return fmt.Sprintf("%s|%s|%s|%s", q.Property, q.StartDate.String(), q.EndDate.String(), q.Status)
}
