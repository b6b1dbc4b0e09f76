package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/report"
)

func recordTotal(rec core.Record) core.Money {
	return report.RecordTotal(rec)
}

// reportQuery builds a filter from query parameters. Dates are
// YYYY-MM-DD; a single bound is kept as-is and yields an empty report
// downstream.
func reportQuery(r *http.Request) (report.Query, error) {
	q := report.Query{
		Property: r.URL.Query().Get("property"),
		Status:   core.Status(r.URL.Query().Get("status")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("start_date")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return report.Query{}, fmt.Errorf("data inicial inválida: %s", raw)
		}
		q.StartDate = d
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end_date")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return report.Query{}, fmt.Errorf("data final inválida: %s", raw)
		}
		q.EndDate = d
	}
	if q.Status != "" && !q.Status.Valid() {
		return report.Query{}, fmt.Errorf("status inválido: %s", q.Status)
	}

	return q, nil
}

type reportResponse struct {
	Records []recordResponse `json:"records"`
	Totals  totalsResponse   `json:"totals"`
}

type totalsResponse struct {
	Paid        int64 `json:"paid"`
	Unpaid      int64 `json:"unpaid"`
	Grand       int64 `json:"grand"`
	PaidCount   int   `json:"paid_count"`
	UnpaidCount int   `json:"unpaid_count"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	q, err := reportQuery(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}

	records, err := s.reports.Generate(r.Context(), userID, q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	// Generate returns oldest-first; only a descending request needs a
	// re-sort.
	if report.ParseOrder(r.URL.Query().Get("order")) == report.OrderDescending {
		records = report.Sort(records, report.OrderDescending)
	}
	totals := report.StatusTotals(records)

	out := reportResponse{
		Records: make([]recordResponse, 0, len(records)),
		Totals: totalsResponse{
			Paid:        totals.Paid.Cents,
			Unpaid:      totals.Unpaid.Cents,
			Grand:       totals.Grand.Cents,
			PaidCount:   totals.PaidCount,
			UnpaidCount: totals.UnpaidCount,
		},
	}
	for _, rec := range records {
		out.Records = append(out.Records, toRecordResponse(rec, recordTotal(rec)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	q, err := reportQuery(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}

	// Touch the guard before writing headers so auth failures still get
	// a JSON error body.
	if _, err := s.reports.Table(r.Context(), userID, q); err != nil {
		writeDomainError(w, r, err)
		return
	}

	filename := fmt.Sprintf("relatorio_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.reports.WriteCSV(r.Context(), userID, q, w); err != nil {
		// Headers are already sent; nothing left but to log.
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed mid-stream", "error", err)
	}
}

func (s *Server) handleSheetsExport(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	q, err := reportQuery(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return
	}

	if err := s.reports.RequestSheetsExport(r.Context(), userID, q); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
