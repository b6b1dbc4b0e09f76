package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"despesas/internal/core"
)

// createRecordRequest carries amounts as decimal strings ("150,00" or
// "150.00"); parsing decides validity, not the client's locale.
type createRecordRequest struct {
	Property string            `json:"property"`
	Date     string            `json:"date"`
	Status   string            `json:"status"`
	Fields   map[string]string `json:"fields"`
}

type recordResponse struct {
	ID       int64            `json:"id"`
	Property string           `json:"property"`
	Date     string           `json:"date"`
	Status   string           `json:"status"`
	Fields   map[string]int64 `json:"fields"`
	Total    int64            `json:"total"`
}

func toRecordResponse(rec core.Record, total core.Money) recordResponse {
	fields := make(map[string]int64, len(rec.Fields))
	for k, m := range rec.Fields {
		fields[k] = m.Cents
	}
	return recordResponse{
		ID:       rec.ID,
		Property: rec.Property,
		Date:     rec.Date.String(),
		Status:   string(rec.Status),
		Fields:   fields,
		Total:    total.Cents,
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "corpo da requisição inválido")
		return
	}

	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "data inválida, use AAAA-MM-DD")
		return
	}

	rec := core.Record{
		Property: strings.TrimSpace(req.Property),
		Date:     date,
		Status:   core.Status(req.Status),
		Fields:   make(map[string]core.Money, len(req.Fields)),
	}
	for key, raw := range req.Fields {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		cents, err := core.ParseDecimalToCents(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "valor inválido para "+key)
			return
		}
		rec.Fields[key] = core.Money{Cents: cents}
	}

	id, err := s.records.Create(r.Context(), userID, rec)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	property := r.URL.Query().Get("property")

	records, err := s.records.List(r.Context(), userID, property)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec, recordTotal(rec)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "id inválido")
		return
	}

	rec, err := s.records.Get(r.Context(), userID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(*rec, recordTotal(*rec)))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetRecordStatus(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "id inválido")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "corpo da requisição inválido")
		return
	}

	if err := s.records.SetStatus(r.Context(), userID, id, core.Status(req.Status)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "id inválido")
		return
	}

	if err := s.records.Delete(r.Context(), userID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
