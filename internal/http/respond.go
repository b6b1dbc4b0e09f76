package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"despesas/internal/auth"
	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/services"
	"despesas/internal/session"
	"despesas/internal/storage"
)

const userCookieName = "despesas_user"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses. Missing and
// foreign records both come back 404 so ownership is never revealed.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "must_log_in", "usuário não autenticado")
	case errors.Is(err, session.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "session_expired", "sessão expirada")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, storage.ErrNotFoundOrForbidden):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrExportUnavailable):
		writeError(w, http.StatusServiceUnavailable, "export_unavailable", err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal_error", "erro interno")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyProperty) ||
		errors.Is(err, core.ErrNoAmounts) ||
		errors.Is(err, core.ErrInvalidStatus) ||
		errors.Is(err, core.ErrMissingUser) ||
		errors.Is(err, auth.ErrPasswordTooShort)
}

// currentUser reads the opaque user id cookie. An absent cookie is an
// unauthenticated request; the guard decides the rest.
func currentUser(r *http.Request) string {
	c, err := r.Cookie(userCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setUserCookie(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     userCookieName,
		Value:    userID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearUserCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     userCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
