package http

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "despesas/internal/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID    string `json:"user_id"`
	SessionID int64  `json:"session_id"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "corpo da requisição inválido")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "e-mail e senha são obrigatórios")
		return
	}

	userID, err := s.authProvider.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Creating a session closes any previous one for the user.
	sessionID, err := s.guard.Create(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	setUserCookie(w, userID)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "User logged in", "user_id", userID)
	writeJSON(w, http.StatusOK, loginResponse{UserID: userID, SessionID: sessionID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	if userID != "" {
		if err := s.guard.Invalidate(r.Context(), userID); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	clearUserCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleHeartbeat refreshes the session's activity without failing when
// there is none; the next guarded call reports the real state.
func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "must_log_in", "usuário não autenticado")
		return
	}
	if err := s.guard.Touch(r.Context(), userID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	if err := s.guard.Require(r.Context(), userID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "corpo da requisição inválido")
		return
	}

	if err := s.authProvider.ChangePassword(r.Context(), strings.TrimSpace(req.Email), req.CurrentPassword, req.NewPassword); err != nil {
		writeDomainError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Password changed", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
