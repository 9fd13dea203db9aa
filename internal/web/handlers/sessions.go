package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/rollcall/internal/database"
)

// SessionsHandler handles class session endpoints.
type SessionsHandler struct {
	sessions database.SessionRepository
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(sessions database.SessionRepository) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

type sessionResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Faculty     string `json:"faculty,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func toSessionResponse(s *database.Session) sessionResponse {
	resp := sessionResponse{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		Faculty:     s.Faculty,
		Description: s.Description,
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// List returns all sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		log.Printf("listing sessions: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	resp := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, toSessionResponse(&sessions[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessions": resp,
		"count":    len(resp),
	})
}

// Create registers a new session.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		Faculty     string `json:"faculty"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if req.Code == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "code and name are required")
		return
	}

	session := &database.Session{
		ID:          uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Faculty:     req.Faculty,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.sessions.CreateSession(r.Context(), session); err != nil {
		if errors.Is(err, database.ErrSessionCodeConflict) {
			respondError(w, http.StatusConflict, "session code already exists")
			return
		}
		log.Printf("creating session %s: %v", sanitizeForLog(req.Code), err)
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Delete removes a session, cascading to its attendance records.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		log.Printf("deleting session %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
