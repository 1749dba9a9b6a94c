package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
	"github.com/badi-al-zaman/ragchat/internal/storage"
)

// SessionsHandler handles HTTP requests for session management.
type SessionsHandler struct {
	sessions storage.SessionStore
}

// NewSessionsHandler creates a new SessionsHandler.
func NewSessionsHandler(sessions storage.SessionStore) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// CreateSessionRequest represents the HTTP request payload for session creation.
type CreateSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
	Title  string `json:"title,omitempty"`
}

// SessionResponse represents a session in HTTP responses.
type SessionResponse struct {
	SessionID    string            `json:"session_id"`
	UserID       string            `json:"user_id,omitempty"`
	Title        string            `json:"title"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
	Messages     []MessageResponse `json:"messages,omitempty"`
}

// MessageResponse represents a persisted message in HTTP responses.
type MessageResponse struct {
	MessageID string              `json:"message_id"`
	Data      storage.MessageData `json:"data"`
	Tokens    *int                `json:"tokens,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

func toSessionResponse(s *storage.SessionRecord) SessionResponse {
	resp := SessionResponse{
		SessionID:    s.SessionID,
		UserID:       s.UserID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
	}
	for _, m := range s.Messages {
		resp.Messages = append(resp.Messages, MessageResponse{
			MessageID: m.MessageID,
			Data:      m.Data,
			Tokens:    m.Tokens,
			CreatedAt: m.CreatedAt,
		})
	}
	return resp
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WarnContext(ctx, "invalid request body", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	session, err := h.sessions.CreateSession(ctx, req.UserID, req.Title)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, unavailableMessage)
		return
	}

	logger.InfoContext(ctx, "session created", "session_id", session.SessionID)
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// List handles GET /api/sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	sessions, err := h.sessions.ListSessions(ctx, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, unavailableMessage)
		return
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/sessions/{sessionID}. The response includes the
// session's full message history.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	session, err := h.sessions.GetFullSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load session", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, unavailableMessage)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Delete handles DELETE /api/sessions/{sessionID}. Messages are removed
// with the session.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	if err := h.sessions.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		logger.ErrorContext(ctx, "failed to delete session", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, unavailableMessage)
		return
	}

	logger.InfoContext(ctx, "session deleted", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
