package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"support-chat/internal/chat"
	"support-chat/internal/logger"
	"support-chat/internal/session"
	"support-chat/internal/transcript"
)

const indexErrorPage = "<h1>Error: Could not load page. Check static/index.html</h1>"

type Server struct {
	svc       *chat.Service
	staticDir string
}

// NewServer returns the routed handler with middleware applied.
func NewServer(svc *chat.Service, staticDir string, log zerolog.Logger) http.Handler {
	s := &Server{svc: svc, staticDir: staticDir}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("POST /sessions/new", s.handleNewSession)
	mux.HandleFunc("GET /session/{id}", s.handleSessionHistory)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return chainMiddlewares(mux,
		withLogging,
		withCORS,
		withRequestID(log),
	)
}

// DTOs

type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type sessionsResponse struct {
	Sessions []chat.Summary `json:"sessions"`
}

type historyResponse struct {
	History []transcript.Turn `json:"history"`
}

type newSessionRequest struct {
	SessionID string `json:"session_id"`
}

type newSessionResponse struct {
	SessionID string `json:"session_id"`
}

// Handlers

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Query == "" {
		badRequest(w, "No query provided")
		return
	}

	reply, err := s.svc.Chat(r.Context(), req.SessionID, req.Query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "API Error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply.Text})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Sessions(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("list sessions failed")
		if errors.Is(err, session.ErrConnection) {
			writeError(w, http.StatusInternalServerError, "Database connection failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: list})
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, historyResponse{History: s.svc.History(r.Context(), id)})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		badRequest(w, "session_id is required")
		return
	}

	s.svc.NewSession(r.Context(), req.SessionID)
	writeJSON(w, http.StatusOK, newSessionResponse{SessionID: req.SessionID})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(filepath.Join(s.staticDir, "index.html"))
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("static file error")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(indexErrorPage))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// HTTP helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}
