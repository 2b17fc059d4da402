package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/fingercount/internal/report"
	"github.com/ayusman/fingercount/internal/store"
)

// SessionHandler handles HTTP requests for recorded sessions.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes requests to the session endpoints.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/sessions, /api/sessions/{id},
	// /api/sessions/{id}/counts or /api/sessions/{id}/chart.png
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, id)
		case http.MethodDelete:
			h.delete(w, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "counts":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.counts(w, id)
	case "chart.png":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.chart(w, id)
	default:
		http.NotFound(w, r)
	}
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type sessionCountsResponse struct {
	SessionID string              `json:"session_id"`
	Counts    []*store.FrameCount `json:"counts"`
	Totals    []store.FrameTotal  `json:"totals"`
}

// list handles GET /api/sessions, newest first, with an optional limit.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, id string) {
	sess, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// counts handles GET /api/sessions/{id}/counts.
func (h *SessionHandler) counts(w http.ResponseWriter, id string) {
	if _, ok := h.lookup(w, id); !ok {
		return
	}

	counts, err := h.store.Counts().GetBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get counts")
		return
	}
	totals, err := h.store.Counts().Totals(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get totals")
		return
	}

	if counts == nil {
		counts = []*store.FrameCount{}
	}
	if totals == nil {
		totals = []store.FrameTotal{}
	}

	writeJSON(w, http.StatusOK, sessionCountsResponse{SessionID: id, Counts: counts, Totals: totals})
}

// chart handles GET /api/sessions/{id}/chart.png.
func (h *SessionHandler) chart(w http.ResponseWriter, id string) {
	sess, ok := h.lookup(w, id)
	if !ok {
		return
	}

	totals, err := h.store.Counts().Totals(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get totals")
		return
	}

	title := "Session " + sess.ID
	if sess.Label != "" {
		title = sess.Label
	}

	var buf bytes.Buffer
	if err := report.WriteCountChart(&buf, totals, title); err != nil {
		if errors.Is(err, report.ErrNoData) {
			writeError(w, http.StatusNotFound, "No counts recorded for session")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (h *SessionHandler) lookup(w http.ResponseWriter, id string) (*store.Session, bool) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil, false
	}
	return sess, true
}
