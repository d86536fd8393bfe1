// Package api provides HTTP API handlers for the announcement history.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/pointread/internal/store"
)

// DefaultListLimit caps GET /api/announcements without a limit parameter.
const DefaultListLimit = 100

// AnnouncementHandler handles HTTP requests for the announcement history.
type AnnouncementHandler struct {
	store *store.Store
}

// NewAnnouncementHandler creates a new AnnouncementHandler with the given store.
func NewAnnouncementHandler(s *store.Store) *AnnouncementHandler {
	return &AnnouncementHandler{store: s}
}

// ServeHTTP routes /api/announcements and /api/announcements/{id}.
func (h *AnnouncementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/announcements")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

type listResponse struct {
	Announcements []*store.Announcement `json:"announcements"`
	Total         int                   `json:"total"`
}

type clearResponse struct {
	Removed int64 `json:"removed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/announcements?limit=N, newest first.
func (h *AnnouncementHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	repo := h.store.Announcements()
	items, err := repo.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list announcements")
		return
	}
	total, err := repo.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count announcements")
		return
	}

	if items == nil {
		items = []*store.Announcement{}
	}
	writeJSON(w, http.StatusOK, listResponse{Announcements: items, Total: total})
}

// get handles GET /api/announcements/{id}.
func (h *AnnouncementHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.store.Announcements().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "announcement not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get announcement")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// clear handles DELETE /api/announcements.
func (h *AnnouncementHandler) clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Announcements().Clear()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear announcements")
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Removed: n})
}
