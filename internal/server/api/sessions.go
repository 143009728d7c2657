package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/handcursor/internal/store"
)

// DefaultSessionLimit caps GET /api/sessions when no limit is given.
const DefaultSessionLimit = 50

// SessionHandler serves recorded sessions and their events.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and /api/sessions/{id}/events.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	switch {
	case sub == "events" && r.Method == http.MethodGet:
		h.events(w, r, id)
	case sub != "":
		writeError(w, http.StatusNotFound, "Not found")
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type sessionResponse struct {
	ID         string         `json:"id"`
	Mode       string         `json:"mode"`
	Backend    string         `json:"backend"`
	Status     string         `json:"status"`
	Frames     int            `json:"frames"`
	Moves      int            `json:"moves"`
	Clicks     int            `json:"clicks"`
	Detections int            `json:"detections"`
	StartedAt  string         `json:"started_at"`
	EndedAt    string         `json:"ended_at,omitempty"`
	Events     map[string]int `json:"events,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type eventResponse struct {
	Kind      string  `json:"kind"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Value     float64 `json:"value"`
	Label     string  `json:"label,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:         s.ID,
		Mode:       string(s.Mode),
		Backend:    s.Backend,
		Status:     s.Status,
		Frames:     s.Frames,
		Moves:      s.Moves,
		Clicks:     s.Clicks,
		Detections: s.Detections,
		StartedAt:  formatTime(s.StartedAt),
	}
	if s.EndedAt != nil {
		resp.EndedAt = formatTime(*s.EndedAt)
	}
	return resp
}

// list handles GET /api/sessions?limit=N, newest first.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id} and includes per-kind event counts.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	counts, err := h.store.Events().CountBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	resp := toSessionResponse(sess)
	resp.Events = make(map[string]int, len(counts))
	for kind, n := range counts {
		resp.Events[string(kind)] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// events handles GET /api/sessions/{id}/events?kind=click.
func (h *SessionHandler) events(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().Get(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	kind := store.EventKind(r.URL.Query().Get("kind"))
	events, err := h.store.Events().ListBySession(id, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		response.Events = append(response.Events, eventResponse{
			Kind:      string(e.Kind),
			X:         e.X,
			Y:         e.Y,
			Value:     e.Value,
			Label:     e.Label,
			CreatedAt: formatTime(e.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/sessions/{id}. Events go with the session.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
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
