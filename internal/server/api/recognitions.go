// Package api provides HTTP API handlers for the gesture modality.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/gesturemodality/internal/store"
)

// DefaultListLimit is the number of recognitions returned when the request
// does not set a limit.
const DefaultListLimit = 50

// RecognitionHandler handles HTTP requests for recognition resources.
type RecognitionHandler struct {
	store *store.Store
}

// NewRecognitionHandler creates a new RecognitionHandler with the given store.
func NewRecognitionHandler(s *store.Store) *RecognitionHandler {
	return &RecognitionHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *RecognitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Expected paths: /api/recognitions, /api/recognitions/counts or
	// /api/recognitions/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/recognitions")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		h.list(w, r)
	case "counts":
		h.counts(w, r)
	default:
		h.get(w, r, path)
	}
}

// RecognitionResponse is the JSON form of a store.Recognition.
type RecognitionResponse struct {
	ID         string  `json:"id"`
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
	TrackingID uint64  `json:"tracking_id"`
	Notified   bool    `json:"notified"`
	Error      string  `json:"error,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type listRecognitionsResponse struct {
	Recognitions []RecognitionResponse `json:"recognitions"`
}

type countsResponse struct {
	Counts map[string]int `json:"counts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRecognitionResponse converts a store.Recognition to its JSON form.
func NewRecognitionResponse(rec *store.Recognition) RecognitionResponse {
	return RecognitionResponse{
		ID:         rec.ID,
		Gesture:    rec.Gesture,
		Confidence: rec.Confidence,
		TrackingID: rec.TrackingID,
		Notified:   rec.Notified,
		Error:      rec.Error,
		CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
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

// list handles GET /api/recognitions?limit=N (N > 0) and returns the newest
// recognitions first.
func (h *RecognitionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	recs, err := h.store.Recognitions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recognitions")
		return
	}

	response := listRecognitionsResponse{
		Recognitions: make([]RecognitionResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		response.Recognitions = append(response.Recognitions, NewRecognitionResponse(rec))
	}

	writeJSON(w, http.StatusOK, response)
}

// counts handles GET /api/recognitions/counts.
func (h *RecognitionHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Recognitions().CountByGesture()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count recognitions")
		return
	}
	writeJSON(w, http.StatusOK, countsResponse{Counts: counts})
}

// get handles GET /api/recognitions/{id} and returns a single recognition.
func (h *RecognitionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Recognitions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recognition not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recognition")
		return
	}

	writeJSON(w, http.StatusOK, NewRecognitionResponse(rec))
}
