package progress

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Handler handles HTTP requests for the weight log.
type Handler struct {
	service *Service
}

// NewHandler creates a new progress handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleSave handles POST /v1/progress
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	entry, err := h.service.SaveProgress(r.Context(), req.User, req.Weight, req.Unit)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save progress")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// HandleList handles GET /v1/progress?user=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))

	entries, err := h.service.GetProgress(r.Context(), user)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list progress")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ProgressResponse{User: user, Entries: entries})
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
