package nutrition

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/meal-planner/internal/profiles"
)

// Handler handles HTTP requests for calorie targets.
type Handler struct{}

// NewHandler creates a new calorie handler.
func NewHandler() *Handler {
	return &Handler{}
}

// HandleCalculate handles POST /v1/calories
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req profiles.Profile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	profile, err := profiles.Normalize(req)
	if err != nil {
		if errors.Is(err, profiles.ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(CaloriesResponse{
		Profile: profile,
		Targets: Calculate(profile),
	})
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
