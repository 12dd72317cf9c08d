package exports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// Handlers handles HTTP requests for exports
type Handlers struct {
	service *Service
}

// NewHandlers creates new handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleCreate handles POST /v1/exports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	export, err := h.service.CreateExport(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFormat):
			writeError(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'")
		case errors.Is(err, ErrUserRequired):
			writeError(w, http.StatusBadRequest, "invalid_request", "user is required")
		case errors.Is(err, ErrPlanNotFound):
			writeError(w, http.StatusNotFound, "plan_not_found", "No active meal plan for this user")
		default:
			log.Printf("ERROR exports: create_failed err=%v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create export")
		}
		return
	}

	downloadURL, err := h.service.DownloadURL(r.Context(), export, getBaseURL(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toDTO(export, downloadURL))
}

// HandleList handles GET /v1/exports?user=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	exports, err := h.service.ListExports(r.Context(), query.Get("user"), limit, offset)
	if err != nil {
		if errors.Is(err, ErrUserRequired) {
			writeError(w, http.StatusBadRequest, "invalid_request", "user is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list exports")
		return
	}

	baseURL := getBaseURL(r)
	dtos := make([]ExportDTO, len(exports))
	for i := range exports {
		downloadURL, _ := h.service.DownloadURL(r.Context(), &exports[i], baseURL)
		dtos[i] = toDTO(&exports[i], downloadURL)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExportsResponse{Exports: dtos})
}

// HandleDownload handles GET /v1/exports/{id}/download?token=
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	exportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid export ID")
		return
	}

	export, data, err := h.service.OpenDownload(r.Context(), exportID, r.URL.Query().Get("token"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidLink):
			writeError(w, http.StatusUnauthorized, "invalid_link", "Download link is invalid or expired")
		case errors.Is(err, ErrExportNotFound):
			writeError(w, http.StatusNotFound, "export_not_found", "Export not found")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read export")
		}
		return
	}

	filename := fmt.Sprintf("meal_plan_%s.%s", export.CreatedAt.UTC().Format("2006-01-02"), export.Format)
	w.Header().Set("Content-Type", contentType(export.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// HandleDelete handles DELETE /v1/exports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	exportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid export ID")
		return
	}

	if err := h.service.DeleteExport(r.Context(), exportID); err != nil {
		if errors.Is(err, ErrExportNotFound) {
			writeError(w, http.StatusNotFound, "export_not_found", "Export not found")
		} else {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete export")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toDTO(export *Export, downloadURL string) ExportDTO {
	return ExportDTO{
		ID:          export.ID,
		User:        export.UserKey,
		PlanID:      export.PlanID,
		Format:      export.Format,
		DownloadURL: downloadURL,
		SizeBytes:   export.SizeBytes,
		Status:      export.Status,
		CreatedAt:   export.CreatedAt,
	}
}

// Helper functions

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

func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
