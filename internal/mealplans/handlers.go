package mealplans

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/meal-planner/internal/profiles"
)

// Handler handles HTTP requests for meal plans.
type Handler struct {
	service *Service
}

// NewHandler creates a new meal plans handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGenerate handles POST /v1/meal/plan/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req profiles.Profile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	plan, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to generate meal plan")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// HandleGet handles GET /v1/meal/plan?user=
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user is required")
		return
	}

	plan, found, err := h.service.GetActive(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get meal plan")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "plan_not_found", "No active meal plan for this user")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// HandleDelete handles DELETE /v1/meal/plan?user=
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user is required")
		return
	}

	if err := h.service.DeleteActive(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete meal plan")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSwap handles POST /v1/meal/swap
func (h *Handler) HandleSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	meal, err := h.service.Swap(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to swap meal")
		return
	}

	writeJSON(w, http.StatusOK, SwapMealResponse{Meal: meal})
}

// HandlePlanSwap handles POST /v1/meal/plan/swap
func (h *Handler) HandlePlanSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapPlanMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.User) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user is required")
		return
	}

	plan, err := h.service.SwapInPlan(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to swap meal")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// HandleShoppingList handles GET /v1/meal/plan/shopping-list?user=&page=
func (h *Handler) HandleShoppingList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	user := strings.TrimSpace(query.Get("user"))
	if user == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user is required")
		return
	}

	page := 1
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "page must be a positive integer")
			return
		}
		page = n
	}

	list, err := h.service.ShoppingList(r.Context(), user, page)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build shopping list")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var noMeal *NoSuitableMealError
	switch {
	case errors.As(err, &noMeal):
		writeError(w, http.StatusUnprocessableEntity, "no_suitable_meal", noMeal.Error())
	case errors.Is(err, profiles.ErrValidation), errors.Is(err, ErrInvalidSnackIndex):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "plan_not_found", "No active meal plan for this user")
	default:
		log.Printf("ERROR mealplans: %s: %v", fallback, err)
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
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
