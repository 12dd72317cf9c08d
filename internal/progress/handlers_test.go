package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

type mockProgressRepo struct {
	entries []storage.ProgressEntry
}

func (m *mockProgressRepo) AppendProgress(ctx context.Context, entry *storage.ProgressEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockProgressRepo) ListProgress(ctx context.Context, userKey string) ([]storage.ProgressEntry, error) {
	var result []storage.ProgressEntry
	for _, e := range m.entries {
		if e.UserKey == userKey {
			result = append(result, e)
		}
	}
	return result, nil
}

type mockPlanLookup struct {
	unit profiles.WeightUnit
}

func (m *mockPlanLookup) GetActive(ctx context.Context, userKey string) (*mealplans.StoredPlanDTO, bool, error) {
	if m.unit == "" {
		return nil, false, nil
	}
	return &mealplans.StoredPlanDTO{
		User:    userKey,
		Profile: profiles.Profile{Name: userKey, WeightUnit: m.unit},
	}, true, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)
}

func newTestHandler(repo storage.ProgressStorage, plans PlanLookup) *Handler {
	service := NewService(repo, plans)
	service.now = fixedNow
	return NewHandler(service)
}

func TestHandleSave_Success(t *testing.T) {
	repo := &mockProgressRepo{}
	handler := newTestHandler(repo, nil)

	body, _ := json.Marshal(SaveProgressRequest{User: "Alex", Weight: 71.5})
	req := httptest.NewRequest(http.MethodPost, "/v1/progress", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleSave(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var entry EntryDTO
	if err := json.NewDecoder(w.Body).Decode(&entry); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if entry.Date != "2026-03-14" {
		t.Errorf("expected date 2026-03-14, got %s", entry.Date)
	}
	if entry.Unit != "kg" {
		t.Errorf("expected default unit kg, got %s", entry.Unit)
	}
	if len(repo.entries) != 1 || repo.entries[0].UserKey != "Alex" {
		t.Errorf("expected one stored entry for Alex, got %+v", repo.entries)
	}
}

func TestHandleSave_UsesProfileUnit(t *testing.T) {
	repo := &mockProgressRepo{}
	handler := newTestHandler(repo, &mockPlanLookup{unit: profiles.WeightUnitLbs})

	body, _ := json.Marshal(SaveProgressRequest{User: "Alex", Weight: 160})
	req := httptest.NewRequest(http.MethodPost, "/v1/progress", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleSave(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	if repo.entries[0].Unit != "lbs" {
		t.Errorf("expected unit lbs, got %s", repo.entries[0].Unit)
	}
}

func TestHandleSave_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  SaveProgressRequest
	}{
		{"missing user", SaveProgressRequest{Weight: 70}},
		{"zero weight", SaveProgressRequest{User: "Alex"}},
		{"too heavy", SaveProgressRequest{User: "Alex", Weight: 501}},
		{"bad unit", SaveProgressRequest{User: "Alex", Weight: 70, Unit: "stone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProgressRepo{}
			handler := newTestHandler(repo, nil)

			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/v1/progress", bytes.NewReader(body))
			w := httptest.NewRecorder()
			handler.HandleSave(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
			if len(repo.entries) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestHandleList_OldestFirst(t *testing.T) {
	repo := &mockProgressRepo{}
	handler := newTestHandler(repo, nil)

	for _, weight := range []float64{72, 71.2, 70.4} {
		body, _ := json.Marshal(SaveProgressRequest{User: "Alex", Weight: weight})
		w := httptest.NewRecorder()
		handler.HandleSave(w, httptest.NewRequest(http.MethodPost, "/v1/progress", bytes.NewReader(body)))
	}
	body, _ := json.Marshal(SaveProgressRequest{User: "Sam", Weight: 90})
	handler.HandleSave(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/progress", bytes.NewReader(body)))

	req := httptest.NewRequest(http.MethodGet, "/v1/progress?user=Alex", nil)
	w := httptest.NewRecorder()
	handler.HandleList(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp ProgressResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(resp.Entries))
	}
	if resp.Entries[0].Weight != 72 || resp.Entries[2].Weight != 70.4 {
		t.Errorf("expected oldest first, got %+v", resp.Entries)
	}
}

func TestHandleList_RequiresUser(t *testing.T) {
	handler := newTestHandler(&mockProgressRepo{}, nil)

	w := httptest.NewRecorder()
	handler.HandleList(w, httptest.NewRequest(http.MethodGet, "/v1/progress", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandleList_EmptyHistory(t *testing.T) {
	handler := newTestHandler(&mockProgressRepo{}, nil)

	w := httptest.NewRecorder()
	handler.HandleList(w, httptest.NewRequest(http.MethodGet, "/v1/progress?user=Alex", nil))

	var resp ProgressResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Entries == nil || len(resp.Entries) != 0 {
		t.Errorf("expected empty entries array, got %v", resp.Entries)
	}
}
