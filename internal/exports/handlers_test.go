package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/meal-planner/internal/blob"
	"github.com/fdg312/meal-planner/internal/catalog"
	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/nutrition"
	"github.com/fdg312/meal-planner/internal/profiles"
	"github.com/fdg312/meal-planner/internal/storage/memory"
	"github.com/google/uuid"
)

type mockPlanSource struct {
	plans map[string]*mealplans.StoredPlanDTO
}

func (m *mockPlanSource) GetActive(ctx context.Context, userKey string) (*mealplans.StoredPlanDTO, bool, error) {
	plan, ok := m.plans[userKey]
	return plan, ok, nil
}

func testPlan(t *testing.T) *mealplans.StoredPlanDTO {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	profile := profiles.Profile{
		Name:          "Alex",
		Gender:        profiles.GenderMale,
		Age:           30,
		Weight:        70,
		WeightUnit:    profiles.WeightUnitKg,
		Height:        175,
		HeightUnit:    profiles.HeightUnitCm,
		HealthGoal:    profiles.GoalLoseWeight,
		ActivityLevel: profiles.ActivityModerate,
	}
	plan := mealplans.Plan{
		Breakfast: c.Breakfast[2],
		Lunch:     c.Lunch[4],
		Dinner:    c.Dinner[1],
		Snacks:    []catalog.MealRecord{c.Snacks[4], c.Snacks[0]},
	}
	plan.TotalCalories = plan.SumCalories()

	return &mealplans.StoredPlanDTO{
		ID:        uuid.New(),
		User:      "Alex",
		Profile:   profile,
		Targets:   nutrition.Calculate(profile),
		Plan:      plan,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func setupTestService(t *testing.T) (*Service, *mealplans.StoredPlanDTO) {
	t.Helper()
	plan := testPlan(t)
	source := &mockPlanSource{plans: map[string]*mealplans.StoredPlanDTO{"Alex": plan}}

	service := NewService(
		memory.NewExportsMemoryStorage(),
		source,
		blob.NewMemoryStore(), // local mode
		NewLinkSigner("test-secret", 900),
		900,   // presign TTL
		"",    // publicBaseURL
		false, // preferPublicURL
	)
	return service, plan
}

func createExport(t *testing.T, handler *Handlers, format string) ExportDTO {
	t.Helper()
	body, _ := json.Marshal(CreateExportRequest{User: "Alex", Format: format})
	req := httptest.NewRequest("POST", "/v1/exports", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleCreate(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp ExportDTO
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func download(t *testing.T, handler *Handlers, downloadURL string) *httptest.ResponseRecorder {
	t.Helper()
	u, err := url.Parse(downloadURL)
	if err != nil {
		t.Fatalf("bad download url %q: %v", downloadURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[3] != "download" {
		t.Fatalf("unexpected download path %q", u.Path)
	}

	req := httptest.NewRequest("GET", u.RequestURI(), nil)
	req.SetPathValue("id", parts[2])
	w := httptest.NewRecorder()
	handler.HandleDownload(w, req)
	return w
}

func TestHandleCreate_CSV_Success(t *testing.T) {
	service, plan := setupTestService(t)
	handler := NewHandlers(service)

	resp := createExport(t, handler, FormatCSV)

	if resp.Format != FormatCSV {
		t.Errorf("expected format csv, got %s", resp.Format)
	}
	if resp.PlanID != plan.ID {
		t.Errorf("expected plan %s, got %s", plan.ID, resp.PlanID)
	}
	if resp.SizeBytes == 0 {
		t.Error("expected non-empty export")
	}
	if !strings.Contains(resp.DownloadURL, "/v1/exports/"+resp.ID.String()+"/download?token=") {
		t.Errorf("expected signed local link, got %s", resp.DownloadURL)
	}
}

func TestHandleCreate_PDF_Success(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	resp := createExport(t, handler, FormatPDF)
	w := download(t, handler, resp.DownloadURL)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("expected content type application/pdf, got %s", w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
}

func TestHandleCreate_InvalidFormat(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	body, _ := json.Marshal(CreateExportRequest{User: "Alex", Format: "xlsx"})
	req := httptest.NewRequest("POST", "/v1/exports", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleCreate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var errResp map[string]interface{}
	json.NewDecoder(w.Body).Decode(&errResp)
	errorData := errResp["error"].(map[string]interface{})
	if errorData["code"] != "invalid_format" {
		t.Errorf("expected error code invalid_format, got %s", errorData["code"])
	}
}

func TestHandleCreate_PlanNotFound(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	body, _ := json.Marshal(CreateExportRequest{User: "Nobody", Format: FormatCSV})
	req := httptest.NewRequest("POST", "/v1/exports", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleCreate(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandleDownload_CSVContent(t *testing.T) {
	service, plan := setupTestService(t)
	handler := NewHandlers(service)

	resp := createExport(t, handler, FormatCSV)
	w := download(t, handler, resp.DownloadURL)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "text/csv" {
		t.Errorf("expected content type text/csv, got %s", w.Header().Get("Content-Type"))
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}

	shopping := mealplans.BuildShoppingList(plan.Plan)
	// header + 5 meals + total + target + shopping items
	if want := 1 + 5 + 2 + len(shopping); len(rows) != want {
		t.Fatalf("expected %d rows, got %d", want, len(rows))
	}
	if rows[1][2] != plan.Plan.Breakfast.Name {
		t.Errorf("expected breakfast %q, got %q", plan.Plan.Breakfast.Name, rows[1][2])
	}
	if rows[6][0] != "total" || rows[6][3] != fmt.Sprint(plan.Plan.TotalCalories) {
		t.Errorf("unexpected total row %v", rows[6])
	}
	if rows[8][2] != shopping[0] {
		t.Errorf("expected first shopping item %q, got %q", shopping[0], rows[8][2])
	}
}

func TestHandleDownload_InvalidToken(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	resp := createExport(t, handler, FormatCSV)

	req := httptest.NewRequest("GET", fmt.Sprintf("/v1/exports/%s/download?token=bogus", resp.ID), nil)
	req.SetPathValue("id", resp.ID.String())
	w := httptest.NewRecorder()
	handler.HandleDownload(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestHandleDownload_TokenForOtherExport(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	first := createExport(t, handler, FormatCSV)
	second := createExport(t, handler, FormatCSV)

	u, _ := url.Parse(first.DownloadURL)
	req := httptest.NewRequest("GET", fmt.Sprintf("/v1/exports/%s/download?%s", second.ID, u.RawQuery), nil)
	req.SetPathValue("id", second.ID.String())
	w := httptest.NewRecorder()
	handler.HandleDownload(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestLinkSigner_Expiry(t *testing.T) {
	signer := NewLinkSigner("secret", 60)
	issued := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	id := uuid.New()
	token, err := signer.Sign(id)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := signer.Verify(token, id); err != nil {
		t.Errorf("expected valid token, got %v", err)
	}

	signer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if err := signer.Verify(token, id); err != ErrInvalidLink {
		t.Errorf("expected ErrInvalidLink for expired token, got %v", err)
	}

	other := NewLinkSigner("another-secret", 60)
	other.now = func() time.Time { return issued }
	if err := other.Verify(token, id); err != ErrInvalidLink {
		t.Errorf("expected ErrInvalidLink for foreign secret, got %v", err)
	}
}

func TestHandleList(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	createExport(t, handler, FormatCSV)

	req := httptest.NewRequest("GET", "/v1/exports?user=Alex", nil)
	w := httptest.NewRecorder()

	handler.HandleList(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp ExportsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Exports) != 1 {
		t.Errorf("expected 1 export, got %d", len(resp.Exports))
	}
}

func TestHandleDelete(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	export := createExport(t, handler, FormatCSV)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/v1/exports/%s", export.ID.String()), nil)
	req.SetPathValue("id", export.ID.String())
	w := httptest.NewRecorder()

	handler.HandleDelete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}

	if _, err := service.GetExport(context.Background(), export.ID); err != ErrExportNotFound {
		t.Errorf("expected export to be deleted, got %v", err)
	}
}

func TestHandleDelete_NotFound(t *testing.T) {
	service, _ := setupTestService(t)
	handler := NewHandlers(service)

	id := uuid.New()
	req := httptest.NewRequest("DELETE", fmt.Sprintf("/v1/exports/%s", id.String()), nil)
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()

	handler.HandleDelete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}
