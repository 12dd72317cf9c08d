package exports

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/fdg312/meal-planner/internal/blob"
	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/storage/memory"
)

func TestDownloadURL_PublicURLForUserWithSpaces(t *testing.T) {
	ctx := context.Background()
	plan := testPlan(t)
	plan.User = "John Doe"
	store := blob.NewMemoryStore()

	service := NewService(
		memory.NewExportsMemoryStorage(),
		&mockPlanSource{plans: map[string]*mealplans.StoredPlanDTO{"John Doe": plan}},
		store,
		NewLinkSigner("test-secret", 900),
		900,
		"https://cdn.example.com/",
		true,
	)

	export, err := service.CreateExport(ctx, CreateExportRequest{User: "John Doe", Format: FormatCSV})
	if err != nil {
		t.Fatalf("CreateExport: %v", err)
	}
	key := *export.ObjectKey
	if strings.Contains(key, "John") || strings.ContainsAny(key, " %") {
		t.Errorf("object key must not embed the raw user, got %q", key)
	}

	again, err := service.CreateExport(ctx, CreateExportRequest{User: "John Doe", Format: FormatCSV})
	if err != nil {
		t.Fatalf("second CreateExport: %v", err)
	}
	if prefix := key[:strings.LastIndex(key, "/")]; !strings.HasPrefix(*again.ObjectKey, prefix+"/") {
		t.Errorf("exports of one user should share %q, got %q", prefix, *again.ObjectKey)
	}

	link, err := service.DownloadURL(ctx, export, "http://localhost:8080")
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("bad url %q: %v", link, err)
	}
	if u.Host != "cdn.example.com" || strings.TrimPrefix(u.Path, "/") != key {
		t.Fatalf("url %q does not address object %q", link, key)
	}
	if _, err := store.GetObject(ctx, strings.TrimPrefix(u.Path, "/")); err != nil {
		t.Errorf("object behind public url not found: %v", err)
	}
}
