package exports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/fdg312/meal-planner/internal/blob"
	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidFormat  = errors.New("invalid format")
	ErrUserRequired   = errors.New("user is required")
	ErrPlanNotFound   = errors.New("plan not found")
	ErrExportNotFound = errors.New("export not found")
)

// userKeyNamespace derives the object key segment of a user, which keeps
// keys URL-safe whatever the user key contains.
var userKeyNamespace = uuid.MustParse("3b8e5d21-7c4f-4a9e-b6d2-91f0a7c35e48")

// PlanSource gives access to stored plans.
type PlanSource interface {
	GetActive(ctx context.Context, userKey string) (*mealplans.StoredPlanDTO, bool, error)
}

// Service handles plan exports
type Service struct {
	exportsStorage  storage.ExportsStorage
	plans           PlanSource
	blobStore       blob.Store
	links           *LinkSigner
	presignTTL      int
	publicBaseURL   string // S3 public base URL (if prefer_public_url mode)
	preferPublicURL bool
	now             func() time.Time
}

// NewService creates a new exports service
func NewService(
	exportsStorage storage.ExportsStorage,
	plans PlanSource,
	blobStore blob.Store,
	links *LinkSigner,
	presignTTL int,
	publicBaseURL string,
	preferPublicURL bool,
) *Service {
	return &Service{
		exportsStorage:  exportsStorage,
		plans:           plans,
		blobStore:       blobStore,
		links:           links,
		presignTTL:      presignTTL,
		publicBaseURL:   publicBaseURL,
		preferPublicURL: preferPublicURL,
		now:             time.Now,
	}
}

// CreateExport renders the active plan of a user and uploads it to the blob store
func (s *Service) CreateExport(ctx context.Context, req CreateExportRequest) (*Export, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}
	user := strings.TrimSpace(req.User)
	if user == "" {
		return nil, ErrUserRequired
	}

	plan, found, err := s.plans.GetActive(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if !found {
		return nil, ErrPlanNotFound
	}

	data, err := Render(format, Document{
		Plan:         *plan,
		ShoppingList: mealplans.BuildShoppingList(plan.Plan),
		GeneratedAt:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	id := uuid.New()
	objectKey := fmt.Sprintf("exports/%s/%s.%s", uuid.NewSHA1(userKeyNamespace, []byte(user)), id, format)
	if _, err := s.blobStore.PutObject(ctx, objectKey, data, contentType(format)); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	meta := &storage.ExportMeta{
		ID:        id,
		UserKey:   user,
		PlanID:    plan.ID,
		Format:    format,
		ObjectKey: &objectKey,
		SizeBytes: int64(len(data)),
		Status:    StatusReady,
	}
	if err := s.exportsStorage.CreateExport(ctx, meta); err != nil {
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}

	return toExport(meta), nil
}

// GetExport retrieves an export by ID
func (s *Service) GetExport(ctx context.Context, id uuid.UUID) (*Export, error) {
	meta, err := s.exportsStorage.GetExport(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}
	return toExport(meta), nil
}

// ListExports lists exports of a user
func (s *Service) ListExports(ctx context.Context, user string, limit, offset int) ([]Export, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, ErrUserRequired
	}

	metaList, err := s.exportsStorage.ListExports(ctx, user, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	exports := make([]Export, len(metaList))
	for i := range metaList {
		exports[i] = *toExport(&metaList[i])
	}
	return exports, nil
}

// DeleteExport deletes an export and its object
func (s *Service) DeleteExport(ctx context.Context, id uuid.UUID) error {
	export, err := s.GetExport(ctx, id)
	if err != nil {
		return err
	}

	if export.ObjectKey != nil {
		if err := s.blobStore.DeleteObject(ctx, *export.ObjectKey); err != nil {
			// metadata is removed anyway
			log.Printf("WARN exports: delete_object_failed id=%s err=%v", id, err)
		}
	}

	if err := s.exportsStorage.DeleteExport(ctx, id); err != nil {
		return fmt.Errorf("failed to delete export metadata: %w", err)
	}
	return nil
}

// DownloadURL returns a public URL, a presigned URL, or a signed API link
// when the blob store cannot presign.
func (s *Service) DownloadURL(ctx context.Context, export *Export, baseURL string) (string, error) {
	if export.ObjectKey == nil {
		return "", fmt.Errorf("object key is missing")
	}

	if s.preferPublicURL && s.publicBaseURL != "" {
		return strings.TrimSuffix(s.publicBaseURL, "/") + "/" + *export.ObjectKey, nil
	}

	presigned, err := s.blobStore.PresignGet(ctx, *export.ObjectKey, s.presignTTL)
	if err == nil {
		return presigned, nil
	}
	if !errors.Is(err, blob.ErrPresignNotSupported) {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	token, err := s.links.Sign(export.ID)
	if err != nil {
		return "", fmt.Errorf("failed to sign download link: %w", err)
	}
	return fmt.Sprintf("%s/v1/exports/%s/download?token=%s",
		strings.TrimSuffix(baseURL, "/"), export.ID.String(), url.QueryEscape(token)), nil
}

// OpenDownload checks a signed link and returns the export bytes
func (s *Service) OpenDownload(ctx context.Context, id uuid.UUID, token string) (*Export, []byte, error) {
	if err := s.links.Verify(token, id); err != nil {
		return nil, nil, err
	}

	export, err := s.GetExport(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if export.ObjectKey == nil {
		return nil, nil, ErrExportNotFound
	}

	data, err := s.blobStore.GetObject(ctx, *export.ObjectKey)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return nil, nil, ErrExportNotFound
		}
		return nil, nil, fmt.Errorf("failed to read export: %w", err)
	}
	return export, data, nil
}

func toExport(meta *storage.ExportMeta) *Export {
	return &Export{
		ID:        meta.ID,
		UserKey:   meta.UserKey,
		PlanID:    meta.PlanID,
		Format:    meta.Format,
		ObjectKey: meta.ObjectKey,
		SizeBytes: meta.SizeBytes,
		Status:    meta.Status,
		Error:     meta.Error,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
	}
}
