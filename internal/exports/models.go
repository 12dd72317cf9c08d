package exports

import (
	"time"

	"github.com/google/uuid"
)

// Export represents a rendered plan document
type Export struct {
	ID        uuid.UUID
	UserKey   string
	PlanID    uuid.UUID
	Format    string // "pdf" or "csv"
	ObjectKey *string
	SizeBytes int64
	Status    string // "ready" or "failed"
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateExportRequest is the request to export the active plan of a user
type CreateExportRequest struct {
	User   string `json:"user"`
	Format string `json:"format"` // "pdf" or "csv"
}

// ExportDTO is the response representation of an export
type ExportDTO struct {
	ID          uuid.UUID `json:"id"`
	User        string    `json:"user"`
	PlanID      uuid.UUID `json:"plan_id"`
	Format      string    `json:"format"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportsResponse is the list response
type ExportsResponse struct {
	Exports []ExportDTO `json:"exports"`
}

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady  = "ready"
	StatusFailed = "failed"
)

func contentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}
