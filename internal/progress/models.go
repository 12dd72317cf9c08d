package progress

import (
	"time"

	"github.com/google/uuid"
)

// EntryDTO is a single weight measurement.
type EntryDTO struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	Weight    float64   `json:"weight"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
}

type SaveProgressRequest struct {
	User   string  `json:"user"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit,omitempty"`
}

type ProgressResponse struct {
	User    string     `json:"user"`
	Entries []EntryDTO `json:"entries"`
}
