package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Enrichment status values for ImageMetadata. Status starts as pending when
// the image record is created and moves to exactly one of completed/failed.
const (
	EnrichmentPending   = "pending"
	EnrichmentCompleted = "completed"
	EnrichmentFailed    = "failed"
)

type Image struct {
	gorm.Model
	OwnerID        string `json:"owner_id" gorm:"not null;index"`
	Filename       string `json:"filename" gorm:"not null"`
	FileSize       int64  `json:"file_size" gorm:"not null"`
	ContentType    string `json:"content_type"`
	OriginalPath   string `json:"original_path" gorm:"not null"`
	DerivativePath string `json:"derivative_path" gorm:"not null"`
}

type ImageMetadata struct {
	gorm.Model
	ImageID       uint           `json:"image_id" gorm:"uniqueIndex;not null"`
	OwnerID       string         `json:"owner_id" gorm:"not null;index"`
	Description   string         `json:"description"`
	Tags          pq.StringArray `json:"tags" gorm:"type:text[]"`
	Colors        pq.StringArray `json:"colors" gorm:"type:text[]"`
	GeneratedName string         `json:"generated_name"`
	Status        string         `json:"status" gorm:"not null;default:'pending'"`
}
