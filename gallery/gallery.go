package gallery

import (
	"context"
	"time"

	"github.com/lumina-gallery/lumina/models"
	"go.uber.org/zap"
)

// Tunables fixed by the product.
const (
	MaxUploadSize    = 10 * 1024 * 1024 // 10MB
	DerivativeWidth  = 300
	DerivativeHeight = 300
	SignedURLTTL     = time.Hour
)

// Record is one catalog item with its metadata, which may be absent while
// enrichment has not produced a row or after a failed migration. Readers treat
// missing metadata as empty, never as an error.
type Record struct {
	Image models.Image
	Meta  *models.ImageMetadata
}

// Store is the record-store collaborator. Implementations must scope every
// owner-filtered call strictly to the given owner.
type Store interface {
	CreateImage(ctx context.Context, img *models.Image) error
	DeleteImage(ctx context.Context, id uint) error
	GetImage(ctx context.Context, ownerID string, id uint) (*models.Image, error)
	// ListRecords returns all of the owner's items joined with metadata,
	// ordered by creation time (then id) descending when newestFirst is set.
	ListRecords(ctx context.Context, ownerID string, newestFirst bool) ([]Record, error)

	CreateMetadata(ctx context.Context, meta *models.ImageMetadata) error
	GetMetadata(ctx context.Context, imageID uint) (*models.ImageMetadata, error)
	UpsertMetadata(ctx context.Context, meta *models.ImageMetadata) error
}

// BlobStore is the object-storage collaborator. Delete is best-effort from the
// caller's point of view; SignedURL failures degrade to a missing URL.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// Analysis is the structured result of a vision-provider call.
type Analysis struct {
	Tags        []string
	Description string
	Colors      []string
}

// VisionProvider analyzes image bytes. Implementations return an error for
// unreachable providers and unparsable responses alike; the enrichment
// pipeline falls back locally in both cases.
type VisionProvider interface {
	Analyze(ctx context.Context, data []byte) (*Analysis, error)
}

// Service is the gallery core: ingestion, queries, similarity, aggregates.
type Service struct {
	store    Store
	blobs    BlobStore
	enricher *Enricher
	sniff    SniffFunc
	log      *zap.Logger
}

func NewService(store Store, blobs BlobStore, enricher *Enricher, sniff SniffFunc, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		blobs:    blobs,
		enricher: enricher,
		sniff:    sniff,
		log:      log,
	}
}

// signedURL wraps BlobStore.SignedURL with the degraded-to-empty policy.
func (s *Service) signedURL(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}
	url, err := s.blobs.SignedURL(ctx, path, SignedURLTTL)
	if err != nil {
		s.log.Warn("failed to sign blob URL", zap.String("path", path), zap.Error(err))
		return ""
	}
	return url
}
