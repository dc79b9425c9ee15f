package gallery

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina-gallery/lumina/models"
	"go.uber.org/zap"
)

// IngestInput is one file submitted for upload.
type IngestInput struct {
	Data        []byte
	Filename    string
	ContentType string
}

// IngestResult is returned to the uploader once both blobs and the catalog
// record are durable. Enrichment continues in the background.
type IngestResult struct {
	Image         models.Image
	DerivativeURL string
	OriginalURL   string
}

// Canonical MIME type per extension. Fixes header quirks like .jpg arriving as
// image/jpg and gives a sane type when the client sent none.
var mimeTypeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
}

// Ingest runs the full upload sequence: validate, derive, persist both blobs,
// create the catalog record plus its pending metadata row, then queue
// enrichment. Partial storage writes are compensated before any error
// surfaces, so a failed ingest leaves no orphaned blobs.
func (s *Service) Ingest(ctx context.Context, in IngestInput, ownerID string) (*IngestResult, error) {
	if err := ValidateImage(in.Data, in.ContentType, s.sniff); err != nil {
		return nil, err
	}

	derivative, err := MakeDerivative(in.Data)
	if err != nil {
		return nil, Validation("%v", err)
	}

	ext := fileExt(in.Filename)
	contentType := mimeTypeByExt[ext]
	if contentType == "" {
		contentType = in.ContentType
	}
	if contentType == "" {
		// No usable extension and no declared type: the blob still needs a
		// content type, so sniff one, or name the extension directly.
		if s.sniff != nil {
			contentType = s.sniff(in.Data)
		}
		if contentType == "" {
			contentType = "image/" + ext
		}
	}

	// Blob names are freshly generated, never derived from the client's
	// filename.
	id := uuid.New().String()
	originalPath := fmt.Sprintf("%s/original/%s.%s", ownerID, id, ext)
	derivativePath := fmt.Sprintf("%s/derivative/%s.jpg", ownerID, id)

	if err := s.blobs.Put(ctx, originalPath, in.Data, contentType); err != nil {
		return nil, Upstream("failed to upload to storage", err)
	}

	if err := s.blobs.Put(ctx, derivativePath, derivative, "image/jpeg"); err != nil {
		s.cleanupBlob(ctx, originalPath)
		return nil, Upstream("failed to upload to storage", err)
	}

	img := models.Image{
		OwnerID:        ownerID,
		Filename:       in.Filename,
		FileSize:       int64(len(in.Data)),
		ContentType:    contentType,
		OriginalPath:   originalPath,
		DerivativePath: derivativePath,
	}
	if err := s.store.CreateImage(ctx, &img); err != nil {
		s.cleanupBlob(ctx, originalPath)
		s.cleanupBlob(ctx, derivativePath)
		return nil, Upstream("failed to create image record", err)
	}

	meta := models.ImageMetadata{
		ImageID: img.ID,
		OwnerID: ownerID,
		Tags:    []string{},
		Colors:  []string{},
		Status:  models.EnrichmentPending,
	}
	if err := s.store.CreateMetadata(ctx, &meta); err != nil {
		if derr := s.store.DeleteImage(ctx, img.ID); derr != nil {
			s.log.Error("failed to roll back image record", zap.Uint("image_id", img.ID), zap.Error(derr))
		}
		s.cleanupBlob(ctx, originalPath)
		s.cleanupBlob(ctx, derivativePath)
		return nil, Upstream("failed to create metadata record", err)
	}

	// Enrichment must not block or fail the upload. A full queue leaves the
	// item pending until retried out-of-band.
	if !s.enricher.Enqueue(EnrichJob{Data: in.Data, ImageID: img.ID, OwnerID: ownerID}) {
		s.log.Warn("enrichment queue full, item stays pending", zap.Uint("image_id", img.ID))
	}

	return &IngestResult{
		Image:         img,
		OriginalURL:   s.signedURL(ctx, originalPath),
		DerivativeURL: s.signedURL(ctx, derivativePath),
	}, nil
}

// cleanupBlob deletes a partially written blob. Cleanup is best-effort: a
// failed delete is logged, never raised.
func (s *Service) cleanupBlob(ctx context.Context, path string) {
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.log.Warn("failed to delete blob during cleanup", zap.String("path", path), zap.Error(err))
	}
}

// BulkSuccess and BulkFailure are the per-file outcomes of a bulk upload.
type BulkSuccess struct {
	Filename string `json:"filename"`
	ID       uint   `json:"id"`
	Message  string `json:"message"`
}

type BulkFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type BulkResult struct {
	Successful   []BulkSuccess `json:"successful"`
	Failed       []BulkFailure `json:"failed"`
	Total        int           `json:"total"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
}

// BulkIngest ingests each input independently; one file's failure never aborts
// or rolls back its siblings.
func (s *Service) BulkIngest(ctx context.Context, inputs []IngestInput, ownerID string) *BulkResult {
	result := &BulkResult{
		Successful: []BulkSuccess{},
		Failed:     []BulkFailure{},
		Total:      len(inputs),
	}

	for _, in := range inputs {
		res, err := s.Ingest(ctx, in, ownerID)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{Filename: in.Filename, Error: Reason(err)})
			result.FailureCount++
			continue
		}
		result.Successful = append(result.Successful, BulkSuccess{
			Filename: in.Filename,
			ID:       res.Image.ID,
			Message:  "upload successful",
		})
		result.SuccessCount++
	}

	return result
}

func fileExt(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		return strings.ToLower(filename[i+1:])
	}
	return "bin"
}
