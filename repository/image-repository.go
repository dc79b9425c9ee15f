package repository

import (
	"context"
	"errors"

	"github.com/lumina-gallery/lumina/gallery"
	"github.com/lumina-gallery/lumina/models"
	"gorm.io/gorm"
)

// ImageRepository implements gallery.Store over gorm/Postgres.
type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) CreateImage(ctx context.Context, img *models.Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

// DeleteImage removes the record and cascades to its metadata row.
func (r *ImageRepository) DeleteImage(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.ImageMetadata{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Image{}, id).Error
	})
}

// GetImage distinguishes an absent item (not found) from one owned by someone
// else (forbidden), so the caller can refuse cross-owner access explicitly.
func (r *ImageRepository) GetImage(ctx context.Context, ownerID string, id uint) (*models.Image, error) {
	var img models.Image
	err := r.db.WithContext(ctx).First(&img, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gallery.NotFound("image %d not found", id)
	}
	if err != nil {
		return nil, gallery.Upstream("failed to fetch image", err)
	}
	if img.OwnerID != ownerID {
		return nil, gallery.Forbidden("image %d does not belong to the caller", id)
	}
	return &img, nil
}

func (r *ImageRepository) ListRecords(ctx context.Context, ownerID string, newestFirst bool) ([]gallery.Record, error) {
	order := "created_at ASC, id ASC"
	if newestFirst {
		order = "created_at DESC, id DESC"
	}

	var images []models.Image
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(order).
		Find(&images).Error; err != nil {
		return nil, gallery.Upstream("failed to fetch images", err)
	}

	if len(images) == 0 {
		return []gallery.Record{}, nil
	}

	ids := make([]uint, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}

	var metas []models.ImageMetadata
	if err := r.db.WithContext(ctx).
		Where("image_id IN ?", ids).
		Find(&metas).Error; err != nil {
		return nil, gallery.Upstream("failed to fetch metadata", err)
	}

	metaByImage := make(map[uint]*models.ImageMetadata, len(metas))
	for i := range metas {
		metaByImage[metas[i].ImageID] = &metas[i]
	}

	records := make([]gallery.Record, len(images))
	for i, img := range images {
		records[i] = gallery.Record{Image: img, Meta: metaByImage[img.ID]}
	}
	return records, nil
}

func (r *ImageRepository) CreateMetadata(ctx context.Context, meta *models.ImageMetadata) error {
	return r.db.WithContext(ctx).Create(meta).Error
}

func (r *ImageRepository) GetMetadata(ctx context.Context, imageID uint) (*models.ImageMetadata, error) {
	var meta models.ImageMetadata
	err := r.db.WithContext(ctx).Where("image_id = ?", imageID).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gallery.NotFound("metadata for image %d not found", imageID)
	}
	if err != nil {
		return nil, gallery.Upstream("failed to fetch metadata", err)
	}
	return &meta, nil
}

// UpsertMetadata updates the existing row for the image in place, or inserts
// one when enrichment never created it.
func (r *ImageRepository) UpsertMetadata(ctx context.Context, meta *models.ImageMetadata) error {
	var existing models.ImageMetadata
	err := r.db.WithContext(ctx).Where("image_id = ?", meta.ImageID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(meta).Error
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"description":    meta.Description,
		"tags":           meta.Tags,
		"colors":         meta.Colors,
		"generated_name": meta.GeneratedName,
		"status":         meta.Status,
	}).Error
}
