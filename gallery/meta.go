package gallery

import (
	"context"
	"strings"

	"github.com/lumina-gallery/lumina/models"
)

// Get returns one item with metadata and fresh signed URLs.
func (s *Service) Get(ctx context.Context, ownerID string, imageID uint) (*Item, error) {
	img, err := s.store.GetImage(ctx, ownerID, imageID)
	if err != nil {
		return nil, err
	}

	meta, err := s.store.GetMetadata(ctx, imageID)
	if err != nil && KindOf(err) != KindNotFound {
		return nil, Upstream("failed to fetch metadata", err)
	}

	item := flatten(Record{Image: *img, Meta: meta})
	item.OriginalURL = s.signedURL(ctx, img.OriginalPath)
	item.DerivativeURL = s.signedURL(ctx, img.DerivativePath)
	return &item, nil
}

// Delete removes an item: the record delete cascades to metadata, then both
// blobs are removed best-effort.
func (s *Service) Delete(ctx context.Context, ownerID string, imageID uint) error {
	img, err := s.store.GetImage(ctx, ownerID, imageID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteImage(ctx, img.ID); err != nil {
		return Upstream("failed to delete image record", err)
	}

	s.cleanupBlob(ctx, img.OriginalPath)
	s.cleanupBlob(ctx, img.DerivativePath)
	return nil
}

// MetadataPatch is a partial owner edit; nil fields are left untouched and the
// enrichment status is never altered by a patch.
type MetadataPatch struct {
	Description *string
	Tags        []string
	Colors      []string
}

func (p MetadataPatch) empty() bool {
	return p.Description == nil && p.Tags == nil && p.Colors == nil
}

// UpdateMetadata applies an owner edit to an item's metadata, creating the row
// if enrichment never produced one.
func (s *Service) UpdateMetadata(ctx context.Context, ownerID string, imageID uint, patch MetadataPatch) (*Item, error) {
	if patch.empty() {
		return nil, Validation("at least one of description, tags, or colors is required")
	}

	img, err := s.store.GetImage(ctx, ownerID, imageID)
	if err != nil {
		return nil, err
	}

	meta, err := s.store.GetMetadata(ctx, imageID)
	if err != nil {
		if KindOf(err) != KindNotFound {
			return nil, Upstream("failed to fetch metadata", err)
		}
		meta = &models.ImageMetadata{
			ImageID: imageID,
			OwnerID: ownerID,
			Tags:    []string{},
			Colors:  []string{},
			Status:  models.EnrichmentPending,
		}
	}

	if patch.Description != nil {
		meta.Description = *patch.Description
	}
	if patch.Tags != nil {
		meta.Tags = normalizeTags(patch.Tags)
	}
	if patch.Colors != nil {
		meta.Colors = patch.Colors
	}

	if err := s.store.UpsertMetadata(ctx, meta); err != nil {
		return nil, Upstream("failed to update metadata", err)
	}

	item := flatten(Record{Image: *img, Meta: meta})
	item.DerivativeURL = s.signedURL(ctx, img.DerivativePath)
	return &item, nil
}

// RecentTags returns up to limit unique tags ordered by first appearance when
// scanning the owner's items newest-first.
func (s *Service) RecentTags(ctx context.Context, ownerID string, limit int) ([]string, error) {
	records, err := s.store.ListRecords(ctx, ownerID, true)
	if err != nil {
		return nil, Upstream("failed to fetch images", err)
	}

	seen := make(map[string]struct{})
	tags := []string{}
	for _, rec := range records {
		for _, tag := range recTags(rec) {
			tag = strings.ToLower(tag)
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
			if len(tags) == limit {
				return tags, nil
			}
		}
	}
	return tags, nil
}

// PopularColor is one aggregate entry for the color picker.
type PopularColor struct {
	Hex   string `json:"hex"`
	Count int    `json:"count"`
}

// PopularColors returns up to limit colors by descending frequency across the
// owner's catalog. Equal frequencies keep first-seen order over the
// newest-first scan, so the result is deterministic.
func (s *Service) PopularColors(ctx context.Context, ownerID string, limit int) ([]PopularColor, error) {
	records, err := s.store.ListRecords(ctx, ownerID, true)
	if err != nil {
		return nil, Upstream("failed to fetch images", err)
	}

	counts := make(map[string]int)
	order := []string{}
	for _, rec := range records {
		for _, c := range recColors(rec) {
			c = strings.ToUpper(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
	}

	// Insertion-ordered stable sort: ties stay in first-seen order.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	if len(order) > limit {
		order = order[:limit]
	}

	colors := make([]PopularColor, 0, len(order))
	for _, c := range order {
		colors = append(colors, PopularColor{Hex: c, Count: counts[c]})
	}
	return colors, nil
}
