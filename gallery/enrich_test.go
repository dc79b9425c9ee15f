package gallery

import (
	"context"
	"fmt"
	"image/color"
	"testing"

	"github.com/lumina-gallery/lumina/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedPending(store *fakeStore, ownerID string) uint {
	return store.seed(ownerID, "photo.png", &models.ImageMetadata{
		Tags:   []string{},
		Colors: []string{},
		Status: models.EnrichmentPending,
	})
}

func TestEnrichWithProvider(t *testing.T) {
	store := newFakeStore()
	id := seedPending(store, "owner-1")

	provider := &fakeProvider{analysis: &Analysis{
		Tags:        []string{"Beach", "SUNSET", "ocean", "sand"},
		Description: "A photo of a golden sunset over the beach.",
		Colors:      []string{"#FF6B35", "#F39C12", "#4A90E2"},
	}}

	enricher := NewEnricher(store, provider, zap.NewNop())
	enricher.Process(context.Background(), EnrichJob{
		Data:    encodePNG(32, 32, color.RGBA{R: 255, A: 255}),
		ImageID: id,
		OwnerID: "owner-1",
	})

	meta, err := store.GetMetadata(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, models.EnrichmentCompleted, meta.Status)
	assert.Equal(t, []string{"beach", "sunset", "ocean", "sand"}, []string(meta.Tags))
	assert.Equal(t, []string{"#FF6B35", "#F39C12", "#4A90E2"}, []string(meta.Colors))
	assert.Equal(t, "a-golden-sunset-over-the-beach", meta.GeneratedName)
}

func TestEnrichDeduplicatesProviderTags(t *testing.T) {
	store := newFakeStore()
	id := seedPending(store, "owner-1")

	// Case variants collapse to one entry after lowercasing; first
	// appearance wins the position.
	provider := &fakeProvider{analysis: &Analysis{
		Tags:        []string{"Beach", "beach", "BEACH", "sand", " Sand "},
		Description: "A sandy beach.",
		Colors:      []string{"#FF6B35"},
	}}

	enricher := NewEnricher(store, provider, zap.NewNop())
	enricher.Process(context.Background(), EnrichJob{
		Data:    encodePNG(32, 32, color.RGBA{R: 255, A: 255}),
		ImageID: id,
		OwnerID: "owner-1",
	})

	meta, err := store.GetMetadata(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sand"}, []string(meta.Tags))
}

func TestEnrichFallbackWithoutProvider(t *testing.T) {
	store := newFakeStore()
	id := seedPending(store, "owner-1")

	enricher := NewEnricher(store, nil, zap.NewNop())
	enricher.Process(context.Background(), EnrichJob{
		Data:    encodePNG(32, 32, color.RGBA{R: 255, A: 255}),
		ImageID: id,
		OwnerID: "owner-1",
	})

	meta, err := store.GetMetadata(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, models.EnrichmentCompleted, meta.Status)
	assert.Equal(t, fallbackAnalysis.Tags, []string(meta.Tags))
	assert.Equal(t, fallbackAnalysis.Description, meta.Description)
	// Colors come from the local palette pass of a solid red image.
	require.NotEmpty(t, meta.Colors)
	assert.Equal(t, "#FF0000", meta.Colors[0])
}

func TestEnrichFallbackOnProviderError(t *testing.T) {
	store := newFakeStore()
	id := seedPending(store, "owner-1")

	provider := &fakeProvider{err: fmt.Errorf("upstream timeout")}
	enricher := NewEnricher(store, provider, zap.NewNop())
	enricher.Process(context.Background(), EnrichJob{
		Data:    encodePNG(32, 32, color.RGBA{G: 255, A: 255}),
		ImageID: id,
		OwnerID: "owner-1",
	})

	meta, err := store.GetMetadata(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, models.EnrichmentCompleted, meta.Status)
	assert.Equal(t, fallbackAnalysis.Tags, []string(meta.Tags))
	require.NotEmpty(t, meta.Colors)
	assert.Equal(t, "#00FF00", meta.Colors[0])
}

func TestEnrichRecordsFailureOnStoreError(t *testing.T) {
	store := newFakeStore()
	id := seedPending(store, "owner-1")
	store.failUpsertOnce = true

	enricher := NewEnricher(store, nil, zap.NewNop())
	enricher.Process(context.Background(), EnrichJob{
		Data:    encodePNG(8, 8, color.White),
		ImageID: id,
		OwnerID: "owner-1",
	})

	meta, err := store.GetMetadata(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.EnrichmentFailed, meta.Status)
}

func TestEnrichQueueOverflowDropsJob(t *testing.T) {
	store := newFakeStore()
	enricher := NewEnricher(store, nil, zap.NewNop())

	// Workers are not started, so the buffer fills and the next enqueue must
	// report the drop instead of blocking.
	for i := 0; i < enrichQueueSize; i++ {
		require.True(t, enricher.Enqueue(EnrichJob{ImageID: uint(i)}))
	}
	assert.False(t, enricher.Enqueue(EnrichJob{ImageID: 9999}))
}
