package gallery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lumina-gallery/lumina/models"
	"go.uber.org/zap"
)

const (
	enrichQueueSize   = 64
	enrichWorkers     = 2
	maxTags           = 15
	maxColors         = 3
	visionCallTimeout = 15 * time.Second
)

// Degraded analysis used when the vision provider is absent, unreachable, or
// returns something unparsable. The tags and description are intentionally
// generic so degraded output is recognizable; colors still come from the local
// palette pass.
var fallbackAnalysis = Analysis{
	Tags:        []string{"photograph", "image", "digital", "visual", "content", "media"},
	Description: "An image with various visual elements and content.",
}

// EnrichJob carries everything a worker needs; the original bytes travel with
// the job so workers never re-read storage.
type EnrichJob struct {
	Data    []byte
	ImageID uint
	OwnerID string
}

// Enricher runs the asynchronous metadata pipeline on a bounded worker pool.
// Jobs are queued by the ingest path and never block it; queue overflow drops
// the job and leaves the item pending.
type Enricher struct {
	store    Store
	provider VisionProvider // nil means fallback-only mode
	log      *zap.Logger

	jobs chan EnrichJob
	wg   sync.WaitGroup
}

func NewEnricher(store Store, provider VisionProvider, log *zap.Logger) *Enricher {
	return &Enricher{
		store:    store,
		provider: provider,
		log:      log,
		jobs:     make(chan EnrichJob, enrichQueueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until Stop closes it.
func (e *Enricher) Start() {
	for i := 0; i < enrichWorkers; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for job := range e.jobs {
				e.Process(context.Background(), job)
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (e *Enricher) Stop() {
	close(e.jobs)
	e.wg.Wait()
}

// Enqueue hands a job to the pool without blocking. Returns false when the
// queue is full; the caller logs and moves on.
func (e *Enricher) Enqueue(job EnrichJob) bool {
	select {
	case e.jobs <- job:
		return true
	default:
		return false
	}
}

// Process runs one enrichment to completion. Errors never propagate: every
// outcome ends in a metadata upsert with status completed or failed.
func (e *Enricher) Process(ctx context.Context, job EnrichJob) {
	analysis, degraded := e.analyze(ctx, job.Data)

	// The local color pass always runs, even when the provider succeeded: its
	// percentages are pixel-weighted, unlike the provider's categorical picks.
	details, palErr := Palette(job.Data, maxColors)
	if palErr != nil {
		e.log.Warn("local color extraction failed", zap.Uint("image_id", job.ImageID), zap.Error(palErr))
		details = []ColorDetail{{Hex: "#808080", RGB: "rgb(128, 128, 128)", Percentage: 100.0}}
	}
	e.log.Debug("local color detail", zap.Uint("image_id", job.ImageID), zap.Any("colors", details))

	colors := analysis.Colors
	if degraded || len(colors) == 0 {
		colors = paletteHexes(details)
	}
	if len(colors) > maxColors {
		colors = colors[:maxColors]
	}

	tags := normalizeTags(analysis.Tags)
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	meta := models.ImageMetadata{
		ImageID:       job.ImageID,
		OwnerID:       job.OwnerID,
		Description:   analysis.Description,
		Tags:          tags,
		Colors:        colors,
		GeneratedName: DisplayNameFromDescription(analysis.Description),
		Status:        models.EnrichmentCompleted,
	}

	if err := e.store.UpsertMetadata(ctx, &meta); err != nil {
		e.log.Error("failed to save enrichment result", zap.Uint("image_id", job.ImageID), zap.Error(err))
		e.markFailed(ctx, job)
	}
}

// analyze calls the vision provider with a bounded timeout and substitutes the
// generic fallback on any failure. The second return reports degradation.
func (e *Enricher) analyze(ctx context.Context, data []byte) (Analysis, bool) {
	if e.provider == nil {
		return fallbackAnalysis, true
	}

	callCtx, cancel := context.WithTimeout(ctx, visionCallTimeout)
	defer cancel()

	analysis, err := e.provider.Analyze(callCtx, data)
	if err != nil {
		e.log.Warn("vision provider failed, using fallback analysis", zap.Error(err))
		return fallbackAnalysis, true
	}
	return *analysis, false
}

// normalizeTags lowercases and trims tags and drops duplicates, keeping
// first-appearance order. Case variants from an untrusted source must not
// survive as separate entries.
func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

func (e *Enricher) markFailed(ctx context.Context, job EnrichJob) {
	meta := models.ImageMetadata{
		ImageID:     job.ImageID,
		OwnerID:     job.OwnerID,
		Description: "Error processing image",
		Tags:        []string{"error"},
		Colors:      []string{"#000000"},
		Status:      models.EnrichmentFailed,
	}
	if err := e.store.UpsertMetadata(ctx, &meta); err != nil {
		e.log.Error("failed to record enrichment failure", zap.Uint("image_id", job.ImageID), zap.Error(err))
	}
}
