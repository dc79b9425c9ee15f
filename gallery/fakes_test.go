package gallery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"
	"time"

	"github.com/lumina-gallery/lumina/models"
	"go.uber.org/zap"
)

// fakeStore is an in-memory gallery.Store with switchable failure points.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint
	images map[uint]models.Image
	metas  map[uint]models.ImageMetadata // keyed by image id

	failCreateImage bool
	failCreateMeta  bool
	failUpsertOnce  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		images: make(map[uint]models.Image),
		metas:  make(map[uint]models.ImageMetadata),
	}
}

func (f *fakeStore) CreateImage(_ context.Context, img *models.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateImage {
		return fmt.Errorf("record store down")
	}
	f.nextID++
	img.ID = f.nextID
	img.CreatedAt = time.Unix(int64(1700000000+f.nextID), 0)
	f.images[img.ID] = *img
	return nil
}

func (f *fakeStore) DeleteImage(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.images, id)
	delete(f.metas, id)
	return nil
}

func (f *fakeStore) GetImage(_ context.Context, ownerID string, id uint) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[id]
	if !ok {
		return nil, NotFound("image %d not found", id)
	}
	if img.OwnerID != ownerID {
		return nil, Forbidden("image %d does not belong to the caller", id)
	}
	return &img, nil
}

func (f *fakeStore) ListRecords(_ context.Context, ownerID string, newestFirst bool) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []Record
	for _, img := range f.images {
		if img.OwnerID != ownerID {
			continue
		}
		rec := Record{Image: img}
		if meta, ok := f.metas[img.ID]; ok {
			m := meta
			rec.Meta = &m
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if newestFirst {
			return records[i].Image.ID > records[j].Image.ID
		}
		return records[i].Image.ID < records[j].Image.ID
	})
	return records, nil
}

func (f *fakeStore) CreateMetadata(_ context.Context, meta *models.ImageMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateMeta {
		return fmt.Errorf("record store down")
	}
	f.metas[meta.ImageID] = *meta
	return nil
}

func (f *fakeStore) GetMetadata(_ context.Context, imageID uint) (*models.ImageMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta, ok := f.metas[imageID]
	if !ok {
		return nil, NotFound("metadata for image %d not found", imageID)
	}
	return &meta, nil
}

func (f *fakeStore) UpsertMetadata(_ context.Context, meta *models.ImageMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsertOnce {
		f.failUpsertOnce = false
		return fmt.Errorf("record store down")
	}
	f.metas[meta.ImageID] = *meta
	return nil
}

// seed inserts an image plus optional metadata directly, bypassing ingest.
func (f *fakeStore) seed(ownerID, filename string, meta *models.ImageMetadata) uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	img := models.Image{
		OwnerID:        ownerID,
		Filename:       filename,
		OriginalPath:   fmt.Sprintf("%s/original/%d.png", ownerID, id),
		DerivativePath: fmt.Sprintf("%s/derivative/%d.jpg", ownerID, id),
	}
	img.ID = id
	img.CreatedAt = time.Unix(int64(1700000000+id), 0)
	f.images[id] = img
	if meta != nil {
		m := *meta
		m.ImageID = id
		m.OwnerID = ownerID
		f.metas[id] = m
	}
	return id
}

// fakeBlobs records puts and deletes and can fail a put by path substring.
type fakeBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	ctypes    map[string]string
	deletes   []string
	failPutOn string
	failSign  bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{
		objects: make(map[string][]byte),
		ctypes:  make(map[string]string),
	}
}

func (f *fakeBlobs) Put(_ context.Context, path string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPutOn != "" && bytes.Contains([]byte(path), []byte(f.failPutOn)) {
		return fmt.Errorf("blob store down")
	}
	f.objects[path] = data
	f.ctypes[path] = contentType
	return nil
}

func (f *fakeBlobs) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, path)
	delete(f.objects, path)
	return nil
}

func (f *fakeBlobs) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if f.failSign {
		return "", fmt.Errorf("signer down")
	}
	return "https://signed.example/" + path, nil
}

// fakeProvider returns a canned analysis or error.
type fakeProvider struct {
	analysis *Analysis
	err      error
}

func (f *fakeProvider) Analyze(context.Context, []byte) (*Analysis, error) {
	return f.analysis, f.err
}

func newTestService(store *fakeStore, blobs *fakeBlobs, provider VisionProvider) (*Service, *Enricher) {
	enricher := NewEnricher(store, provider, zap.NewNop())
	svc := NewService(store, blobs, enricher, DetectContentType, zap.NewNop())
	return svc, enricher
}

// encodePNG renders a solid-color image for test uploads.
func encodePNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
