package gallery

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/lumina-gallery/lumina/models"
)

// Sort orders accepted by List.
const (
	SortRecent = "recent"
	SortOldest = "oldest"
	SortAtoZ   = "a-z"
	SortZtoA   = "z-a"
)

// ListParams are the query-engine arguments. Out-of-range values are rejected,
// not clamped.
type ListParams struct {
	Limit  int
	Offset int
	Search string
	Tags   []string
	Colors []string
	SortBy string
}

// Item is one catalog entry as served to clients: the record flattened with
// its metadata, display name, and fresh signed URLs.
type Item struct {
	ID            uint      `json:"id"`
	Filename      string    `json:"filename"`
	FileSize      int64     `json:"file_size"`
	ContentType   string    `json:"content_type"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	Colors        []string  `json:"colors"`
	GeneratedName string    `json:"generated_name,omitempty"`
	DisplayName   string    `json:"display_name"`
	Status        string    `json:"status"`
	OriginalURL   string    `json:"original_url,omitempty"`
	DerivativeURL string    `json:"derivative_url,omitempty"`
}

type ListResult struct {
	Items []Item `json:"images"`
	Total int    `json:"total"`
}

// List returns one page of the owner's catalog. Filters are applied in memory
// over the full catalog so that Total reflects the post-filter count;
// alphabetical sorts run on resolved display names before the page slice.
func (s *Service) List(ctx context.Context, ownerID string, p ListParams) (*ListResult, error) {
	if p.Limit < 1 || p.Limit > 100 {
		return nil, Validation("invalid limit parameter, must be between 1 and 100")
	}
	if p.Offset < 0 {
		return nil, Validation("invalid offset parameter, must be 0 or greater")
	}
	switch p.SortBy {
	case SortRecent, SortOldest, SortAtoZ, SortZtoA:
	default:
		return nil, Validation("invalid sort_by parameter, must be one of: recent, oldest, a-z, z-a")
	}

	newestFirst := p.SortBy != SortOldest
	records, err := s.store.ListRecords(ctx, ownerID, newestFirst)
	if err != nil {
		return nil, Upstream("failed to fetch images", err)
	}

	filtered := filterRecords(records, p)

	// Alphabetical sorts run over resolved display names and therefore cannot
	// be pushed to the store; they happen after filtering, before paging.
	switch p.SortBy {
	case SortAtoZ:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(displayName(filtered[i])) < strings.ToLower(displayName(filtered[j]))
		})
	case SortZtoA:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(displayName(filtered[i])) > strings.ToLower(displayName(filtered[j]))
		})
	}

	total := len(filtered)

	// URLs are signed only for the returned page.
	items := make([]Item, 0, p.Limit)
	for _, rec := range pageRecords(filtered, p.Offset, p.Limit) {
		item := flatten(rec)
		item.OriginalURL = s.signedURL(ctx, rec.Image.OriginalPath)
		item.DerivativeURL = s.signedURL(ctx, rec.Image.DerivativePath)
		items = append(items, item)
	}

	return &ListResult{Items: items, Total: total}, nil
}

func filterRecords(records []Record, p ListParams) []Record {
	out := records

	if len(p.Tags) > 0 {
		out = keep(out, func(rec Record) bool {
			return hasAll(recTags(rec), p.Tags, strings.ToLower)
		})
	}

	if len(p.Colors) > 0 {
		out = keep(out, func(rec Record) bool {
			return hasAll(recColors(rec), p.Colors, strings.ToUpper)
		})
	}

	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		out = keep(out, func(rec Record) bool {
			return matchesSearch(rec, needle)
		})
	}

	return out
}

// hasAll reports whether have is a superset of want under the given
// normalization. AND semantics: every wanted entry must be present.
func hasAll(have, want []string, norm func(string) string) bool {
	if len(have) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[norm(h)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[norm(strings.TrimSpace(w))]; !ok {
			return false
		}
	}
	return true
}

// matchesSearch is an OR across description, tags, filename, and the generated
// display name, all case-insensitive substring matches.
func matchesSearch(rec Record, needle string) bool {
	if rec.Meta != nil {
		if strings.Contains(strings.ToLower(rec.Meta.Description), needle) {
			return true
		}
		for _, tag := range rec.Meta.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		if rec.Meta.GeneratedName != "" && strings.Contains(strings.ToLower(rec.Meta.GeneratedName), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(rec.Image.Filename), needle)
}

func keep(records []Record, pred func(Record) bool) []Record {
	out := records[:0:0]
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func pageRecords(records []Record, offset, limit int) []Record {
	if offset >= len(records) {
		return nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}

// flatten projects a record onto the client item shape, defaulting absent
// metadata to empty values.
func flatten(rec Record) Item {
	item := Item{
		ID:          rec.Image.ID,
		Filename:    rec.Image.Filename,
		FileSize:    rec.Image.FileSize,
		ContentType: rec.Image.ContentType,
		UploadedAt:  rec.Image.CreatedAt,
		Tags:        []string{},
		Colors:      []string{},
		Status:      models.EnrichmentPending,
		DisplayName: displayName(rec),
	}
	if rec.Meta != nil {
		item.Description = rec.Meta.Description
		if rec.Meta.Tags != nil {
			item.Tags = rec.Meta.Tags
		}
		if rec.Meta.Colors != nil {
			item.Colors = rec.Meta.Colors
		}
		item.GeneratedName = rec.Meta.GeneratedName
		if rec.Meta.Status != "" {
			item.Status = rec.Meta.Status
		}
	}
	return item
}

func recTags(rec Record) []string {
	if rec.Meta == nil {
		return nil
	}
	return rec.Meta.Tags
}

func recColors(rec Record) []string {
	if rec.Meta == nil {
		return nil
	}
	return rec.Meta.Colors
}
