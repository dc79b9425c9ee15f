package gallery

import (
	"context"
	"sort"
	"strings"
)

// Component weights for the composite score. Shared tags are the strongest
// signal, colors next, free-text overlap the noisiest.
const (
	tagWeight     = 0.5
	colorWeight   = 0.3
	keywordWeight = 0.2
)

// SimilarItem is one ranked candidate with its component breakdown.
type SimilarItem struct {
	Item           Item    `json:"image"`
	Similarity     float64 `json:"similarity"`
	TagOverlap     float64 `json:"tag_similarity"`
	ColorOverlap   float64 `json:"color_similarity"`
	KeywordOverlap float64 `json:"keyword_similarity"`
}

// FindSimilar ranks the owner's other items against the reference item by a
// weighted blend of tag, color, and description-keyword overlap. Each
// component is the matched fraction of the reference's own set; candidates
// with zero composite score are excluded.
func (s *Service) FindSimilar(ctx context.Context, ownerID string, referenceID uint, limit int) ([]SimilarItem, error) {
	if limit < 1 || limit > 50 {
		return nil, Validation("invalid limit parameter, must be between 1 and 50")
	}

	// Ownership gates all scoring work.
	if _, err := s.store.GetImage(ctx, ownerID, referenceID); err != nil {
		return nil, err
	}

	// A reference without metadata has empty component sets and matches
	// nothing; that is an empty result, not an error.
	refMeta, err := s.store.GetMetadata(ctx, referenceID)
	if err != nil && KindOf(err) != KindNotFound {
		return nil, Upstream("failed to fetch metadata", err)
	}

	var refTags, refColors, refKeywords map[string]struct{}
	if refMeta != nil {
		refTags = toSet(refMeta.Tags, strings.ToLower)
		refColors = toSet(refMeta.Colors, strings.ToUpper)
		refKeywords = descriptionKeywords(refMeta.Description)
	}

	records, err := s.store.ListRecords(ctx, ownerID, true)
	if err != nil {
		return nil, Upstream("failed to fetch images", err)
	}

	ranked := make([]SimilarItem, 0, len(records))
	for _, rec := range records {
		if rec.Image.ID == referenceID {
			continue
		}

		tagScore := overlapPct(refTags, toSet(recTags(rec), strings.ToLower))
		colorScore := overlapPct(refColors, toSet(recColors(rec), strings.ToUpper))
		keywordScore := overlapPct(refKeywords, candidateKeywords(rec))

		composite := tagWeight*tagScore + colorWeight*colorScore + keywordWeight*keywordScore
		if composite == 0 {
			continue
		}

		item := flatten(rec)
		item.DerivativeURL = s.signedURL(ctx, rec.Image.DerivativePath)

		ranked = append(ranked, SimilarItem{
			Item:           item,
			Similarity:     roundPct(composite),
			TagOverlap:     roundPct(tagScore),
			ColorOverlap:   roundPct(colorScore),
			KeywordOverlap: roundPct(keywordScore),
		})
	}

	// Stable sort keeps the fetch order among equal scores, so ties are
	// deterministic for identical inputs.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// descriptionKeywords tokenizes a description for overlap scoring: whitespace
// split, case-folded, tokens longer than three characters, no stemming.
func descriptionKeywords(description string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(description)) {
		if len(tok) > 3 {
			set[tok] = struct{}{}
		}
	}
	return set
}

func candidateKeywords(rec Record) map[string]struct{} {
	if rec.Meta == nil {
		return nil
	}
	return descriptionKeywords(rec.Meta.Description)
}

// overlapPct is |ref ∩ cand| / |ref| x 100, and 0 for an empty reference set.
func overlapPct(ref, cand map[string]struct{}) float64 {
	if len(ref) == 0 {
		return 0
	}
	matched := 0
	for k := range ref {
		if _, ok := cand[k]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(ref)) * 100
}

func toSet(values []string, norm func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = norm(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
