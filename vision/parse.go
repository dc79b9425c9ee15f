package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lumina-gallery/lumina/gallery"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type rawAnalysis struct {
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Colors      []string `json:"colors"`
}

// ParseAnalysis validates the model's free-form answer into a structured
// analysis. The model sometimes wraps its JSON in a markdown fence; that is
// stripped before parsing. Anything that does not yield at least one tag and a
// description is an error so the caller can fall back.
func ParseAnalysis(text string) (*gallery.Analysis, error) {
	text = stripFence(strings.TrimSpace(text))

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unparsable vision response: %w", err)
	}

	seen := make(map[string]struct{}, len(raw.Tags))
	tags := make([]string, 0, len(raw.Tags))
	for _, t := range raw.Tags {
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
	if len(tags) == 0 {
		return nil, fmt.Errorf("vision response contains no tags")
	}
	if len(tags) > 15 {
		tags = tags[:15]
	}

	description := strings.TrimSpace(raw.Description)
	if description == "" {
		return nil, fmt.Errorf("vision response contains no description")
	}

	colors := make([]string, 0, 3)
	for _, c := range raw.Colors {
		c = strings.ToUpper(strings.TrimSpace(c))
		if hexColorRe.MatchString(c) {
			colors = append(colors, c)
		}
		if len(colors) == 3 {
			break
		}
	}

	return &gallery.Analysis{Tags: tags, Description: description, Colors: colors}, nil
}

// stripFence removes a surrounding markdown code fence, with or without a
// language marker.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
