package vision

import (
	"context"
	"fmt"

	"github.com/lumina-gallery/lumina/gallery"
	"google.golang.org/genai"
)

const analysisModel = "gemini-2.5-flash"

const analysisPrompt = `Analyze this image and provide a JSON response with the following structure:
{
  "tags": [10-15 relevant single-word or short-phrase tags describing the image],
  "description": "A natural, detailed 1-2 sentence description of the image",
  "colors": ["hex color 1", "hex color 2", "hex color 3"]
}

Requirements:
- Tags: Provide 10-15 relevant tags (objects, scenes, activities, mood, style)
- Description: Write a natural, engaging description (not just listing tags)
- Colors: Identify the 3 most dominant colors in HEX format (e.g., "#FF5733")

Return ONLY the JSON object, no additional text.`

// Gemini implements gallery.VisionProvider over the Gemini multimodal API.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Analyze sends the image and prompt in one call and strictly parses the
// model's JSON answer. Any malformed response is an error; the enrichment
// pipeline owns the fallback.
func (g *Gemini) Analyze(ctx context.Context, data []byte) (*gallery.Analysis, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(analysisPrompt),
			genai.NewPartFromBytes(data, "image/jpeg"),
		}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, analysisModel, contents, &genai.GenerateContentConfig{})
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("vision response has no candidates")
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text = part.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("vision response has no text content")
	}

	return ParseAnalysis(text)
}
