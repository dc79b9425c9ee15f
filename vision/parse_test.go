package vision

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisPlainJSON(t *testing.T) {
	text := `{"tags": ["Sunset", " OCEAN "], "description": "A sunset over the ocean.", "colors": ["#ff8800", "#1a2b3c"]}`

	analysis, err := ParseAnalysis(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"sunset", "ocean"}, analysis.Tags)
	assert.Equal(t, "A sunset over the ocean.", analysis.Description)
	assert.Equal(t, []string{"#FF8800", "#1A2B3C"}, analysis.Colors)
}

func TestParseAnalysisStripsFence(t *testing.T) {
	fenced := "```json\n{\"tags\": [\"dog\"], \"description\": \"A dog.\", \"colors\": [\"#112233\"]}\n```"
	bare := "```\n{\"tags\": [\"dog\"], \"description\": \"A dog.\", \"colors\": []}\n```"

	analysis, err := ParseAnalysis(fenced)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog"}, analysis.Tags)

	analysis, err = ParseAnalysis(bare)
	require.NoError(t, err)
	assert.Equal(t, "A dog.", analysis.Description)
	assert.Empty(t, analysis.Colors)
}

func TestParseAnalysisRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":           "the image shows a dog",
		"no tags":            `{"tags": [], "description": "A dog.", "colors": []}`,
		"blank tags only":    `{"tags": ["  ", ""], "description": "A dog.", "colors": []}`,
		"no description":     `{"tags": ["dog"], "description": "  ", "colors": []}`,
		"missing everything": `{}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnalysis(text)
			assert.Error(t, err)
		})
	}
}

func TestParseAnalysisDeduplicatesTags(t *testing.T) {
	text := `{"tags": ["Beach", "beach", "BEACH", "sand"], "description": "A sandy beach.", "colors": []}`

	analysis, err := ParseAnalysis(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sand"}, analysis.Tags)
}

func TestParseAnalysisFiltersInvalidColors(t *testing.T) {
	text := `{"tags": ["dog"], "description": "A dog.", "colors": ["red", "#12345", "#GGGGGG", "#abcdef"]}`

	analysis, err := ParseAnalysis(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"#ABCDEF"}, analysis.Colors)
}

func TestParseAnalysisCapsTagsAndColors(t *testing.T) {
	tags := ""
	for i := 0; i < 20; i++ {
		tags += fmt.Sprintf("%q,", fmt.Sprintf("tag%d", i))
	}
	text := fmt.Sprintf(`{"tags": [%s "extra"], "description": "Busy.", "colors": ["#000001", "#000002", "#000003", "#000004"]}`, tags)

	analysis, err := ParseAnalysis(text)
	require.NoError(t, err)
	assert.Len(t, analysis.Tags, 15)
	assert.Len(t, analysis.Colors, 3)
}
