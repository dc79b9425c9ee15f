package gallery

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDisplayNameFromDescription(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"An image of a dog playing in nature.", "a-dog-playing-in-nature"},
		{"A photo of red sports car, on a mountain road!", "red-sports-car-on-a-mountain-road"},
		{"This is   spaced    out", "spaced-out"},
		{"Sunset -- over -- the ocean", "sunset-over-the-ocean"},
		{"", "image"},
		{"!!!", "image"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DisplayNameFromDescription(tc.in), "input %q", tc.in)
	}
}

func TestDisplayNameIdempotent(t *testing.T) {
	inputs := []string{
		"A beautiful sunset over the ocean with palm trees swaying.",
		"an image of city lights at night",
		"plain",
	}

	for _, in := range inputs {
		once := DisplayNameFromDescription(in)
		twice := DisplayNameFromDescription(once)
		assert.Equal(t, once, twice, "derivation must be stable on its own output")
	}
}

func TestDisplayNameDeterministic(t *testing.T) {
	in := "A photo of mountains reflected in a crystal clear alpine lake."
	assert.Equal(t, DisplayNameFromDescription(in), DisplayNameFromDescription(in))
}

func TestDisplayNameTruncatesAtHyphenBoundary(t *testing.T) {
	in := "wonderful panoramic view of snowcapped mountain ranges stretching forever"

	got := DisplayNameFromDescription(in)
	assert.LessOrEqual(t, len(got), maxDisplayNameLen)
	assert.False(t, strings.HasSuffix(got, "-"))
	// The cut lands on a word boundary, so the last segment is a whole word.
	assert.Contains(t, in, strings.ReplaceAll(got, "-", " "))
}

func TestDisplayNameTruncatesOnRuneBoundary(t *testing.T) {
	// A single 60-byte word of 3-byte runes has no hyphen to cut at; the
	// length cap must still not split a rune.
	in := strings.Repeat("画", 20)

	got := DisplayNameFromDescription(in)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxDisplayNameLen)
	assert.Equal(t, strings.Repeat("画", 16), got)
}
