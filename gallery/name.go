package gallery

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxDisplayNameLen = 50

var fillerPrefixes = []string{
	"an image of ",
	"a photo of ",
	"a picture of ",
	"this is ",
	"this image shows ",
	"the image shows ",
}

// DisplayNameFromDescription derives an identifier-safe display name from a
// description: lowercase, strip one leading filler phrase, drop punctuation,
// hyphenate whitespace, collapse hyphen runs, truncate at a hyphen boundary,
// and fall back to "image" when nothing survives. Idempotent on its own
// output.
func DisplayNameFromDescription(description string) string {
	name := strings.ToLower(description)

	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Keep word characters, whitespace and hyphens, drop everything else.
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	name = strings.TrimSpace(b.String())

	name = strings.Join(strings.Fields(name), "-")
	name = collapseHyphens(name)

	if len(name) > maxDisplayNameLen {
		// Back the cut off to a rune start so a multibyte character is never
		// split.
		cut := maxDisplayNameLen
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
		// Cut at the last hyphen to avoid a partial word, but only when the
		// boundary is past the midpoint so we keep a useful amount of text.
		if i := strings.LastIndex(name, "-"); i > maxDisplayNameLen/2 {
			name = name[:i]
		}
	}

	name = strings.Trim(name, "-")
	if name == "" {
		return "image"
	}
	return name
}

func collapseHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// displayName resolves the name shown for a record: the generated name when
// enrichment produced one, else the original filename without its extension.
func displayName(rec Record) string {
	if rec.Meta != nil && rec.Meta.GeneratedName != "" {
		return rec.Meta.GeneratedName
	}
	filename := rec.Image.Filename
	if i := strings.LastIndex(filename, "."); i > 0 {
		filename = filename[:i]
	}
	return filename
}
