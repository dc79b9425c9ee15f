package gallery

import (
	"bytes"
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/gift"
)

// ColorDetail is one dominant color with its perceptual weight, computed from
// actual pixel coverage rather than the vision provider's categorical answer.
type ColorDetail struct {
	Hex        string  `json:"hex"`
	RGB        string  `json:"rgb"`
	Percentage float64 `json:"percentage"`
}

// paletteSample is the downscale target for pixel sampling. Every pixel of the
// downscaled image is counted, so this bounds the work per image.
const paletteSample = 64

// Palette extracts the n dominant colors of an image by quantizing a
// downscaled copy into 3-bits-per-channel buckets and averaging the pixels of
// the most populated buckets. Deterministic for a given input; ties between
// equally populated buckets resolve to the lower bucket index.
func Palette(data []byte, n int) ([]ColorDetail, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("palette extraction failed: %w", err)
	}

	g := gift.New(gift.Resize(paletteSample, paletteSample, gift.LinearResampling))
	small := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(small, src)

	type bucket struct {
		count   int
		r, g, b uint64
	}
	buckets := make(map[int]*bucket)

	bounds := small.Bounds()
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gg, b, _ := small.At(x, y).RGBA()
			r8, g8, b8 := r>>8, gg>>8, b>>8
			key := int(r8>>5)<<6 | int(g8>>5)<<3 | int(b8>>5)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(r8)
			bk.g += uint64(g8)
			bk.b += uint64(b8)
			total++
		}
	}

	if total == 0 {
		return nil, fmt.Errorf("palette extraction failed: image has no pixels")
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if buckets[keys[i]].count != buckets[keys[j]].count {
			return buckets[keys[i]].count > buckets[keys[j]].count
		}
		return keys[i] < keys[j]
	})

	if n > len(keys) {
		n = len(keys)
	}

	colors := make([]ColorDetail, 0, n)
	for _, k := range keys[:n] {
		bk := buckets[k]
		r := uint8(bk.r / uint64(bk.count))
		gg := uint8(bk.g / uint64(bk.count))
		b := uint8(bk.b / uint64(bk.count))
		colors = append(colors, ColorDetail{
			Hex:        RGBToHex(r, gg, b),
			RGB:        fmt.Sprintf("rgb(%d, %d, %d)", r, gg, b),
			Percentage: roundPct(float64(bk.count) / float64(total) * 100),
		})
	}
	return colors, nil
}

// RGBToHex formats a color as an uppercase hex string, e.g. "#FF5733".
func RGBToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func roundPct(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// paletteHexes projects a palette onto its hex values.
func paletteHexes(details []ColorDetail) []string {
	hexes := make([]string, len(details))
	for i, d := range details {
		hexes[i] = d.Hex
	}
	return hexes
}
