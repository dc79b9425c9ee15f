package gallery

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/disintegration/gift"
)

const derivativeJPEGQuality = 85

// MakeDerivative produces the fixed-size gallery preview: flatten any
// transparency onto a white background, scale so the image covers the target
// box, center-crop to exactly DerivativeWidth x DerivativeHeight, and encode
// as JPEG. Deterministic for a given input.
func MakeDerivative(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("derivative generation failed: %w", err)
	}

	flat := flattenOnWhite(src)

	g := gift.New(
		gift.ResizeToFill(DerivativeWidth, DerivativeHeight, gift.LanczosResampling, gift.CenterAnchor),
	)
	dst := image.NewRGBA(g.Bounds(flat.Bounds()))
	g.Draw(dst, flat)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: derivativeJPEGQuality}); err != nil {
		return nil, fmt.Errorf("derivative generation failed: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenOnWhite composites src over an opaque white background so indexed and
// alpha images produce a solid-background JPEG.
func flattenOnWhite(src image.Image) image.Image {
	bounds := src.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, src, bounds.Min, draw.Over)
	return flat
}
