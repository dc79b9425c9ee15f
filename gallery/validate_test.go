package gallery

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageAcceptsValidImage(t *testing.T) {
	data := encodePNG(10, 10, color.White)

	assert.NoError(t, ValidateImage(data, "image/png", DetectContentType))
	assert.NoError(t, ValidateImage(data, "", DetectContentType), "missing content type is advisory")
	assert.NoError(t, ValidateImage(data, "image/png", nil), "sniffing capability is optional")
}

func TestValidateImageRejectsEmpty(t *testing.T) {
	err := ValidateImage(nil, "image/png", DetectContentType)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "empty")
}

func TestValidateImageRejectsOversized(t *testing.T) {
	// Size check precedes decoding, so the payload can be junk.
	data := make([]byte, MaxUploadSize+1)

	err := ValidateImage(data, "image/png", DetectContentType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidateImageRejectsDeclaredNonImage(t *testing.T) {
	err := ValidateImage(encodePNG(4, 4, color.White), "text/plain", DetectContentType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only image files are allowed")
}

func TestValidateImageSniffRejectsMasqueradingContent(t *testing.T) {
	data := []byte(strings.Repeat("definitely not an image ", 10))

	err := ValidateImage(data, "image/png", DetectContentType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestValidateImageDecodeFailureWithoutSniffer(t *testing.T) {
	// With no sniffing capability the declared type is trusted, but decode
	// verification still catches non-images.
	data := []byte("definitely not an image")

	err := ValidateImage(data, "image/png", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image file")
}
