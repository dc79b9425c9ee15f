package gallery

import (
	"bytes"
	"image"
	"net/http"
	"strings"

	// Decoders for the formats the gallery accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// SniffFunc reports the MIME type detected from a byte signature. It is an
// optional capability: a nil SniffFunc skips the magic-bytes check and the
// validator trusts the declared content type, with decode verification still
// mandatory.
type SniffFunc func(data []byte) string

// DetectContentType is the default sniffing capability.
func DetectContentType(data []byte) string {
	return http.DetectContentType(data)
}

// ValidateImage gates an upload. Checks run in a fixed order and the first
// failure wins: non-empty, size cap, declared type, sniffed type (when the
// capability is present), decode verification.
func ValidateImage(data []byte, contentType string, sniff SniffFunc) error {
	if len(data) == 0 {
		return Validation("empty file uploaded")
	}

	if int64(len(data)) > MaxUploadSize {
		return Validation("file too large, maximum size is %dMB", MaxUploadSize/(1024*1024))
	}

	// The declared type is advisory: clients may omit it entirely, but a
	// present non-image type is rejected outright.
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return Validation("invalid file type %q, only image files are allowed", contentType)
	}

	if sniff != nil {
		if detected := sniff(data); detected != "" && !strings.HasPrefix(detected, "image/") {
			return Validation("file content does not match, detected type %q, only images are allowed", detected)
		}
	}

	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return Validation("invalid image file: %v", err)
	}

	return nil
}
