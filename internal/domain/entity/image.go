package entity

import (
	"mime"
	"strings"
)

// MaxImageBytes is the upload ceiling shared by the API and the client form.
const MaxImageBytes int64 = 5 << 20

// AllowedImageTypes is the single allow-list for uploaded images.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// IsAllowedImageType reports whether contentType (parameters ignored) is in AllowedImageTypes.
func IsAllowedImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	mediaType = strings.ToLower(mediaType)
	for _, t := range AllowedImageTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}
