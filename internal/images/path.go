package images

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

const fallbackExtension = "bin"

var extensionsByMime = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ObjectPath is the canonical bucket key of a product image.
func ObjectPath(tenantID, productID, imageID uuid.UUID, ext string) string {
	return fmt.Sprintf("tenant/%s/product/%s/%s.%s", tenantID, productID, imageID, ext)
}

// Extension picks the file extension from the file name, then the mime type.
func Extension(fileName, mimeType string) string {
	if ext := sanitizeExtension(path.Ext(strings.TrimSpace(fileName))); ext != "" {
		return ext
	}
	if ext, ok := extensionsByMime[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return fallbackExtension
}

func sanitizeExtension(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
