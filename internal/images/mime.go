package images

import (
	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// detectImageType sniffs the payload and rejects anything outside the allow list.
func detectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	detected := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported image type %s; allowed: jpeg, png, webp or gif", detected.String())
}
