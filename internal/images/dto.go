package images

import (
	"time"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
)

// ImageDTO is a gallery entry with a short-lived signed URL.
type ImageDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductoID  uuid.UUID `json:"producto_id"`
	Path        string    `json:"path"`
	SignedURL   string    `json:"signed_url"`
	Orden       int       `json:"orden"`
	EsPrincipal bool      `json:"es_principal"`
	Descripcion *string   `json:"descripcion,omitempty"`
	CreadoEn    time.Time `json:"creado_en"`
}

func newImageDTO(row models.ImagenProducto, signedURL string) ImageDTO {
	return ImageDTO{
		ID:          row.ID,
		ProductoID:  row.ProductoID,
		Path:        row.ObjectKey(),
		SignedURL:   signedURL,
		Orden:       row.Orden,
		EsPrincipal: row.EsPrincipal,
		Descripcion: row.Descripcion,
		CreadoEn:    row.CreadoEn,
	}
}
