package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
)

// VariantDTO is the API shape of a producto_variante row.
type VariantDTO struct {
	ID            uuid.UUID `json:"id"`
	ProductoID    uuid.UUID `json:"producto_id"`
	Talle         string    `json:"talle"`
	Stock         int       `json:"stock"`
	Activo        bool      `json:"activo"`
	CreadoEn      time.Time `json:"creado_en"`
	ActualizadoEn time.Time `json:"actualizado_en"`
}

func NewVariantDTO(v models.ProductoVariante) VariantDTO {
	return VariantDTO{
		ID:            v.ID,
		ProductoID:    v.ProductoID,
		Talle:         v.Talle,
		Stock:         v.Stock,
		Activo:        v.Activo,
		CreadoEn:      v.CreadoEn,
		ActualizadoEn: v.ActualizadoEn,
	}
}

func NewVariantDTOs(rows []models.ProductoVariante) []VariantDTO {
	out := make([]VariantDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewVariantDTO(row))
	}
	return out
}
