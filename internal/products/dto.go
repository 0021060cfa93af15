package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// ProductDTO is the panel payload of a producto row.
type ProductDTO struct {
	ID                 uuid.UUID              `json:"id"`
	EmpresaID          uuid.UUID              `json:"empresa_id"`
	CategoriaID        *uuid.UUID             `json:"categoria_id"`
	Nombre             string                 `json:"nombre"`
	Descripcion        *string                `json:"descripcion"`
	Precio             float64                `json:"precio"`
	Stock              *int                   `json:"stock"`
	Tipo               *string                `json:"tipo"`
	Estado             enums.ProductState     `json:"estado"`
	UsaVariantes       bool                   `json:"usa_variantes"`
	MigracionVariantes enums.VariantMigration `json:"migracion_variantes"`
	CreadoEn           time.Time              `json:"creado_en"`
	ActualizadoEn      time.Time              `json:"actualizado_en"`
}

// ProductDetail pairs a product with its resolved stock.
type ProductDetail struct {
	Producto ProductDTO       `json:"producto"`
	Resumen  stock.Resolution `json:"resumen"`
}

// SaveResult is returned by Save. Warnings carry tolerated follow-up failures.
type SaveResult struct {
	ID       uuid.UUID     `json:"id"`
	Created  bool          `json:"created"`
	Detail   ProductDetail `json:"detalle"`
	Warnings []string      `json:"warnings,omitempty"`
}

func NewProductDTO(p models.Producto) ProductDTO {
	return ProductDTO{
		ID:                 p.ID,
		EmpresaID:          p.EmpresaID,
		CategoriaID:        p.CategoriaID,
		Nombre:             p.Nombre,
		Descripcion:        p.Descripcion,
		Precio:             p.Precio.InexactFloat64(),
		Stock:              p.Stock,
		Tipo:               p.Tipo,
		Estado:             p.Estado,
		UsaVariantes:       p.UsaVariantes,
		MigracionVariantes: p.MigracionVariantes,
		CreadoEn:           p.CreadoEn,
		ActualizadoEn:      p.ActualizadoEn,
	}
}
