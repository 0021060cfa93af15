package visibility

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// PublicProducts scopes a producto query to what anonymous shoppers may see:
// the company's published products. Drafts never leak through public queries.
func PublicProducts(empresaID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("empresa_id = ? AND estado = ?", empresaID, enums.ProductStatePublished)
	}
}

// IsPublic reports whether a loaded product belongs to the public catalogue of
// the company.
func IsPublic(p models.Producto, empresaID uuid.UUID) bool {
	return p.EmpresaID == empresaID && p.Estado == enums.ProductStatePublished
}
