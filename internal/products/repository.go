package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// Repository persists producto rows. Writes are always filtered by
// (id, empresa_id).
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Producto, error) {
	var product models.Producto
	err := r.db.WithContext(ctx).
		Where("id = ? AND empresa_id = ?", productID, tenantID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Producto) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update applies scalar updates. It reports gorm.ErrRecordNotFound when no
// row matched the tenant filter.
func (r *Repository) Update(ctx context.Context, tenantID, productID uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Producto{}).
		Where("id = ? AND empresa_id = ?", productID, tenantID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLegacyStock writes the legacy counter only while the row is not
// variant-tracked. written is false when the guard rejected the write.
func (r *Repository) UpdateLegacyStock(ctx context.Context, tenantID, productID uuid.UUID, stock int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Producto{}).
		Where("id = ? AND empresa_id = ? AND usa_variantes = ?", productID, tenantID, false).
		Update("stock", stock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) SetEstado(ctx context.Context, tenantID, productID uuid.UUID, estado enums.ProductState) error {
	return r.Update(ctx, tenantID, productID, map[string]any{"estado": estado})
}

// EnableVariants flips the product to variant mode in one statement.
func (r *Repository) EnableVariants(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.Update(ctx, tenantID, productID, map[string]any{
		"usa_variantes":       true,
		"migracion_variantes": enums.VariantMigrationVariantMode,
	})
}

// CategoryBelongsToTenant reports whether the category exists inside the tenant.
func (r *Repository) CategoryBelongsToTenant(ctx context.Context, tenantID, categoryID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Categoria{}).
		Where("id = ? AND empresa_id = ?", categoryID, tenantID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the product and its dependent rows.
func (r *Repository) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("empresa_id = ? AND producto_id = ?", tenantID, productID).
		Delete(&models.ImagenProducto{}).Error; err != nil {
		return err
	}
	if err := db.Where("empresa_id = ? AND producto_id = ?", tenantID, productID).
		Delete(&models.ProductoVariante{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ? AND empresa_id = ?", productID, tenantID).Delete(&models.Producto{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
