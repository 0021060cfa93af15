package variants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
)

// Repository persists producto_variante rows filtered by (empresa_id, producto_id).
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) scoped(ctx context.Context, tenantID, productID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Where("empresa_id = ? AND producto_id = ?", tenantID, productID)
}

func (r *Repository) ProductExists(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Producto{}).
		Where("id = ? AND empresa_id = ?", productID, tenantID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) List(ctx context.Context, tenantID, productID uuid.UUID) ([]models.ProductoVariante, error) {
	var rows []models.ProductoVariante
	err := r.scoped(ctx, tenantID, productID).
		Order("talle ASC").
		Order("creado_en ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Find(ctx context.Context, tenantID, productID, variantID uuid.UUID) (*models.ProductoVariante, error) {
	var row models.ProductoVariante
	if err := r.scoped(ctx, tenantID, productID).Where("id = ?", variantID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, variant *models.ProductoVariante) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

func (r *Repository) Update(ctx context.Context, tenantID, productID, variantID uuid.UUID, updates map[string]any) error {
	res := r.scoped(ctx, tenantID, productID).
		Model(&models.ProductoVariante{}).
		Where("id = ?", variantID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, productID, variantID uuid.UUID) error {
	res := r.scoped(ctx, tenantID, productID).
		Where("id = ?", variantID).
		Delete(&models.ProductoVariante{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
