package images

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) scoped(ctx context.Context, tenantID, productID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ImagenProducto{}).
		Where("empresa_id = ? AND producto_id = ?", tenantID, productID)
}

func (r *Repository) ProductExists(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Producto{}).
		Where("id = ? AND empresa_id = ?", productID, tenantID).
		Count(&count).Error
	return count > 0, err
}

// List returns the gallery in display order.
func (r *Repository) List(ctx context.Context, tenantID, productID uuid.UUID) ([]models.ImagenProducto, error) {
	var rows []models.ImagenProducto
	err := r.scoped(ctx, tenantID, productID).
		Order("es_principal DESC").
		Order("orden ASC").
		Order("creado_en ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Find(ctx context.Context, tenantID, productID, imageID uuid.UUID) (*models.ImagenProducto, error) {
	var row models.ImagenProducto
	if err := r.scoped(ctx, tenantID, productID).Where("id = ?", imageID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

type slotStats struct {
	MaxOrden int64
	Total    int64
}

// NextSlot returns the next orden and whether the product has no images yet.
func (r *Repository) NextSlot(ctx context.Context, tenantID, productID uuid.UUID) (int, bool, error) {
	var stats slotStats
	err := r.scoped(ctx, tenantID, productID).
		Select("COALESCE(MAX(orden), 0) AS max_orden, COUNT(*) AS total").
		Scan(&stats).Error
	if err != nil {
		return 0, false, err
	}
	return int(stats.MaxOrden) + 1, stats.Total == 0, nil
}

func (r *Repository) Create(ctx context.Context, image *models.ImagenProducto) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *Repository) ClearPrincipal(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.scoped(ctx, tenantID, productID).
		Where("es_principal = ?", true).
		Update("es_principal", false).Error
}

func (r *Repository) MarkPrincipal(ctx context.Context, tenantID, productID, imageID uuid.UUID) error {
	res := r.scoped(ctx, tenantID, productID).
		Where("id = ?", imageID).
		Update("es_principal", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, productID, imageID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("empresa_id = ? AND producto_id = ? AND id = ?", tenantID, productID, imageID).
		Delete(&models.ImagenProducto{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPrincipals returns the principal image of each product that has one.
func (r *Repository) ListPrincipals(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]models.ImagenProducto, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []models.ImagenProducto
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND producto_id IN ? AND es_principal = ?", tenantID, productIDs, true).
		Find(&rows).Error
	return rows, err
}
