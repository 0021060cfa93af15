package categories

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

// List returns the tenant's categories, unordered ones first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]models.Categoria, error) {
	var rows []models.Categoria
	err := r.db.WithContext(ctx).
		Where("empresa_id = ?", tenantID).
		Order("orden IS NOT NULL").
		Order("orden ASC").
		Order("nombre ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Find(ctx context.Context, tenantID, id uuid.UUID) (*models.Categoria, error) {
	var row models.Categoria
	if err := r.db.WithContext(ctx).Where("empresa_id = ? AND id = ?", tenantID, id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Categoria) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) Update(ctx context.Context, tenantID, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Categoria{}).
		Where("empresa_id = ? AND id = ?", tenantID, id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) CountProducts(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Producto{}).
		Where("empresa_id = ? AND categoria_id = ?", tenantID, id).
		Count(&count).Error
	return count, err
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("empresa_id = ? AND id = ?", tenantID, id).
		Delete(&models.Categoria{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
