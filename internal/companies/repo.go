package companies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
)

// Repository persists tenants.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, empresa *models.Empresa) error {
	return r.db.WithContext(ctx).Create(empresa).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Empresa, error) {
	var empresa models.Empresa
	if err := r.db.WithContext(ctx).First(&empresa, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &empresa, nil
}
