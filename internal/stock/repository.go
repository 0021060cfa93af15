package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// GenericVariantLabels are the labels treated as the single migration variant.
var GenericVariantLabels = []string{"Único", "Unico", "General"}

// MigrationVariantLabel is the label given to the variant created from legacy stock.
const MigrationVariantLabel = "Único"

// Repository reads products, the stock summary view and variants. Every query
// is scoped by empresa_id.
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

func (r *Repository) FindProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Producto, error) {
	var product models.Producto
	err := r.db.WithContext(ctx).
		Where("id = ? AND empresa_id = ?", productID, tenantID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) FindSummary(ctx context.Context, tenantID, productID uuid.UUID) (*models.ProductoStockResumen, error) {
	var summary models.ProductoStockResumen
	err := r.db.WithContext(ctx).
		Where("producto_id = ? AND empresa_id = ?", productID, tenantID).
		Take(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *Repository) ListSummaries(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]models.ProductoStockResumen, error) {
	var rows []models.ProductoStockResumen
	if len(productIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND producto_id IN ?", tenantID, productIDs).
		Find(&rows).Error
	return rows, err
}

// ListVariants returns the product variants ordered by talle then creado_en.
func (r *Repository) ListVariants(ctx context.Context, tenantID, productID uuid.UUID) ([]models.ProductoVariante, error) {
	var rows []models.ProductoVariante
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND producto_id = ?", tenantID, productID).
		Order("talle ASC").
		Order("creado_en ASC").
		Find(&rows).Error
	return rows, err
}

// HasGenericVariant reports whether a migration-style variant already exists.
func (r *Repository) HasGenericVariant(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductoVariante{}).
		Where("empresa_id = ? AND producto_id = ? AND talle IN ?", tenantID, productID, GenericVariantLabels).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductoVariante) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// SetMigrationState writes the transition state and, when usaVariantes is
// true, flips the variant flag in the same statement.
func (r *Repository) SetMigrationState(ctx context.Context, tenantID, productID uuid.UUID, state enums.VariantMigration, usaVariantes bool) error {
	updates := map[string]any{"migracion_variantes": state}
	if usaVariantes {
		updates["usa_variantes"] = true
	}
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
