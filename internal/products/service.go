package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

// Service exposes panel product management. Every call is scoped by tenant.
type Service interface {
	Save(ctx context.Context, tenantID uuid.UUID, input SaveInput) (*SaveResult, error)
	Get(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDetail, error)
	Publish(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDetail, error)
	Unpublish(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDetail, error)
	Delete(ctx context.Context, tenantID, productID uuid.UUID) error
}

// SaveInput is the product form. A nil ID creates a product.
type SaveInput struct {
	ID                   *uuid.UUID
	Nombre               string
	Descripcion          *string
	Precio               decimal.Decimal
	Stock                *int
	Tipo                 *string
	CategoriaID          *uuid.UUID
	EstadoOverride       *enums.ProductState
	CrearEnModoVariantes bool
}

type stockResolver interface {
	ResolveProduct(ctx context.Context, product models.Producto) stock.Resolution
}

// imageObjects is the storage side of product deletion.
type imageObjects interface {
	ObjectKeys(ctx context.Context, tenantID, productID uuid.UUID) ([]string, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	resolver stockResolver
	images   imageObjects
	logg     *logger.Logger
}

func NewService(repo *Repository, dbClient *db.Client, resolver stockResolver, images imageObjects, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("stock resolver required")
	}
	if images == nil {
		return nil, fmt.Errorf("image objects required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		resolver: resolver,
		images:   images,
		logg:     logg,
	}, nil
}

func (s *service) Save(ctx context.Context, tenantID uuid.UUID, input SaveInput) (*SaveResult, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empresa_id is required")
	}
	input.Nombre = strings.TrimSpace(input.Nombre)
	if input.Nombre == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre is required")
	}
	if input.Precio.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "precio must be greater than or equal to 0")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be greater than or equal to 0")
	}
	if input.EstadoOverride != nil && !input.EstadoOverride.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid estado %q", *input.EstadoOverride)
	}
	if input.CategoriaID != nil {
		ok, err := s.repo.CategoryBelongsToTenant(ctx, tenantID, *input.CategoriaID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoria_id does not belong to this company")
		}
	}

	if input.ID == nil {
		return s.create(ctx, tenantID, input)
	}
	return s.update(ctx, tenantID, *input.ID, input)
}

func (s *service) create(ctx context.Context, tenantID uuid.UUID, input SaveInput) (*SaveResult, error) {
	if input.Stock == nil && !input.CrearEnModoVariantes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock is required")
	}

	estado := enums.ProductStateDraft
	if input.EstadoOverride != nil {
		estado = *input.EstadoOverride
	}
	legacyStock := 0
	if input.Stock != nil {
		legacyStock = *input.Stock
	}

	product := &models.Producto{
		EmpresaID:          tenantID,
		CategoriaID:        input.CategoriaID,
		Nombre:             input.Nombre,
		Descripcion:        trimmedOrNil(input.Descripcion),
		Precio:             input.Precio,
		Stock:              &legacyStock,
		Tipo:               trimmedOrNil(input.Tipo),
		Estado:             estado,
		MigracionVariantes: enums.VariantMigrationLegacy,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	result := &SaveResult{ID: product.ID, Created: true}
	if input.CrearEnModoVariantes {
		if err := s.repo.EnableVariants(ctx, tenantID, product.ID); err != nil {
			ctx = s.logg.WithField(ctx, "producto_id", product.ID.String())
			s.logg.WarnErr(ctx, "products.create.enable_variants_failed", err)
			result.Warnings = append(result.Warnings, "product created but variant mode could not be enabled; retry from the product page")
		}
	}

	detail, err := s.Get(ctx, tenantID, product.ID)
	if err != nil {
		return nil, err
	}
	result.Detail = *detail
	return result, nil
}

func (s *service) update(ctx context.Context, tenantID, productID uuid.UUID, input SaveInput) (*SaveResult, error) {
	stored, err := s.load(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if !stored.UsaVariantes && input.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock is required")
	}

	updates := map[string]any{
		"nombre":       input.Nombre,
		"descripcion":  trimmedOrNil(input.Descripcion),
		"precio":       input.Precio,
		"tipo":         trimmedOrNil(input.Tipo),
		"categoria_id": input.CategoriaID,
	}
	if input.EstadoOverride != nil {
		updates["estado"] = *input.EstadoOverride
	}

	var warnings []string
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, tenantID, productID, updates); err != nil {
			return err
		}
		if stored.UsaVariantes {
			return nil
		}
		written, err := txRepo.UpdateLegacyStock(ctx, tenantID, productID, *input.Stock)
		if err != nil {
			return err
		}
		if !written {
			warnings = append(warnings, "stock was not saved because the product now uses variants")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	detail, err := s.Get(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return &SaveResult{ID: productID, Detail: *detail, Warnings: warnings}, nil
}

func (s *service) Get(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDetail, error) {
	product, err := s.load(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{
		Producto: NewProductDTO(*product),
		Resumen:  s.resolver.ResolveProduct(ctx, *product),
	}, nil
}

func (s *service) Publish(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDetail, error) {
	return s.setEstado(ctx, tenantID, productID, enums.ProductStatePublished)
}

func (s *service) Unpublish(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDetail, error) {
	return s.setEstado(ctx, tenantID, productID, enums.ProductStateDraft)
}

func (s *service) setEstado(ctx context.Context, tenantID, productID uuid.UUID, estado enums.ProductState) (*ProductDetail, error) {
	if err := s.repo.SetEstado(ctx, tenantID, productID, estado); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product estado")
	}
	return s.Get(ctx, tenantID, productID)
}

// Delete removes rows in one transaction and then the stored images. Object
// cleanup failures are logged; the rows are already gone.
func (s *service) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if _, err := s.load(ctx, tenantID, productID); err != nil {
		return err
	}

	keys, err := s.images.ObjectKeys(ctx, tenantID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product images")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, tenantID, productID)
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	if err := s.images.DeleteObjects(ctx, keys); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"producto_id": productID.String(),
			"objects":     len(keys),
		})
		s.logg.WarnErr(ctx, "products.delete.storage_cleanup_failed", err)
	}
	return nil
}

func (s *service) load(ctx context.Context, tenantID, productID uuid.UUID) (*models.Producto, error) {
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
