package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
)

// Service manages per-size stock rows. Every mutation returns the refreshed
// stock resolution of the product.
type Service interface {
	List(ctx context.Context, tenantID, productID uuid.UUID) ([]stock.VariantDTO, error)
	Create(ctx context.Context, tenantID, productID uuid.UUID, input VariantInput) (*MutationResult, error)
	Update(ctx context.Context, tenantID, productID, variantID uuid.UUID, input VariantInput) (*MutationResult, error)
	ToggleActive(ctx context.Context, tenantID, productID, variantID uuid.UUID) (*MutationResult, error)
	Delete(ctx context.Context, tenantID, productID, variantID uuid.UUID) (*MutationResult, error)
}

// VariantInput is the variant form. Nil Stock means 0, nil Activo means true.
type VariantInput struct {
	Talle  string
	Stock  *int
	Activo *bool
}

// MutationResult carries the touched variant (nil after delete) and the summary.
type MutationResult struct {
	Variante *stock.VariantDTO `json:"variante,omitempty"`
	Resumen  stock.Resolution  `json:"resumen"`
}

type resolver interface {
	Resolve(ctx context.Context, tenantID, productID uuid.UUID) (stock.Resolution, error)
}

type service struct {
	repo     *Repository
	resolver resolver
}

func NewService(repo *Repository, resolver resolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("stock resolver required")
	}
	return &service{repo: repo, resolver: resolver}, nil
}

func (s *service) List(ctx context.Context, tenantID, productID uuid.UUID) ([]stock.VariantDTO, error) {
	if err := s.ensureProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, tenantID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variants")
	}
	return stock.NewVariantDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, tenantID, productID uuid.UUID, input VariantInput) (*MutationResult, error) {
	talle, qty, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}

	activo := true
	if input.Activo != nil {
		activo = *input.Activo
	}
	variant := &models.ProductoVariante{
		EmpresaID:  tenantID,
		ProductoID: productID,
		Talle:      talle,
		Stock:      qty,
		Activo:     activo,
	}
	if err := s.repo.Create(ctx, variant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}
	return s.result(ctx, tenantID, productID, variant)
}

func (s *service) Update(ctx context.Context, tenantID, productID, variantID uuid.UUID, input VariantInput) (*MutationResult, error) {
	talle, qty, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"talle": talle, "stock": qty}
	if input.Activo != nil {
		updates["activo"] = *input.Activo
	}
	if err := s.repo.Update(ctx, tenantID, productID, variantID, updates); err != nil {
		return nil, mapRepoError(err, "update variant")
	}
	return s.reload(ctx, tenantID, productID, variantID)
}

func (s *service) ToggleActive(ctx context.Context, tenantID, productID, variantID uuid.UUID) (*MutationResult, error) {
	current, err := s.repo.Find(ctx, tenantID, productID, variantID)
	if err != nil {
		return nil, mapRepoError(err, "load variant")
	}
	if err := s.repo.Update(ctx, tenantID, productID, variantID, map[string]any{"activo": !current.Activo}); err != nil {
		return nil, mapRepoError(err, "toggle variant")
	}
	return s.reload(ctx, tenantID, productID, variantID)
}

func (s *service) Delete(ctx context.Context, tenantID, productID, variantID uuid.UUID) (*MutationResult, error) {
	if err := s.repo.Delete(ctx, tenantID, productID, variantID); err != nil {
		return nil, mapRepoError(err, "delete variant")
	}
	return s.result(ctx, tenantID, productID, nil)
}

func (s *service) reload(ctx context.Context, tenantID, productID, variantID uuid.UUID) (*MutationResult, error) {
	variant, err := s.repo.Find(ctx, tenantID, productID, variantID)
	if err != nil {
		return nil, mapRepoError(err, "reload variant")
	}
	return s.result(ctx, tenantID, productID, variant)
}

func (s *service) result(ctx context.Context, tenantID, productID uuid.UUID, variant *models.ProductoVariante) (*MutationResult, error) {
	resolution, err := s.resolver.Resolve(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	out := &MutationResult{Resumen: resolution}
	if variant != nil {
		dto := stock.NewVariantDTO(*variant)
		out.Variante = &dto
	}
	return out, nil
}

func (s *service) ensureProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	ok, err := s.repo.ProductExists(ctx, tenantID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func normalizeInput(input VariantInput) (string, int, error) {
	talle := strings.TrimSpace(input.Talle)
	if talle == "" {
		return "", 0, pkgerrors.New(pkgerrors.CodeValidation, "talle is required")
	}
	qty := 0
	if input.Stock != nil {
		qty = *input.Stock
	}
	if qty < 0 {
		return "", 0, pkgerrors.New(pkgerrors.CodeValidation, "stock must be greater than or equal to 0")
	}
	return talle, qty, nil
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
