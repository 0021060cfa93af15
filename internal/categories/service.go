package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
)

const slugConstraint = "categoria_empresa_slug_key"

// CategoryDTO is the panel shape of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Slug        string    `json:"slug"`
	Descripcion *string   `json:"descripcion,omitempty"`
	Orden       *int      `json:"orden"`
	CreadoEn    time.Time `json:"creado_en"`
}

// CategoryInput is the create/update form. An empty Slug is derived from Nombre.
type CategoryInput struct {
	Nombre      string
	Slug        string
	Descripcion *string
	Orden       *int
}

type Service interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]CategoryDTO, error)
	Create(ctx context.Context, tenantID uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo}, nil
}

// MakeSlug lower-cases, strips accents and joins words with dashes.
func MakeSlug(value string) string {
	return slug.Make(strings.TrimSpace(value))
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	nombre, slugValue, err := normalize(input)
	if err != nil {
		return nil, err
	}
	row := &models.Categoria{
		EmpresaID:   tenantID,
		Nombre:      nombre,
		Slug:        slugValue,
		Descripcion: trimmedOrNil(input.Descripcion),
		Orden:       input.Orden,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, mapWriteError(err, "create category")
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	nombre, slugValue, err := normalize(input)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"nombre":      nombre,
		"slug":        slugValue,
		"descripcion": trimmedOrNil(input.Descripcion),
		"orden":       input.Orden,
	}
	if err := s.repo.Update(ctx, tenantID, id, updates); err != nil {
		return nil, mapWriteError(err, "update category")
	}
	row, err := s.repo.Find(ctx, tenantID, id)
	if err != nil {
		return nil, mapWriteError(err, "reload category")
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	inUse, err := s.repo.CountProducts(ctx, tenantID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if inUse > 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "category is used by %d products", inUse)
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "category is used by products")
		}
		return mapWriteError(err, "delete category")
	}
	return nil
}

func normalize(input CategoryInput) (string, string, error) {
	nombre := strings.TrimSpace(input.Nombre)
	if nombre == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "nombre is required")
	}
	source := input.Slug
	if strings.TrimSpace(source) == "" {
		source = nombre
	}
	slugValue := MakeSlug(source)
	if slugValue == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be derived from nombre")
	}
	if input.Orden != nil && *input.Orden < 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "orden must be greater than or equal to 0")
	}
	return nombre, slugValue, nil
}

func mapWriteError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	case db.IsUniqueViolation(err, slugConstraint), db.IsUniqueViolation(err, "categoria.slug"):
		return pkgerrors.New(pkgerrors.CodeConflict, "a category with this slug already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}

func toDTO(row models.Categoria) CategoryDTO {
	return CategoryDTO{
		ID:          row.ID,
		Nombre:      row.Nombre,
		Slug:        row.Slug,
		Descripcion: row.Descripcion,
		Orden:       row.Orden,
		CreadoEn:    row.CreadoEn,
	}
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
