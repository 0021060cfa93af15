package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/pagination"
	"github.com/rayz-store/tienda-backend/pkg/visibility"
)

// Item is a published product as shown on the storefront.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	Nombre       string     `json:"nombre"`
	Descripcion  *string    `json:"descripcion,omitempty"`
	Precio       float64    `json:"precio"`
	Tipo         *string    `json:"tipo,omitempty"`
	CategoriaID  *uuid.UUID `json:"categoria_id,omitempty"`
	UsaVariantes bool       `json:"usa_variantes"`
	Stock        int64      `json:"stock"`
	ImagenURL    string     `json:"imagen_url,omitempty"`
	CreadoEn     time.Time  `json:"creado_en"`
}

type stockIndexer interface {
	SummaryIndex(ctx context.Context, tenantID uuid.UUID, products []models.Producto) (map[uuid.UUID]*models.ProductoStockResumen, bool)
	ResolveIndexed(product models.Producto, index map[uuid.UUID]*models.ProductoStockResumen) stock.Resolution
}

type principalSigner interface {
	PrincipalURLs(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) map[uuid.UUID]string
}

// Service lists a tenant's published catalogue.
type Service interface {
	List(ctx context.Context, empresaID uuid.UUID, params pagination.Params) (*pagination.Page[Item], error)
}

type service struct {
	db     *gorm.DB
	stock  stockIndexer
	images principalSigner
}

func NewService(db *gorm.DB, stockIndex stockIndexer, images principalSigner) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if stockIndex == nil {
		return nil, fmt.Errorf("stock resolver required")
	}
	if images == nil {
		return nil, fmt.Errorf("image signer required")
	}
	return &service{db: db, stock: stockIndex, images: images}, nil
}

func (s *service) List(ctx context.Context, empresaID uuid.UUID, params pagination.Params) (*pagination.Page[Item], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	var empresa models.Empresa
	if err := s.db.WithContext(ctx).Select("id").First(&empresa, "id = ?", empresaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}

	query := s.db.WithContext(ctx).Scopes(visibility.PublicProducts(empresaID))
	if cursor != nil {
		query = query.Where("(creado_en < ?) OR (creado_en = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Producto
	if err := query.
		Order("creado_en DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalogue")
	}

	trimmed := pagination.Trim(rows, params.Limit, func(p models.Producto) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreadoEn, ID: p.ID}
	})

	index, _ := s.stock.SummaryIndex(ctx, empresaID, trimmed.Items)
	ids := make([]uuid.UUID, 0, len(trimmed.Items))
	for _, p := range trimmed.Items {
		ids = append(ids, p.ID)
	}
	urls := s.images.PrincipalURLs(ctx, empresaID, ids)

	items := make([]Item, 0, len(trimmed.Items))
	for _, p := range trimmed.Items {
		resolution := s.stock.ResolveIndexed(p, index)
		items = append(items, Item{
			ID:           p.ID,
			Nombre:       p.Nombre,
			Descripcion:  p.Descripcion,
			Precio:       p.Precio.InexactFloat64(),
			Tipo:         p.Tipo,
			CategoriaID:  p.CategoriaID,
			UsaVariantes: resolution.UsaVariantes,
			Stock:        resolution.StockTotal,
			ImagenURL:    urls[p.ID],
			CreadoEn:     p.CreadoEn,
		})
	}
	return &pagination.Page[Item]{Items: items, NextCursor: trimmed.NextCursor}, nil
}
