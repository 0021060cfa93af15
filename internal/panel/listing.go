package panel

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

const (
	SourceMode = "tolerante"
	AuthMode   = "bearer_or_cookie"
)

// Item is one row of the panel listing.
type Item struct {
	ProductoID    uuid.UUID          `json:"producto_id"`
	Nombre        string             `json:"nombre"`
	Descripcion   *string            `json:"descripcion"`
	Precio        float64            `json:"precio"`
	Estado        enums.ProductState `json:"estado"`
	UsaVariantes  bool               `json:"usa_variantes"`
	StockBase     int64              `json:"stock_base"`
	StockEfectivo int64              `json:"stock_efectivo"`
	StockSource   enums.StockSource  `json:"stock_source"`
}

type Meta struct {
	EmpresaID    uuid.UUID `json:"empresa_id"`
	SourceMode   string    `json:"source_mode"`
	ResumenOK    bool      `json:"resumen_ok"`
	ResumenCount int       `json:"resumen_count"`
	AuthMode     string    `json:"auth_mode"`
}

// Listing is the body of the panel listing endpoint.
type Listing struct {
	Items []Item `json:"items"`
	Meta  Meta   `json:"meta"`
}

type profileReader interface {
	ProfileBySubject(ctx context.Context, subject string) (*models.Usuario, error)
}

type summaryIndexer interface {
	SummaryIndex(ctx context.Context, tenantID uuid.UUID, products []models.Producto) (map[uuid.UUID]*models.ProductoStockResumen, bool)
	ResolveIndexed(product models.Producto, index map[uuid.UUID]*models.ProductoStockResumen) stock.Resolution
}

// ListingService authorises the caller against the requested tenant and
// lists its products with tolerant stock resolution.
type ListingService interface {
	List(ctx context.Context, subject string, empresaID uuid.UUID) (*Listing, error)
}

type listingService struct {
	db       *gorm.DB
	profiles profileReader
	stock    summaryIndexer
	logg     *logger.Logger
}

func NewListingService(db *gorm.DB, profiles profileReader, stockIndex summaryIndexer, logg *logger.Logger) (ListingService, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile reader required")
	}
	if stockIndex == nil {
		return nil, fmt.Errorf("stock resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &listingService{db: db, profiles: profiles, stock: stockIndex, logg: logg}, nil
}

func (s *listingService) List(ctx context.Context, subject string, empresaID uuid.UUID) (*Listing, error) {
	profile, err := s.profiles.ProfileBySubject(ctx, subject)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error validando usuario: "+err.Error())
	}
	if profile == nil || profile.EmpresaID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Usuario sin empresa asociada")
	}
	if *profile.EmpresaID != empresaID {
		ctx = s.logg.WithUserID(ctx, profile.ID.String())
		s.logg.Warn(s.logg.WithTenantID(ctx, empresaID.String()), "panel.listing.tenant_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "No autorizado para esta empresa")
	}

	var products []models.Producto
	if err := s.db.WithContext(ctx).
		Where("empresa_id = ?", empresaID).
		Order("nombre ASC").
		Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error())
	}

	index, ok := s.stock.SummaryIndex(ctx, empresaID, products)
	items := make([]Item, 0, len(products))
	for _, p := range products {
		resolution := s.stock.ResolveIndexed(p, index)
		items = append(items, Item{
			ProductoID:    p.ID,
			Nombre:        p.Nombre,
			Descripcion:   p.Descripcion,
			Precio:        p.Precio.InexactFloat64(),
			Estado:        p.Estado,
			UsaVariantes:  resolution.UsaVariantes,
			StockBase:     resolution.StockBase,
			StockEfectivo: resolution.StockTotal,
			StockSource:   resolution.Source,
		})
	}

	return &Listing{
		Items: items,
		Meta: Meta{
			EmpresaID:    empresaID,
			SourceMode:   SourceMode,
			ResumenOK:    ok,
			ResumenCount: len(index),
			AuthMode:     AuthMode,
		},
	}, nil
}
