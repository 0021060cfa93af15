package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/metrics"
)

// Resolution is the authoritative stock figure of one product.
// StockBase is always the legacy counter; StockTotal is what callers display.
type Resolution struct {
	ProductoID   uuid.UUID         `json:"producto_id"`
	UsaVariantes bool              `json:"usa_variantes"`
	StockTotal   int64             `json:"stock_total"`
	StockBase    int64             `json:"stock_base"`
	Source       enums.StockSource `json:"source"`
}

// ResolveStock combines a product row with its summary row, if any. Without a
// summary the legacy counter wins and the product is reported as legacy.
func ResolveStock(product models.Producto, summary *models.ProductoStockResumen) Resolution {
	base := int64(product.LegacyStock())
	if summary == nil {
		return Resolution{
			ProductoID:   product.ID,
			UsaVariantes: false,
			StockTotal:   base,
			StockBase:    base,
			Source:       enums.StockSourceLegacy,
		}
	}
	return Resolution{
		ProductoID:   product.ID,
		UsaVariantes: summary.UsaVariantes,
		StockTotal:   summary.StockTotal,
		StockBase:    base,
		Source:       enums.StockSourceView,
	}
}

type summaryReader interface {
	FindProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Producto, error)
	FindSummary(ctx context.Context, tenantID, productID uuid.UUID) (*models.ProductoStockResumen, error)
	ListSummaries(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]models.ProductoStockResumen, error)
}

// Resolver loads products and their summaries with a tolerant read policy.
type Resolver struct {
	repo    summaryReader
	logg    *logger.Logger
	metrics *metrics.PanelMetrics
}

func NewResolver(repo summaryReader, logg *logger.Logger, panelMetrics *metrics.PanelMetrics) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Resolver{repo: repo, logg: logg, metrics: panelMetrics}, nil
}

// Resolve loads the product inside the tenant and resolves its stock. Only
// the product read can fail; summary failures degrade to the legacy counter.
func (r *Resolver) Resolve(ctx context.Context, tenantID, productID uuid.UUID) (Resolution, error) {
	product, err := r.repo.FindProduct(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Resolution{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return r.ResolveProduct(ctx, *product), nil
}

// ResolveProduct resolves an already loaded product.
func (r *Resolver) ResolveProduct(ctx context.Context, product models.Producto) Resolution {
	summary, err := r.repo.FindSummary(ctx, product.EmpresaID, product.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			ctx = r.logg.WithField(ctx, "producto_id", product.ID.String())
			r.logg.WarnErr(ctx, "stock.summary.read_failed", err)
		}
		summary = nil
	}
	resolution := ResolveStock(product, summary)
	r.metrics.IncStockSource(resolution.Source)
	return resolution
}

// SummaryIndex loads the summaries for a batch of products. ok is false when
// the read failed, in which case every product resolves from its legacy counter.
func (r *Resolver) SummaryIndex(ctx context.Context, tenantID uuid.UUID, products []models.Producto) (map[uuid.UUID]*models.ProductoStockResumen, bool) {
	index := make(map[uuid.UUID]*models.ProductoStockResumen, len(products))
	if len(products) == 0 {
		return index, true
	}
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	rows, err := r.repo.ListSummaries(ctx, tenantID, ids)
	if err != nil {
		r.logg.WarnErr(ctx, "stock.summary.batch_read_failed", err)
		return index, false
	}
	for i := range rows {
		index[rows[i].ProductoID] = &rows[i]
	}
	return index, true
}

// ResolveIndexed resolves a product against a preloaded summary index.
func (r *Resolver) ResolveIndexed(product models.Producto, index map[uuid.UUID]*models.ProductoStockResumen) Resolution {
	resolution := ResolveStock(product, index[product.ID])
	r.metrics.IncStockSource(resolution.Source)
	return resolution
}
