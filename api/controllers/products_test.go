package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/api/middleware"
	productsvc "github.com/rayz-store/tienda-backend/internal/products"
	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

type stubProductService struct {
	saved     *productsvc.SaveInput
	deleted   uuid.UUID
	published uuid.UUID
	err       error
}

func (s *stubProductService) Save(_ context.Context, _ uuid.UUID, input productsvc.SaveInput) (*productsvc.SaveResult, error) {
	s.saved = &input
	if s.err != nil {
		return nil, s.err
	}
	return &productsvc.SaveResult{ID: uuid.New(), Created: input.ID == nil}, nil
}

func (s *stubProductService) Get(_ context.Context, _, productID uuid.UUID) (*productsvc.ProductDetail, error) {
	return &productsvc.ProductDetail{Producto: productsvc.ProductDTO{ID: productID}}, s.err
}

func (s *stubProductService) Publish(_ context.Context, _, productID uuid.UUID) (*productsvc.ProductDetail, error) {
	s.published = productID
	return &productsvc.ProductDetail{Producto: productsvc.ProductDTO{ID: productID, Estado: enums.ProductStatePublished}}, s.err
}

func (s *stubProductService) Unpublish(_ context.Context, _, productID uuid.UUID) (*productsvc.ProductDetail, error) {
	return &productsvc.ProductDetail{Producto: productsvc.ProductDTO{ID: productID, Estado: enums.ProductStateDraft}}, s.err
}

func (s *stubProductService) Delete(_ context.Context, _, productID uuid.UUID) error {
	s.deleted = productID
	return s.err
}

type stubTransitioner struct {
	input stock.TransitionInput
	err   error
}

func (s *stubTransitioner) Transition(_ context.Context, _, productID uuid.UUID, input stock.TransitionInput) (*stock.TransitionResult, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &stock.TransitionResult{
		Resolution:     stock.Resolution{ProductoID: productID, UsaVariantes: true, StockTotal: 12, Source: enums.StockSourceView},
		Estado:         enums.VariantMigrationVariantMode,
		VarianteCreada: true,
	}, nil
}

func panelContext(tenant uuid.UUID, params map[string]string) context.Context {
	ctx := context.Background()
	if tenant != uuid.Nil {
		ctx = middleware.WithProfile(ctx, &models.Usuario{ID: uuid.New(), Rol: enums.UserRoleAdmin, EmpresaID: &tenant})
	}
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
}

func servePanel(handler http.Handler, method string, ctx context.Context, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/api/panel", &buf).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPanelCreateProduct(t *testing.T) {
	logg := logger.Nop()
	tenant := uuid.New()

	t.Run("missing company", func(t *testing.T) {
		rec := servePanel(PanelCreateProduct(&stubProductService{}, logg), http.MethodPost, panelContext(uuid.Nil, nil), map[string]any{"nombre": "Buzo"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", rec.Code)
		}
	})

	t.Run("invalid estado", func(t *testing.T) {
		rec := servePanel(PanelCreateProduct(&stubProductService{}, logg), http.MethodPost, panelContext(tenant, nil), map[string]any{"nombre": "Buzo", "estado": "archived"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := servePanel(PanelCreateProduct(&stubProductService{}, logg), http.MethodPost, panelContext(tenant, nil), map[string]any{"nombre": "Buzo", "sku": "x"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		stub := &stubProductService{}
		categoria := uuid.New()
		rec := servePanel(PanelCreateProduct(stub, logg), http.MethodPost, panelContext(tenant, nil), map[string]any{
			"nombre":                  "  Buzo Oversize ",
			"precio":                  "15999.50",
			"stock":                   4,
			"categoria_id":            categoria.String(),
			"estado":                  "published",
			"crear_en_modo_variantes": true,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.saved == nil || stub.saved.ID != nil {
			t.Fatalf("expected create input, got %+v", stub.saved)
		}
		if stub.saved.Nombre != "Buzo Oversize" || stub.saved.Precio.String() != "15999.5" {
			t.Fatalf("unexpected input %+v", stub.saved)
		}
		if stub.saved.CategoriaID == nil || *stub.saved.CategoriaID != categoria {
			t.Fatalf("expected categoria id to be parsed")
		}
		if stub.saved.EstadoOverride == nil || *stub.saved.EstadoOverride != enums.ProductStatePublished || !stub.saved.CrearEnModoVariantes {
			t.Fatalf("unexpected flags %+v", stub.saved)
		}
	})
}

func TestPanelUpdateProductUsesRouteID(t *testing.T) {
	stub := &stubProductService{}
	productID := uuid.New()
	ctx := panelContext(uuid.New(), map[string]string{"productoId": productID.String()})

	rec := servePanel(PanelUpdateProduct(stub, logger.Nop()), http.MethodPut, ctx, map[string]any{"nombre": "Remera"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.saved.ID == nil || *stub.saved.ID != productID {
		t.Fatalf("expected route id on save input")
	}
}

func TestPanelProductActions(t *testing.T) {
	logg := logger.Nop()
	tenant := uuid.New()
	productID := uuid.New()
	ctx := panelContext(tenant, map[string]string{"productoId": productID.String()})

	stub := &stubProductService{}
	if rec := servePanel(PanelPublishProduct(stub, logg), http.MethodPost, ctx, nil); rec.Code != http.StatusOK {
		t.Fatalf("publish expected 200 got %d", rec.Code)
	}
	if stub.published != productID {
		t.Fatalf("expected publish on %s", productID)
	}

	if rec := servePanel(PanelDeleteProduct(stub, logg), http.MethodDelete, ctx, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete expected 204 got %d", rec.Code)
	}
	if stub.deleted != productID {
		t.Fatalf("expected delete on %s", productID)
	}

	bad := panelContext(tenant, map[string]string{"productoId": "not-a-uuid"})
	if rec := servePanel(PanelGetProduct(stub, logg), http.MethodGet, bad, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id got %d", rec.Code)
	}

	missing := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	if rec := servePanel(PanelUnpublishProduct(missing, logg), http.MethodPost, ctx, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestPanelTransitionToVariants(t *testing.T) {
	productID := uuid.New()
	ctx := panelContext(uuid.New(), map[string]string{"productoId": productID.String()})

	stub := &stubTransitioner{}
	rec := servePanel(PanelTransitionToVariants(stub, logger.Nop()), http.MethodPost, ctx, map[string]any{"confirmar": true, "migrar_stock": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !stub.input.Confirm || !stub.input.MigrateStock {
		t.Fatalf("expected flags to reach the transition, got %+v", stub.input)
	}

	var body struct {
		Data stock.TransitionResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Resolution.StockTotal != 12 || body.Data.Estado != enums.VariantMigrationVariantMode {
		t.Fatalf("unexpected body %+v", body.Data)
	}

	busy := &stubTransitioner{err: pkgerrors.New(pkgerrors.CodeConflict, "a variant transition for this product is already running")}
	rec = servePanel(PanelTransitionToVariants(busy, logger.Nop()), http.MethodPost, ctx, map[string]any{"confirmar": true})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
