package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/api/validators"
	productsvc "github.com/rayz-store/tienda-backend/internal/products"
	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

type productRequest struct {
	Nombre               string          `json:"nombre" validate:"required,max=200"`
	Descripcion          *string         `json:"descripcion,omitempty"`
	Precio               decimal.Decimal `json:"precio"`
	Stock                *int            `json:"stock,omitempty" validate:"omitempty,min=0"`
	Tipo                 *string         `json:"tipo,omitempty"`
	CategoriaID          *string         `json:"categoria_id,omitempty"`
	Estado               *string         `json:"estado,omitempty"`
	CrearEnModoVariantes bool            `json:"crear_en_modo_variantes,omitempty"`
}

func (p productRequest) toSaveInput(id *uuid.UUID) (productsvc.SaveInput, error) {
	input := productsvc.SaveInput{
		ID:                   id,
		Nombre:               validators.SanitizeString(p.Nombre, 200),
		Descripcion:          trimmedPtr(p.Descripcion, 4000),
		Precio:               p.Precio,
		Stock:                p.Stock,
		Tipo:                 trimmedPtr(p.Tipo, 100),
		CrearEnModoVariantes: p.CrearEnModoVariantes,
	}
	if raw := trimmedPtr(p.CategoriaID, 64); raw != nil {
		categoriaID, err := uuid.Parse(*raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "categoria_id must be a uuid")
		}
		input.CategoriaID = &categoriaID
	}
	if raw := trimmedPtr(p.Estado, 32); raw != nil {
		estado, err := enums.ParseProductState(*raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid estado")
		}
		input.EstadoOverride = &estado
	}
	return input, nil
}

type transitionRequest struct {
	Confirm      bool `json:"confirmar"`
	MigrateStock bool `json:"migrar_stock"`
}

type productTransitioner interface {
	Transition(ctx context.Context, tenantID, productID uuid.UUID, input stock.TransitionInput) (*stock.TransitionResult, error)
}

type productStockResolver interface {
	Resolve(ctx context.Context, tenantID, productID uuid.UUID) (stock.Resolution, error)
}

// PanelCreateProduct creates a product for the caller's company.
func PanelCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		tenantID, _, err := panelScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toSaveInput(nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Save(r.Context(), tenantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PanelUpdateProduct saves the product form over an existing product.
func PanelUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toSaveInput(&ids[0])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Save(r.Context(), tenantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func PanelGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productAction(svc, logg, productsvc.Service.Get)
}

func PanelPublishProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productAction(svc, logg, productsvc.Service.Publish)
}

func PanelUnpublishProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return productAction(svc, logg, productsvc.Service.Unpublish)
}

func productAction(svc productsvc.Service, logg *logger.Logger, action func(productsvc.Service, context.Context, uuid.UUID, uuid.UUID) (*productsvc.ProductDetail, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := action(svc, r.Context(), tenantID, ids[0])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// PanelDeleteProduct removes the product, its variants and its images.
func PanelDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), tenantID, ids[0]); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// PanelProductStock returns the resolved stock mode and total.
func PanelProductStock(resolver productStockResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("stock"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resolution, err := resolver.Resolve(r.Context(), tenantID, ids[0])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolution)
	}
}

// PanelTransitionToVariants moves a legacy product to variant stock.
func PanelTransitionToVariants(transitioner productTransitioner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if transitioner == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("transition"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := transitioner.Transition(r.Context(), tenantID, ids[0], stock.TransitionInput{
			Confirm:      payload.Confirm,
			MigrateStock: payload.MigrateStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
