package controllers

import (
	"net/http"

	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/api/validators"
	"github.com/rayz-store/tienda-backend/internal/variants"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

type variantRequest struct {
	Talle  string `json:"talle" validate:"required,max=50"`
	Stock  *int   `json:"stock,omitempty" validate:"omitempty,min=0"`
	Activo *bool  `json:"activo,omitempty"`
}

func (v variantRequest) toInput() variants.VariantInput {
	return variants.VariantInput{
		Talle:  validators.SanitizeString(v.Talle, 50),
		Stock:  v.Stock,
		Activo: v.Activo,
	}
}

func PanelListVariants(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("variant"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), tenantID, ids[0])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PanelCreateVariant(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("variant"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload variantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), tenantID, ids[0], payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func PanelUpdateVariant(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("variant"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId", "varianteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload variantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Update(r.Context(), tenantID, ids[0], ids[1], payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PanelToggleVariant flips the variant's activo flag. Inactive variants keep
// counting toward the product total.
func PanelToggleVariant(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("variant"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId", "varianteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ToggleActive(r.Context(), tenantID, ids[0], ids[1])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func PanelDeleteVariant(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("variant"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId", "varianteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Delete(r.Context(), tenantID, ids[0], ids[1])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
