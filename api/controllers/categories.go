package controllers

import (
	"net/http"

	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/api/validators"
	"github.com/rayz-store/tienda-backend/internal/categories"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

type categoryRequest struct {
	Nombre      string  `json:"nombre" validate:"required,max=120"`
	Slug        string  `json:"slug,omitempty" validate:"max=140"`
	Descripcion *string `json:"descripcion,omitempty"`
	Orden       *int    `json:"orden,omitempty"`
}

func (c categoryRequest) toInput() categories.CategoryInput {
	return categories.CategoryInput{
		Nombre:      validators.SanitizeString(c.Nombre, 120),
		Slug:        validators.SanitizeString(c.Slug, 140),
		Descripcion: trimmedPtr(c.Descripcion, 1000),
		Orden:       c.Orden,
	}
}

func PanelListCategories(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("category"))
			return
		}
		tenantID, _, err := panelScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PanelCreateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("category"))
			return
		}
		tenantID, _, err := panelScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Create(r.Context(), tenantID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func PanelUpdateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("category"))
			return
		}
		tenantID, ids, err := panelScope(r, "categoriaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Update(r.Context(), tenantID, ids[0], payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

func PanelDeleteCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("category"))
			return
		}
		tenantID, ids, err := panelScope(r, "categoriaId")
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
