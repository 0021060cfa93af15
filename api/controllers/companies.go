package controllers

import (
	"net/http"

	"github.com/rayz-store/tienda-backend/api/middleware"
	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/api/validators"
	"github.com/rayz-store/tienda-backend/internal/companies"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

type companyRequest struct {
	Nombre      string  `json:"nombre" validate:"required,max=160"`
	Descripcion *string `json:"descripcion,omitempty"`
}

// CompanyRegister creates the caller's company and makes them its admin.
func CompanyRegister(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("company"))
			return
		}
		profile := middleware.ProfileFromContext(r.Context())
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile context missing"))
			return
		}

		var payload companyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), profile, companies.RegisterInput{
			Nombre:      validators.SanitizeString(payload.Nombre, 160),
			Descripcion: trimmedPtr(payload.Descripcion, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CompanyMe returns the caller's company.
func CompanyMe(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("company"))
			return
		}
		profile := middleware.ProfileFromContext(r.Context())
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile context missing"))
			return
		}
		if profile.EmpresaID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user has no company"))
			return
		}
		company, err := svc.Get(r.Context(), *profile.EmpresaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, company)
	}
}
