package controllers

import (
	"net/http"

	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/api/validators"
	"github.com/rayz-store/tienda-backend/internal/catalog"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/pagination"
)

// PublicCatalog lists a company's published products, newest first.
func PublicCatalog(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("catalog"))
			return
		}
		empresaID, err := validators.ParseURLUUID(r, "empresaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), empresaID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=30")
		responses.WriteSuccess(w, page)
	}
}
