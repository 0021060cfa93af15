package controllers

import (
	"net/http"

	"github.com/rayz-store/tienda-backend/api/middleware"
	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/internal/users"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

// SessionMe returns the caller's profile and company, provisioning the
// profile on first sight.
func SessionMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("session"))
			return
		}
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		session, err := svc.Session(r.Context(), middleware.IdentityFromClaims(claims))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
