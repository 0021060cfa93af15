package controllers

import (
	"net/http"

	"github.com/rayz-store/tienda-backend/api/middleware"
	"github.com/rayz-store/tienda-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// PanelPing echoes the caller's panel context.
func PanelPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "panel", "status": "ok"}
		if tenant := middleware.TenantIDFromContext(r.Context()); tenant != "" {
			payload["empresa_id"] = tenant
		}
		if role := middleware.RoleFromContext(r.Context()); role != "" {
			payload["rol"] = role
		}
		responses.WriteSuccess(w, payload)
	}
}
