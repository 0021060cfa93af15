package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/api/middleware"
	"github.com/rayz-store/tienda-backend/api/validators"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
)

// panelScope returns the caller's tenant followed by the named uuid route
// parameters, in order.
func panelScope(r *http.Request, params ...string) (uuid.UUID, []uuid.UUID, error) {
	tenantID := middleware.TenantUUIDFromContext(r.Context())
	if tenantID == uuid.Nil {
		return uuid.Nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "company context missing")
	}
	ids := make([]uuid.UUID, 0, len(params))
	for _, param := range params {
		id, err := validators.ParseURLUUID(r, param)
		if err != nil {
			return uuid.Nil, nil, err
		}
		ids = append(ids, id)
	}
	return tenantID, ids, nil
}

func serviceUnavailable(name string) error {
	return pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name)
}

func trimmedPtr(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	clean := validators.SanitizeString(*value, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}
