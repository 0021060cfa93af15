package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/api/validators"
	"github.com/rayz-store/tienda-backend/internal/panel"
	pkgAuth "github.com/rayz-store/tienda-backend/pkg/auth"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/metrics"
)

const stockModeHeader = "B1-panel-tolerante"

// PanelListProducts is the panel listing proxy. It authenticates on its own,
// re-derives the caller's tenant from the profile table and only then reads
// products and the stock summary.
func PanelListProducts(verifier pkgAuth.TokenVerifier, cookieName string, svc panel.ListingService, panelMetrics *metrics.PanelMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		status := http.StatusOK
		defer func() {
			panelMetrics.ObserveListing(strconv.Itoa(status), time.Since(started))
		}()

		header := w.Header()
		header.Set("Cache-Control", "no-store")
		header.Set("X-Panel-Only", "1")
		header.Set("X-Auth-Mode", panel.AuthMode)

		fail := func(code int, message string) {
			status = code
			responses.WriteMessage(w, code, message)
		}

		if r.Method != http.MethodGet {
			header.Set("Allow", http.MethodGet)
			fail(http.StatusMethodNotAllowed, "Método no permitido")
			return
		}
		if verifier == nil || svc == nil {
			if logg != nil {
				logg.Error(r.Context(), "panel.listing.misconfigured", pkgAuth.ErrNotConfigured)
			}
			fail(http.StatusInternalServerError, "Configuración del servidor incompleta")
			return
		}

		empresaID, err := validators.ParseQueryUUID(r, "empresa_id")
		if err != nil {
			fail(http.StatusBadRequest, "empresa_id requerido o inválido")
			return
		}

		token := validators.ExtractAccessToken(r, cookieName)
		if token == "" {
			fail(http.StatusUnauthorized, "Falta access token")
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			fail(http.StatusUnauthorized, "Token inválido o expirado")
			return
		}

		listing, err := svc.List(r.Context(), claims.Subject, empresaID)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed == nil {
				typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error())
			}
			if logg != nil && typed.Code() == pkgerrors.CodeInternal {
				logg.Error(r.Context(), "panel.listing.failed", err)
			}
			fail(pkgerrors.HTTPStatus(typed), typed.Message())
			return
		}

		header.Set("X-Stock-Mode", stockModeHeader)
		if listing.Meta.ResumenOK {
			header.Set("X-Stock-Resumen-OK", "1")
		} else {
			header.Set("X-Stock-Resumen-OK", "0")
		}
		responses.WriteRaw(w, http.StatusOK, listing)
	}
}
