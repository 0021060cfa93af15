package controllers

import (
	"net/http"

	"github.com/rayz-store/tienda-backend/api/responses"
)

type paymentsStatus struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
}

// PanelPaymentsStatus reports the checkout provider integration state.
func PanelPaymentsStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, paymentsStatus{Provider: "mercadopago", Status: "coming_soon"})
	}
}
