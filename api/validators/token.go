package validators

import (
	"net/http"
	"strings"
)

// ExtractAccessToken returns the bearer token, falling back to the session
// cookie the storefront sets after sign-in.
func ExtractAccessToken(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		if token := strings.TrimSpace(raw[7:]); token != "" {
			return token
		}
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
