package middleware

import (
	"context"
	"net/http"

	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/api/validators"
	"github.com/rayz-store/tienda-backend/internal/users"
	pkgAuth "github.com/rayz-store/tienda-backend/pkg/auth"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

type profileEnsurer interface {
	EnsureProfile(ctx context.Context, identity users.Identity) (*models.Usuario, error)
}

// Auth validates the access token (bearer header or session cookie) and seeds
// the request context with its claims.
func Auth(verifier pkgAuth.TokenVerifier, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, pkgAuth.ErrNotConfigured, "auth not configured"))
				return
			}

			token := validators.ExtractAccessToken(r, cookieName)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if logg != nil {
				ctx = logg.WithField(ctx, "auth_uid", claims.Subject)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Profile resolves (and on first sight creates) the caller's profile.
func Profile(profiles profileEnsurer, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if profiles == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
				return
			}
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			profile, err := profiles.EnsureProfile(r.Context(), IdentityFromClaims(claims))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithProfile(r.Context(), profile)
			if logg != nil {
				fields := map[string]any{
					"user_id":    profile.ID.String(),
					"actor_role": string(profile.Rol),
				}
				if profile.EmpresaID != nil {
					fields["empresa_id"] = profile.EmpresaID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromClaims maps token claims to the profile lookup input.
func IdentityFromClaims(claims *pkgAuth.HostedClaims) users.Identity {
	if claims == nil {
		return users.Identity{}
	}
	return users.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.DisplayName(),
	}
}
