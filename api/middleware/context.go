package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/pkg/auth"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
)

type contextKey string

const (
	ctxClaims   contextKey = "claims"
	ctxProfile  contextKey = "profile"
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxTenantID contextKey = "empresa_id"
)

// ClaimsFromContext returns the verified access token claims.
func ClaimsFromContext(ctx context.Context) *auth.HostedClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*auth.HostedClaims); ok {
		return v
	}
	return nil
}

// ProfileFromContext returns the application profile of the caller.
func ProfileFromContext(ctx context.Context) *models.Usuario {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxProfile).(*models.Usuario); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTenantID).(string); ok {
		return v
	}
	return ""
}

// TenantUUIDFromContext parses the tenant id; uuid.Nil when absent.
func TenantUUIDFromContext(ctx context.Context) uuid.UUID {
	id, err := uuid.Parse(TenantIDFromContext(ctx))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// WithClaims injects verified claims into the context.
func WithClaims(ctx context.Context, claims *auth.HostedClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

// WithProfile injects the caller's profile together with its id, role and tenant.
func WithProfile(ctx context.Context, profile *models.Usuario) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if profile == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxProfile, profile)
	ctx = context.WithValue(ctx, ctxUserID, profile.ID.String())
	ctx = context.WithValue(ctx, ctxRole, string(profile.Rol))
	if profile.EmpresaID != nil {
		ctx = context.WithValue(ctx, ctxTenantID, profile.EmpresaID.String())
	}
	return ctx
}
