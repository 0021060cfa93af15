package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/internal/users"
	pkgAuth "github.com/rayz-store/tienda-backend/pkg/auth"
	"github.com/rayz-store/tienda-backend/pkg/config"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:  "secret",
	Audience:   "authenticated",
	CookieName: "sb-access-token",
	Leeway:     time.Second,
}

type stubProfiles struct {
	profile *models.Usuario
	err     error
	seen    users.Identity
}

func (s *stubProfiles) EnsureProfile(_ context.Context, identity users.Identity) (*models.Usuario, error) {
	s.seen = identity
	return s.profile, s.err
}

func mintTestToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testAuthConfig, time.Now(), time.Hour, pkgAuth.AccessTokenPayload{
		Subject: subject,
		Email:   subject + "@rayz.test",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func newVerifier(t *testing.T) *pkgAuth.Verifier {
	t.Helper()
	verifier, err := pkgAuth.NewVerifier(testAuthConfig)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	return verifier
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(newVerifier(t), testAuthConfig.CookieName, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(newVerifier(t), testAuthConfig.CookieName, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAcceptsCookieToken(t *testing.T) {
	var subject string
	handler := Auth(newVerifier(t), testAuthConfig.CookieName, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = ClaimsFromContext(r.Context()).Subject
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testAuthConfig.CookieName, Value: mintTestToken(t, "auth-cookie")})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if subject != "auth-cookie" {
		t.Fatalf("expected subject in context, got %q", subject)
	}
}

func TestProfileSeedsTenantAndRole(t *testing.T) {
	tenant := uuid.New()
	profiles := &stubProfiles{profile: &models.Usuario{ID: uuid.New(), Rol: enums.UserRoleAdmin, EmpresaID: &tenant}}

	var gotTenant, gotRole string
	chain := Auth(newVerifier(t), testAuthConfig.CookieName, nil)(
		Profile(profiles, nil)(
			TenantContext(nil)(
				RequireRoles(nil, enums.UserRoleAdmin, enums.UserRoleDeveloper)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotTenant = TenantIDFromContext(r.Context())
					gotRole = RoleFromContext(r.Context())
					w.WriteHeader(http.StatusOK)
				})))))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "auth-admin"))
	resp := httptest.NewRecorder()
	chain.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotTenant != tenant.String() || gotRole != "admin" {
		t.Fatalf("unexpected context tenant=%q role=%q", gotTenant, gotRole)
	}
	if profiles.seen.Subject != "auth-admin" || profiles.seen.Email != "auth-admin@rayz.test" {
		t.Fatalf("unexpected identity %+v", profiles.seen)
	}
}

func TestPanelGuards(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	cases := []struct {
		name    string
		profile *models.Usuario
		want    int
	}{
		{"no tenant", &models.Usuario{ID: uuid.New(), Rol: enums.UserRoleAdmin}, http.StatusForbidden},
		{"plain user", &models.Usuario{ID: uuid.New(), Rol: enums.UserRoleUser, EmpresaID: ptrUUID(uuid.New())}, http.StatusForbidden},
		{"developer", &models.Usuario{ID: uuid.New(), Rol: enums.UserRoleDeveloper, EmpresaID: ptrUUID(uuid.New())}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := TenantContext(nil)(RequireRoles(nil, enums.UserRoleAdmin, enums.UserRoleDeveloper)(ok))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithProfile(req.Context(), tc.profile))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestProfileErrorIsReturned(t *testing.T) {
	profiles := &stubProfiles{err: pkgerrors.New(pkgerrors.CodeConflict, "email already linked")}
	handler := Auth(newVerifier(t), testAuthConfig.CookieName, nil)(Profile(profiles, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "auth-x"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
