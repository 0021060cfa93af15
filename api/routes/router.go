package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rayz-store/tienda-backend/api/controllers"
	"github.com/rayz-store/tienda-backend/api/middleware"
	"github.com/rayz-store/tienda-backend/internal/catalog"
	"github.com/rayz-store/tienda-backend/internal/categories"
	"github.com/rayz-store/tienda-backend/internal/companies"
	"github.com/rayz-store/tienda-backend/internal/images"
	"github.com/rayz-store/tienda-backend/internal/panel"
	"github.com/rayz-store/tienda-backend/internal/products"
	"github.com/rayz-store/tienda-backend/internal/stock"
	"github.com/rayz-store/tienda-backend/internal/users"
	"github.com/rayz-store/tienda-backend/internal/variants"
	pkgAuth "github.com/rayz-store/tienda-backend/pkg/auth"
	"github.com/rayz-store/tienda-backend/pkg/config"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/metrics"
	pkgredis "github.com/rayz-store/tienda-backend/pkg/redis"
)

// Deps carries everything the router hands to controllers. Nil services
// answer 500 from their controllers; a nil Verifier makes every
// authenticated route answer 500.
type Deps struct {
	Verifier     pkgAuth.TokenVerifier
	Pingers      map[string]controllers.Pinger
	Redis        *pkgredis.Client
	Gatherer     prometheus.Gatherer
	PanelMetrics *metrics.PanelMetrics

	Users        users.Service
	Companies    companies.Service
	Listing      panel.ListingService
	Products     products.Service
	Resolver     *stock.Resolver
	Transitioner *stock.Transitioner
	Variants     variants.Service
	Images       images.Service
	Categories   categories.Service
	Catalog      catalog.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		limiter     pkgredis.RateLimiter
		idempotency pkgredis.IdempotencyStore
	)
	if deps.Redis != nil {
		limiter = deps.Redis
		idempotency = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	catalogPolicy := middleware.RateLimitPolicy{
		Name:     "catalog",
		Window:   cfg.Panel.PublicRateLimitWindow,
		Limit:    cfg.Panel.PublicRateLimit,
		URLParam: "empresaId",
	}
	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.With(middleware.RateLimit(catalogPolicy, limiter, logg)).
			Get("/empresas/{empresaId}/productos", controllers.PublicCatalog(deps.Catalog, logg))
	})

	authenticate := middleware.Auth(deps.Verifier, cfg.Auth.CookieName, logg)
	profiles := deps.Users

	r.With(authenticate).Get("/api/session/me", controllers.SessionMe(deps.Users, logg))

	r.Route("/api/empresas", func(r chi.Router) {
		r.Use(authenticate, middleware.Profile(profiles, logg), middleware.Idempotency(idempotency, logg))
		r.Post("/", controllers.CompanyRegister(deps.Companies, logg))
		r.Get("/me", controllers.CompanyMe(deps.Companies, logg))
	})

	r.Route("/api/panel", func(r chi.Router) {
		// The listing proxy authenticates on its own and answers 405 for any
		// method other than GET. It is registered before the guarded group so
		// POST on the same path is taken over by product creation.
		r.HandleFunc("/productos", controllers.PanelListProducts(deps.Verifier, cfg.Auth.CookieName, deps.Listing, deps.PanelMetrics, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				authenticate,
				middleware.Profile(profiles, logg),
				middleware.TenantContext(logg),
				middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleDeveloper),
				middleware.Idempotency(idempotency, logg),
			)

			r.Get("/ping", controllers.PanelPing())
			r.Get("/pagos", controllers.PanelPaymentsStatus())

			r.Post("/productos", controllers.PanelCreateProduct(deps.Products, logg))
			r.Route("/productos/{productoId}", func(r chi.Router) {
				r.Get("/", controllers.PanelGetProduct(deps.Products, logg))
				r.Put("/", controllers.PanelUpdateProduct(deps.Products, logg))
				r.Delete("/", controllers.PanelDeleteProduct(deps.Products, logg))
				r.Post("/publicar", controllers.PanelPublishProduct(deps.Products, logg))
				r.Post("/borrador", controllers.PanelUnpublishProduct(deps.Products, logg))
				r.Get("/stock", controllers.PanelProductStock(resolverOrNil(deps.Resolver), logg))
				r.Post("/variantes/activar", controllers.PanelTransitionToVariants(transitionerOrNil(deps.Transitioner), logg))

				r.Route("/variantes", func(r chi.Router) {
					r.Get("/", controllers.PanelListVariants(deps.Variants, logg))
					r.Post("/", controllers.PanelCreateVariant(deps.Variants, logg))
					r.Put("/{varianteId}", controllers.PanelUpdateVariant(deps.Variants, logg))
					r.Delete("/{varianteId}", controllers.PanelDeleteVariant(deps.Variants, logg))
					r.Post("/{varianteId}/toggle", controllers.PanelToggleVariant(deps.Variants, logg))
				})

				r.Route("/imagenes", func(r chi.Router) {
					r.Get("/", controllers.PanelListImages(deps.Images, logg))
					r.Post("/", controllers.PanelUploadImage(deps.Images, cfg.Storage.MaxUploadBytes(), logg))
					r.Post("/{imagenId}/principal", controllers.PanelSetPrincipalImage(deps.Images, logg))
					r.Delete("/{imagenId}", controllers.PanelDeleteImage(deps.Images, logg))
				})
			})

			r.Route("/categorias", func(r chi.Router) {
				r.Get("/", controllers.PanelListCategories(deps.Categories, logg))
				r.Post("/", controllers.PanelCreateCategory(deps.Categories, logg))
				r.Put("/{categoriaId}", controllers.PanelUpdateCategory(deps.Categories, logg))
				r.Delete("/{categoriaId}", controllers.PanelDeleteCategory(deps.Categories, logg))
			})
		})
	})

	return r
}

type stockResolver interface {
	Resolve(ctx context.Context, tenantID, productID uuid.UUID) (stock.Resolution, error)
}

type transitioner interface {
	Transition(ctx context.Context, tenantID, productID uuid.UUID, input stock.TransitionInput) (*stock.TransitionResult, error)
}

func resolverOrNil(r *stock.Resolver) stockResolver {
	if r == nil {
		return nil
	}
	return r
}

func transitionerOrNil(t *stock.Transitioner) transitioner {
	if t == nil {
		return nil
	}
	return t
}
