package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rayz-store/tienda-backend/api/controllers"
	"github.com/rayz-store/tienda-backend/api/routes"
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
	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/instance"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/metrics"
	"github.com/rayz-store/tienda-backend/pkg/migrate"
	"github.com/rayz-store/tienda-backend/pkg/redis"
	"github.com/rayz-store/tienda-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	store, err := storage.Open(ctx, cfg.Storage, logg)
	requireResource(ctx, logg, "storage", err)
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	// A missing secret is reported per request as a 500, not at boot.
	var verifier pkgAuth.TokenVerifier
	if v, err := pkgAuth.NewVerifier(cfg.Auth); err != nil {
		logg.WarnErr(ctx, "auth verifier not configured", err)
	} else {
		verifier = v
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	panelMetrics := metrics.NewPanelMetrics(registry)

	gormDB := dbClient.DB()

	stockRepo := stock.NewRepository(gormDB)
	resolver, err := stock.NewResolver(stockRepo, logg, panelMetrics)
	requireResource(ctx, logg, "stock resolver", err)
	transitioner, err := stock.NewTransitioner(stockRepo, dbClient, resolver, redisClient, cfg.Panel.TransitionLockTTL, logg, panelMetrics)
	requireResource(ctx, logg, "variant transitioner", err)

	usersService, err := users.NewService(users.NewRepository(gormDB), logg)
	requireResource(ctx, logg, "users service", err)
	companiesService, err := companies.NewService(companies.NewRepository(gormDB), users.NewRepository(gormDB), dbClient, logg)
	requireResource(ctx, logg, "companies service", err)

	imagesService, err := images.NewService(images.NewRepository(gormDB), dbClient, store, images.Options{
		SignedURLExpiry: cfg.Storage.SignedURLExpiry,
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes(),
	}, logg, panelMetrics)
	requireResource(ctx, logg, "images service", err)

	productsService, err := products.NewService(products.NewRepository(gormDB), dbClient, resolver, imagesService, logg)
	requireResource(ctx, logg, "products service", err)
	variantsService, err := variants.NewService(variants.NewRepository(gormDB), resolver)
	requireResource(ctx, logg, "variants service", err)
	categoriesService, err := categories.NewService(categories.NewRepository(gormDB))
	requireResource(ctx, logg, "categories service", err)
	listingService, err := panel.NewListingService(gormDB, usersService, resolver, logg)
	requireResource(ctx, logg, "panel listing service", err)
	catalogService, err := catalog.NewService(gormDB, resolver, imagesService)
	requireResource(ctx, logg, "catalog service", err)

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		Verifier: verifier,
		Pingers: map[string]controllers.Pinger{
			"db":      dbClient,
			"redis":   redisClient,
			"storage": store,
		},
		Redis:        redisClient,
		Gatherer:     registry,
		PanelMetrics: panelMetrics,
		Users:        usersService,
		Companies:    companiesService,
		Listing:      listingService,
		Products:     productsService,
		Resolver:     resolver,
		Transitioner: transitioner,
		Variants:     variantsService,
		Images:       imagesService,
		Categories:   categoriesService,
		Catalog:      catalogService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "api server shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
