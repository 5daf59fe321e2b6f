package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/basteen-Dev/pavilion/internal/app"
	"github.com/basteen-Dev/pavilion/internal/auth"
	"github.com/basteen-Dev/pavilion/internal/catalog/products"
	"github.com/basteen-Dev/pavilion/internal/catalog/taxonomy"
	"github.com/basteen-Dev/pavilion/internal/observability"
	"github.com/basteen-Dev/pavilion/internal/platform/cache"
	"github.com/basteen-Dev/pavilion/internal/platform/db"
	"github.com/basteen-Dev/pavilion/internal/sales/customers"
	"github.com/basteen-Dev/pavilion/internal/sales/orders"
	"github.com/basteen-Dev/pavilion/internal/sales/quotations"
	"github.com/basteen-Dev/pavilion/internal/shared"
	"github.com/basteen-Dev/pavilion/jobs"
	"github.com/basteen-Dev/pavilion/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	app.ConfigureEncoding()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL, redisClient)
	authService := auth.NewService(auth.NewRepository(dbpool), tokens, logger)
	authHandler := auth.NewHandler(logger, authService, tokens)

	catalogCache := cache.NewVersioned(redisClient, "catalog", cfg.CatalogCacheTTL)
	productService := products.NewService(products.NewRepository(dbpool), catalogCache, logger)
	productHandler := products.NewHandler(logger, productService)
	taxonomyHandler := taxonomy.NewHandler(logger,
		taxonomy.NewService(taxonomy.NewRepository(dbpool), catalogCache, logger))

	customerService := customers.NewService(customers.NewRepository(dbpool), auditLogger, jobClient, logger).
		WithMetrics(metrics.Domain())
	customerHandler := customers.NewHandler(logger, customerService)

	orderService := orders.NewService(orders.NewRepository(dbpool), customerService, productService,
		auditLogger, metrics.Domain(), logger)
	orderHandler := orders.NewHandler(logger, orderService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)

	quotationService := quotations.NewService(quotations.NewRepository(dbpool), customerService, productService,
		quotations.Options{
			Audit:    auditLogger,
			Notifier: jobClient,
			Orders:   orderService,
			Metrics:  metrics.Domain(),
			Renderer: reportClient,
		}, logger)
	quotationHandler := quotations.NewHandler(logger, quotationService)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          metrics,
		Tokens:           tokens,
		AuthHandler:      authHandler,
		ProductHandler:   productHandler,
		TaxonomyHandler:  taxonomyHandler,
		CustomerHandler:  customerHandler,
		QuotationHandler: quotationHandler,
		OrderHandler:     orderHandler,
		JobHandler:       jobHandler,
		ReportHandler:    reportHandler,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
