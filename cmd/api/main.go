package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/go-units"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"metrodoc/internal/auth"
	"metrodoc/internal/config"
	"metrodoc/internal/database"
	"metrodoc/internal/database/migration"
	"metrodoc/internal/extract"
	handlers "metrodoc/internal/http/handler"
	"metrodoc/internal/http/middleware"
	"metrodoc/internal/logging"
	"metrodoc/internal/otel"
	"metrodoc/internal/repository/postgres"
	"metrodoc/internal/service"
	"metrodoc/internal/storage"
)

// @title MetroDoc API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	log := logging.New(cfg.LogLevel, loc)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(cfg.Auth.SigningSecret),
		Issuer:        cfg.Auth.Issuer,
		TokenTTL:      cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}

	extractor := extract.Chain{extract.Plain{}}
	if cfg.TikaURL != "" {
		extractor = extract.Chain{extract.NewTika(cfg.TikaURL, nil), extract.Plain{}}
	}

	notifSvc := service.NewNotificationService(postgres.NewNotificationPostgres(db), cfg.NotificationWindow, log)
	docSvc := service.NewDocumentService(service.DocumentServiceConfig{
		Store:         objStore,
		Documents:     postgres.NewDocumentPostgres(db),
		Summaries:     postgres.NewSummaryPostgres(db),
		Notifier:      notifSvc,
		Extractor:     extractor,
		MaxUploadSize: cfg.Upload.MaxSize,
		Logger:        log.Named("documents"),
	})
	authSvc := service.NewAuthService(postgres.NewUserPostgres(db), issuer)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Multipart framing and form fields on top of the file itself.
		BodyLimit: int(cfg.Upload.MaxSize + units.MiB),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(prom.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:            db,
		Documents:     docSvc,
		Notifications: notifSvc,
		Auth:          authSvc,
		Tokens:        issuer,
		Metrics:       reg,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", ":"+cfg.Port), zap.String("host", cfg.AppHost))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
