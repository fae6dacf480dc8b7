package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/media"
	"github.com/Skotchmaster/storefront/internal/metrics"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	bg, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	store := openStore(bg, cfg, logger)

	producer := events.New(cfg.KafkaBrokers)
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka disabled, events are dropped")
	}

	catalog := &service.CatalogService{Repo: store, Events: producer}
	if cfg.ESURL != "" {
		idx, err := search.NewClient(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := idx.Ping(ctx); err != nil {
			logger.Warn("elasticsearch_unreachable", "url", cfg.ESURL, "error", err)
		}
		cancel()
		catalog.Index = idx
	}

	var images media.ImageStore = media.Unconfigured{}
	if cfg.CloudinaryCloudName != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		images = cld
	} else {
		logger.Warn("cloudinary not configured, uploads will fail")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware)
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowCredentials: true,
	}))

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler:    &httpserver.CatalogHTTP{Svc: catalog},
		AuthHandler:       &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: store, Tokens: tokens.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), Events: producer}},
		OrderHandler:      &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: store, Events: producer}},
		NewsletterHandler: &httpserver.NewsletterHTTP{Svc: &service.NewsletterService{Repo: store, Events: producer}},
		UploadHandler:     &httpserver.UploadHTTP{Svc: &service.UploadService{Images: images}},
		Store:             store,
		JWTSecret:         cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := store.Close(ctx); err != nil {
		logger.Error("store close error", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// openStore picks the backend from DB_DRIVER. An unreachable Mongo is
// reported and the process keeps serving while its indexes are retried
// under bg; a bad SQL database is fatal.
func openStore(bg context.Context, cfg config.Config, logger *slog.Logger) repo.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverPostgres, config.DriverSQLite:
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
		store, err := repo.OpenGorm(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		logger.Info("database connected", "driver", cfg.DBDriver)
		return store
	case config.DriverMongo:
		store, err := repo.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("mongo: %v", err)
		}
		if err := store.Ping(ctx); err != nil {
			logger.Error("mongo connection error", "error", err)
		} else {
			logger.Info("mongo connected", "database", cfg.MongoDatabase)
		}
		go func() {
			err := store.EnsureIndexesWithRetry(bg, repo.IndexBackoff(), func(err error, next time.Duration) {
				logger.Warn("mongo index error, retrying", "retry_in", next.String(), "error", err)
			})
			if err != nil {
				logger.Error("mongo indexes not built", "error", err)
				return
			}
			logger.Info("mongo indexes ready")
		}()
		return store
	}
	log.Fatalf("unknown DB_DRIVER %q", cfg.DBDriver)
	return nil
}
