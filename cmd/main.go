package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nikman800/GambaGame/brackets"
	"github.com/Nikman800/GambaGame/config"
	"github.com/Nikman800/GambaGame/db"
	"github.com/Nikman800/GambaGame/handlers"
	"github.com/Nikman800/GambaGame/logger"
	"github.com/Nikman800/GambaGame/middleware"
	"github.com/Nikman800/GambaGame/repositories"
	api "github.com/Nikman800/GambaGame/routes"
	"github.com/Nikman800/GambaGame/services"
	"github.com/Nikman800/GambaGame/storage"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title GambaGame API
// @version 1.0
// @description Single elimination brackets with point wagering and live updates.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: logger.DefaultServiceName,
		Environment: cfg.Environment,
	}, os.Stdout)
	slog.SetDefault(log)
	log.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Bool("bet_payout", cfg.BetPayoutEnabled))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("application exited")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var (
		store  repositories.BracketRepository
		dbConn *sql.DB
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := conn.Close(); err != nil {
				log.Error("failed to close database connection", slog.Any("error", err))
			}
		}()
		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
		dbConn = conn
		store = repositories.NewPostgresBracketRepository(conn)
		log.Info("database connection established")
	} else {
		store = repositories.NewMemoryBracketRepository()
		log.Warn("DATABASE_URL not set, brackets are kept in memory")
	}
	if cfg.BracketCacheSize > 0 {
		store = repositories.NewCachedBracketRepository(store, cfg.BracketCacheSize, cfg.BracketCacheTTL)
	}

	var archiver services.ResultArchiver
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewResultsArchive(uploader)
		log.Info("final results archive enabled", slog.String("bucket", cfg.R2.BucketName))
	}

	hub := brackets.NewHub(log)

	bracketService := services.NewBracketService(store, hub, archiver, services.BracketServiceOptions{
		PayoutEnabled: cfg.BetPayoutEnabled,
		Logger:        log,
	})

	var checker handlers.HealthChecker
	if dbConn != nil {
		checker = dbConn
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		middleware.NewJWTVerifier(cfg.JWTSecretKey),
		cfg.CORSAllowedOrigins,
		handlers.NewBracketHandler(bracketService),
		handlers.NewWebSocketHandler(hub, bracketService, cfg.CORSAllowedOrigins),
		handlers.NewHealthHandler(checker),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}
