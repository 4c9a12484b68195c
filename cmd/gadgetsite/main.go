// Package main is the entry point for the site server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gadgetsite/internal/assets"
	"gadgetsite/internal/auth"
	"gadgetsite/internal/cache"
	"gadgetsite/internal/config"
	"gadgetsite/internal/contact"
	"gadgetsite/internal/database"
	"gadgetsite/internal/handlers"
	"gadgetsite/internal/middleware"
	"gadgetsite/internal/models"
	"gadgetsite/internal/provision"
	"gadgetsite/internal/render"
	"gadgetsite/internal/router"
	"gadgetsite/internal/session"
	"gadgetsite/internal/storage"
	"gadgetsite/internal/storage/local"
	"gadgetsite/internal/store"
	"gadgetsite/web"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (list cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	listCache := cache.NewListCache(valkeyClient, cfg.ListCacheTTL)

	// Object storage: S3-compatible when configured, local disk otherwise.
	var (
		blobs        assets.BlobStore
		mediaHandler http.Handler
		mediaOrigins []string
	)
	if cfg.S3Enabled() {
		client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		blobs = client
		mediaOrigins = origins(cfg.S3PublicURL, cfg.S3Endpoint)
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", client.Bucket())
	} else {
		localStore, err := local.New(cfg.LocalMediaDir, cfg.LocalMediaURL)
		if err != nil {
			slog.Error("failed to initialize local media storage", "error", err)
			os.Exit(1)
		}
		blobs = localStore
		mediaHandler = localStore.Handler()
		slog.Warn("s3 storage not configured, storing uploads on local disk", "dir", cfg.LocalMediaDir)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	// Every successful mutation drops the cached lists of its kind and
	// leaves an audit row.
	notifier := assets.NewNotifier()
	notifier.Subscribe("list-cache", assets.InvalidateLists(listCache), models.Kinds...)
	notifier.Subscribe("cache-log", assets.AuditLog(cacheLogStore), models.Kinds...)

	deps := assets.Deps{
		Blobs:    blobs,
		Cache:    listCache,
		Notifier: notifier,
		Limits: assets.Limits{
			Image: cfg.MaxImageUploadBytes(),
			Video: cfg.MaxVideoUploadBytes(),
		},
		CleanupOnDelete: cfg.MediaCleanupOnDelete,
	}
	photos := assets.NewPhotoService(store.NewPhotoStore(db), deps)
	videos := assets.NewVideoService(store.NewVideoStore(db), deps)
	services := assets.NewServiceService(store.NewServiceStore(db), deps)
	categories := assets.NewCategoryService(store.NewCategoryStore(db), deps)

	provider := auth.NewProvider(sessionStore, userStore, cfg.SiteName)

	defaultAccounts, err := provision.ParseAccounts(cfg.ProvisionAccounts)
	if err != nil {
		slog.Error("failed to parse PROVISION_ACCOUNTS", "error", err)
		os.Exit(1)
	}
	provisioner := provision.New(userStore, defaultAccounts)

	renderer, err := render.New(cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	channels := contact.New(cfg.SiteName, cfg.WhatsAppNumber, cfg.ContactEmail)

	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer authLimiter.Stop()
	contactLimiter := middleware.NewRateLimiter(5, time.Minute)
	defer contactLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Principals:     provider,
		Admin:          handlers.NewAdmin(renderer, photos, videos, services, categories, provider, cacheLogStore),
		Auth:           handlers.NewAuth(renderer, provider),
		Public:         handlers.NewPublic(renderer, photos, videos, services, categories, channels, cfg.MapEmbedURL),
		Provision:      handlers.NewProvision(provisioner),
		Static:         web.Static(),
		Media:          mediaHandler,
		MediaPath:      strings.TrimSuffix(cfg.LocalMediaURL, "/"),
		AuthLimiter:    authLimiter,
		ContactLimiter: contactLimiter,
		ServiceKey:     cfg.ServiceKey,
		SecureCookies:  secureCookies,
		MaxUploadBytes: cfg.MaxVideoUploadBytes() + cfg.MaxImageUploadBytes() + 1<<20,
		MediaOrigins:   mediaOrigins,
		FrameOrigins:   origins(cfg.MapEmbedURL),
	})

	// Create the HTTP server with sensible timeouts. Reads allow for large
	// video uploads on slow links.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// parseLevel maps LOG_LEVEL to a slog level, defaulting to info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// origins returns the scheme://host origins of the given URLs, skipping
// empty or relative ones.
func origins(rawURLs ...string) []string {
	var out []string
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		out = append(out, u.Scheme+"://"+u.Host)
	}
	return out
}
