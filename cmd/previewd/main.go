// Command previewd runs the artifact preview server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/arcadia-data/preview/pkg/api"
	"github.com/arcadia-data/preview/pkg/auth"
	"github.com/arcadia-data/preview/pkg/classify"
	"github.com/arcadia-data/preview/pkg/config"
	"github.com/arcadia-data/preview/pkg/fetch"
	"github.com/arcadia-data/preview/pkg/media"
	"github.com/arcadia-data/preview/pkg/observability"
	"github.com/arcadia-data/preview/pkg/preview"
	"github.com/arcadia-data/preview/pkg/source"
)

func main() {
	if err := run(); err != nil {
		slog.Error("previewd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tenant profile: source allow-lists, limit overrides, classifier
	// overrides. Absent profile settings leave server defaults in place.
	var policy *config.TenantProfile
	if cfg.ProfilesDir != "" && cfg.Tenant != "" {
		profile, err := config.LoadProfile(cfg.ProfilesDir, cfg.Tenant)
		if err != nil {
			return err
		}
		policy = profile
		if profile.Limits.RPM > 0 {
			cfg.LimitRPM = profile.Limits.RPM
		}
		if profile.Limits.Burst > 0 {
			cfg.LimitBurst = profile.Limits.Burst
		}
		if ttl := profile.Limits.MediaTTL(); ttl > 0 {
			cfg.MediaTTL = ttl
		}
		if p := profile.Overrides.ClassifierPath; p != "" {
			doc, err := os.ReadFile(filepath.Join(cfg.ProfilesDir, p))
			if err != nil {
				return fmt.Errorf("tenant classifier overrides: %w", err)
			}
			if err := classify.LoadOverrides(doc); err != nil {
				return fmt.Errorf("tenant classifier overrides: %w", err)
			}
		}
		logger.Info("tenant profile loaded", "tenant", profile.Code, "name", profile.Name)
	}

	// Tracing
	obs, err := observability.New(ctx, &observability.Config{
		ServiceName:    "preview-server",
		ServiceVersion: "1.0.0",
		Environment:    os.Getenv("ENVIRONMENT"),
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        cfg.OTLPEndpoint != "",
		Insecure:       true,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	// Content sources
	var tokens source.TokenProvider
	if cfg.SourceToken != "" {
		tokens = &auth.StaticTokenProvider{Value: cfg.SourceToken}
	} else if cfg.AuthSecret != "" {
		tokens = auth.NewServiceTokenProvider([]byte(cfg.AuthSecret), "preview-server", 30*time.Minute)
	}
	resolver, err := source.NewResolverFromEnv(ctx, nil, tokens)
	if err != nil {
		return err
	}

	// Shared infrastructure: lease store and session manager
	leases := media.NewStore(cfg.MediaTTL)
	fetchLimiter := rate.NewLimiter(rate.Limit(cfg.FetchRPS), int(cfg.FetchRPS)+1)

	sessions := preview.NewManager(func() *preview.Session {
		fetchOpts := []fetch.Option{
			fetch.WithLimiter(fetchLimiter),
			fetch.WithLogger(logger),
			fetch.WithTracer(obs.Tracer()),
		}
		if policy != nil && policy.Limits.MaxFileBytes > 0 {
			fetchOpts = append(fetchOpts, fetch.WithMaxBytes(policy.Limits.MaxFileBytes))
		}
		fetcher := fetch.New(resolver, fetchOpts...)
		return preview.NewSession(preview.Config{
			Fetcher:       fetcher,
			Leases:        leases,
			Opener:        resolver,
			MediaBasePath: "/v1/media",
			Logger:        logger,
		})
	})
	defer sessions.CloseAll()

	// Expired leases are swept in the background.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				leases.Sweep()
			}
		}
	}()

	// Rate limiting: Redis when configured, in-process otherwise
	var limiterStore auth.LimiterStore
	if cfg.RedisAddr != "" {
		limiterStore = auth.NewRedisLimiterStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		logger.Info("rate limiter: redis", "addr", cfg.RedisAddr)
	} else {
		limiterStore = auth.NewMemoryLimiterStore()
		logger.Info("rate limiter: in-memory")
	}

	// HTTP surface
	handler := &api.Handler{
		Sessions: sessions,
		Leases:   leases,
		Resolver: resolver,
		Policy:   policy,
		Logger:   logger,
	}
	mux := http.NewServeMux()
	handler.Routes(mux)

	validator := auth.NewJWTValidator([]byte(cfg.AuthSecret))
	if validator == nil {
		logger.Warn("PREVIEW_AUTH_SECRET not set: all authenticated routes will reject")
	}

	chain := auth.RequestIDMiddleware(
		auth.CORSMiddleware(cfg.CORSOrigins)(
			auth.NewMiddleware(validator)(
				auth.RateLimitMiddleware(limiterStore, auth.LimitPolicy{
					RPM:   cfg.LimitRPM,
					Burst: cfg.LimitBurst,
				})(mux),
			),
		),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           chain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("preview server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
