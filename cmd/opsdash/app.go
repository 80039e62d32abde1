package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/opsdash/auth"
	"github.com/jonwraymond/opsdash/cache"
	"github.com/jonwraymond/opsdash/config"
	"github.com/jonwraymond/opsdash/dashboard"
	"github.com/jonwraymond/opsdash/health"
	"github.com/jonwraymond/opsdash/observe"
)

// app is a fully wired server, ready to listen.
type app struct {
	cfg     *config.Config
	obs     observe.Observer
	logger  observe.Logger
	store   *cache.Store
	sweeper *cache.Sweeper
	handler http.Handler
}

type appOptions struct {
	seed bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	logger := obs.Logger()

	store := cache.NewStore()
	cacheMetrics, err := observe.NewCacheMetrics(obs.Meter(), func() int64 { return int64(store.Len()) })
	if err != nil {
		return nil, fmt.Errorf("cache metrics: %w", err)
	}

	authMW := auth.NewMiddleware(newAuthenticator(cfg.Auth), logger)

	var keyer cache.Keyer = cache.NewRequestKeyer()
	if cfg.Cache.ScopeByIdentity {
		keyer = cache.NewIdentityKeyer(keyer)
	}
	policy := cfg.Cache.Policy()
	ic, err := cache.NewInterceptor(store, policy,
		cache.WithKeyer(keyer),
		cache.WithLogger(logger),
		cache.WithMetrics(cacheMetrics),
	)
	if err != nil {
		return nil, err
	}
	sweeper, err := cache.NewSweeper(store, policy,
		cache.WithSweeperLogger(logger),
		cache.WithSweeperMetrics(cacheMetrics),
	)
	if err != nil {
		return nil, err
	}

	repo := dashboard.NewMemoryRepository()
	if opts.seed {
		if err := dashboard.Seed(ctx, repo); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	mux := http.NewServeMux()

	var identity, adminGuard func(http.Handler) http.Handler
	if cfg.Auth.Enabled() {
		identity = authMW.Optional
		adminGuard = authMW.RequireRole(cfg.Auth.AdminRole)
	} else {
		logger.Warn(ctx, "no credentials configured, cache admin endpoints are unauthenticated")
	}

	dashboard.NewServer(repo, cache.NewHTTPMiddleware(ic, logger), dashboard.ServerConfig{
		Name:     cfg.Observe.ServiceName,
		Version:  cfg.Observe.Version,
		Identity: identity,
		Logger:   logger,
	}).Register(mux)
	cache.NewAdminHandler(store, logger, cacheMetrics).Register(mux, adminGuard)

	agg := health.NewAggregator()
	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
	agg.Register("system_memory", health.NewSystemMemoryChecker(0, 0))
	agg.Register("cache", health.NewCacheChecker(store, cfg.Cache.WarnEntries))
	health.RegisterHandlers(mux, agg, time.Now())

	if h := obs.MetricsHandler(); h != nil {
		mux.Handle("GET /metrics", h)
	}

	obsMW, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		obs:     obs,
		logger:  logger,
		store:   store,
		sweeper: sweeper,
		handler: obsMW.Handler(dashboard.SecurityHeaders(mux)),
	}, nil
}

func newAuthenticator(cfg config.AuthConfig) auth.Authenticator {
	var auths []auth.Authenticator
	if cfg.JWTSecret != "" {
		auths = append(auths, auth.NewJWTAuthenticator(auth.JWTConfig{
			Secret: []byte(cfg.JWTSecret),
			Issuer: cfg.JWTIssuer,
		}))
	}
	if len(cfg.APIKeys) > 0 {
		keys := auth.NewMemoryAPIKeyStore()
		for _, k := range cfg.APIKeys {
			keys.AddKey(k.ID, k.Key, k.Principal, k.Roles...)
		}
		auths = append(auths, auth.NewAPIKeyAuthenticator("", keys))
	}
	return auth.NewCompositeAuthenticator(auths...)
}

// run serves until ctx is cancelled, then shuts down within the configured
// timeout.
func (a *app) run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout.Std(),
		WriteTimeout: a.cfg.Server.WriteTimeout.Std(),
	}

	if err := a.sweeper.Start(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "server listening",
			observe.F("addr", a.cfg.Server.Addr),
			observe.F("cache_validity", a.cfg.Cache.Validity.String()),
			observe.F("cache_retention", a.cfg.Cache.Policy().Retention.String()),
		)
		errc <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errc:
		serveErr = err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	a.logger.Info(shutdownCtx, "shutting down")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "http shutdown", observe.F("error", err.Error()))
	}
	if err := a.sweeper.Stop(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "sweeper shutdown", observe.F("error", err.Error()))
	}
	if err := a.obs.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "telemetry shutdown", observe.F("error", err.Error()))
	}

	if serveErr != nil && serveErr != http.ErrServerClosed {
		return serveErr
	}
	return nil
}
