package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/pos-terminal/internal/cart"
	"github.com/noah-isme/pos-terminal/internal/catalog"
	"github.com/noah-isme/pos-terminal/internal/checkout"
	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/config"
	"github.com/noah-isme/pos-terminal/internal/health"
	"github.com/noah-isme/pos-terminal/internal/lock"
	"github.com/noah-isme/pos-terminal/internal/obs"
	"github.com/noah-isme/pos-terminal/internal/ratelimit"
	"github.com/noah-isme/pos-terminal/internal/receipt"
	"github.com/noah-isme/pos-terminal/internal/register"
	"github.com/noah-isme/pos-terminal/internal/resilience"
	"github.com/noah-isme/pos-terminal/internal/security"
	"github.com/noah-isme/pos-terminal/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.ObsLogFormat, cfg.ObsLogLevel).With().Str("env", cfg.AppEnv).Logger()

	if cfg.ObsMetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.ObsMetricsNamespace, nil)
	}

	tracingEnabled := cfg.ObsTracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "pos-terminal",
			Endpoint:      cfg.ObsTracingEndpoint,
			SamplingRatio: cfg.ObsTracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if tracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.ObsMetricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	outbound := upstream.NewHTTPClient(cfg.UpstreamTimeout)
	upClient := &upstream.Client{
		BaseURL: cfg.UpstreamBaseURL,
		OrgID:   cfg.UpstreamOrgID,
		Token:   cfg.UpstreamAPIToken,
		Read: &resilience.HTTPClient{
			Client:      outbound,
			Breaker:     resilience.NewBreaker(cfg.CircuitMinReq, cfg.CircuitFailureRate, cfg.CircuitOpenFor).WithTarget("upstream-read").WithLogger(logger),
			BaseBackoff: cfg.RetryBase,
			MaxAttempts: cfg.RetryMaxAttempts,
			Jitter:      cfg.RetryJitterPercent,
		},
		// Order creation must never be replayed, so the write path gets a
		// single attempt.
		Write: &resilience.HTTPClient{
			Client:      outbound,
			Breaker:     resilience.NewBreaker(cfg.CircuitMinReq, cfg.CircuitFailureRate, cfg.CircuitOpenFor).WithTarget("upstream-write").WithLogger(logger),
			MaxAttempts: 1,
		},
		Logger: &logger,
	}

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Upstream: upClient,
		Cache:    catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalogSvc)

	cartStore := &cart.Store{R: redisClient, TTL: cfg.CartTTL}
	cartSvc := &cart.Service{Store: cartStore, Catalog: catalogSvc, Logger: &logger}
	cartHandler := &cart.Handler{Svc: cartSvc, Validate: validator.New()}

	receiptStore := &receipt.Store{R: redisClient, TTL: cfg.ReceiptTTL}
	receiptHandler := &receipt.Handler{Store: receiptStore}

	checkoutSvc := &checkout.Service{
		Carts:    cartStore,
		Upstream: upClient,
		Lock:     lock.Locker{R: redisClient},
		LockTTL:  cfg.CheckoutLockTTL,
		Receipts: receiptStore,
		Catalog:  catalogSvc,
		Currency: cfg.CurrencyCode,
		Logger:   &logger,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	registerSvc := &register.Service{Source: upClient, Logger: &logger}
	registerHandler := &register.Handler{Svc: registerSvc}
	closeReportHandler := &receipt.CloseReportHandler{Registers: registerSvc, Currency: cfg.CurrencyCode}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
		Config: ratelimit.Config{
			Key:    common.ClientIP,
			Window: cfg.RateLimitWindow,
			Max:    int(cfg.RateLimitMax),
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.ObsMetricsEnabled {
		buckets := obs.ParseBucketsCSV(cfg.ObsLatencyBucketsCSV)
		httpMetrics = obs.NewHTTPMetrics(cfg.ObsMetricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		Enable:     cfg.SecurityHeaders,
		EnableHSTS: cfg.SecurityHSTS,
		HSTSMaxAge: cfg.SecurityHSTSMaxAge,
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.ObsMetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := os.Getenv("SECURE_PPROF_BASIC_AUTH_USER")
		pass := os.Getenv("SECURE_PPROF_BASIC_AUTH_PASS")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker: readinessChecker{redis: redisClient, upstream: upClient},
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/catalog/products", catalogHandler.Products)
		v.Get("/accounts", catalogHandler.Accounts)
		v.Get("/entities", catalogHandler.Entities)

		v.Route("/carts", func(c chi.Router) {
			c.Use(limiter.Middleware)
			c.Post("/", cartHandler.Create)
			c.Route("/{cartID}", func(s chi.Router) {
				s.Get("/", cartHandler.Get)
				s.Delete("/", cartHandler.Abandon)
				s.Post("/lines", cartHandler.AddLine)
				s.Patch("/lines/{index}", cartHandler.UpdateLine)
				s.Delete("/lines/{index}", cartHandler.RemoveLine)
				s.Post("/charges", cartHandler.AddCharge)
				s.Patch("/charges/{chargeID}", cartHandler.UpdateCharge)
				s.Delete("/charges/{chargeID}", cartHandler.RemoveCharge)
				s.Put("/discount", cartHandler.SetDiscount)
				s.Put("/customer", cartHandler.SetCustomer)
				s.Post("/payments", cartHandler.AddPayment)
				s.Patch("/payments/{index}", cartHandler.UpdatePayment)
				s.Delete("/payments/{index}", cartHandler.RemovePayment)
				s.With(idem.Middleware).Post("/checkout", checkoutHandler.Submit)
			})
		})

		v.Route("/registers/{registerID}", func(g chi.Router) {
			g.Get("/", registerHandler.Get)
			g.Get("/close-report", closeReportHandler.Get)
			g.With(limiter.Middleware, idem.Middleware).Post("/close", registerHandler.Close)
		})

		v.Get("/receipts/{orderID}", receiptHandler.Get)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop, cancelSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelSignals()
	<-stop.Done()

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	redis    *redis.Client
	upstream *upstream.Client
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func (c readinessChecker) PingUpstream(ctx context.Context, timeout time.Duration) error {
	if c.upstream == nil {
		return errors.New("upstream not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.upstream.Ping(ctx)
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
