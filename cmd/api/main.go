package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
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

	"github.com/fedya1922n/food-shop/internal/cart"
	"github.com/fedya1922n/food-shop/internal/catalog"
	"github.com/fedya1922n/food-shop/internal/checkout"
	"github.com/fedya1922n/food-shop/internal/config"
	"github.com/fedya1922n/food-shop/internal/events"
	"github.com/fedya1922n/food-shop/internal/health"
	"github.com/fedya1922n/food-shop/internal/history"
	"github.com/fedya1922n/food-shop/internal/i18n"
	"github.com/fedya1922n/food-shop/internal/obs"
	"github.com/fedya1922n/food-shop/internal/ratelimit"
	"github.com/fedya1922n/food-shop/internal/sched"
	"github.com/fedya1922n/food-shop/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "foodshop")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", false)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "food-shop-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
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
	if metricsEnabled {
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

	bundle, err := i18n.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load locales")
	}

	catalogSvc, err := catalog.NewService(bundle, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog")
	}
	prompt := &catalog.SwitchPrompt{Clock: sched.Real(), TTL: cfg.LanguageNoticeTTL}
	defer prompt.Close()
	catalogHandler := &catalog.Handler{Svc: catalogSvc, Prompt: prompt}

	bus := &events.Bus{}

	cartStore := cart.NewStore(cart.Config{
		Client:    redisClient,
		Capacity:  cfg.CartCapacity,
		Debounce:  cfg.CartPersistDebounce,
		NoticeTTL: cfg.CartFullNoticeTTL,
		Clock:     sched.Real(),
		Log:       logger,
		Bus:       bus,
	})
	cartStore.Load(ctx)
	cartHandler := &cart.Handler{Store: cartStore, Catalog: catalogSvc, Bundle: bundle, Log: logger}

	historyStore := &history.Store{Client: redisClient, Log: logger, Bus: bus}
	historyHandler := &history.Handler{Store: historyStore, Bundle: bundle}

	checkoutSvc := &checkout.Service{
		Cart:    cartStore,
		History: historyStore,
		Bundle:  bundle,
		Bus:     bus,
		Clock:   sched.Real(),
		Log:     logger,
	}
	bus.Subscribe(checkoutSvc.AutoRevertNotifier())
	bus.Subscribe(events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		logger.Debug().Str("topic", ev.Topic).RawJSON("payload", ev.Payload).Msg("domain_event")
		return nil
	}))
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc, Bundle: bundle, Validate: validator.New()}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return strings.Split(r.RemoteAddr, ":")[0] },
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter") },
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{
		Enable:     envBool("SECURITY_HEADERS_ENABLE", true),
		EnableHSTS: envBool("SECURITY_HSTS_ENABLE", false),
	}.Middleware)
	r.Use(security.BodyLimit{Max: int64(envInt("SECURITY_MAX_BODY_BYTES", 1<<16))}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Shop-Language"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{redis: redisClient},
		StoreTimeout: envDurationMillis("HEALTH_READY_STORE_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(limiter.Middleware)

		v.Get("/products", catalogHandler.List)
		v.Get("/products/{id}", catalogHandler.Get)
		v.Get("/search", catalogHandler.Search)
		v.Post("/search/dismiss-language", catalogHandler.DismissPrompt)

		v.Route("/cart", func(c chi.Router) {
			c.Get("/", cartHandler.Get)
			c.Post("/items", cartHandler.AddItem)
			c.Delete("/items/{id}", cartHandler.RemoveItem)
			c.Delete("/", cartHandler.Clear)
		})

		v.Route("/checkout", func(c chi.Router) {
			c.Get("/", checkoutHandler.State)
			c.Post("/open", checkoutHandler.Open)
			c.Post("/cancel", checkoutHandler.Cancel)
			c.Post("/validate-field", checkoutHandler.ValidateField)
			c.Post("/", checkoutHandler.Submit)
		})

		v.Route("/purchases", func(p chi.Router) {
			p.Get("/", historyHandler.List)
			p.Delete("/", historyHandler.Clear)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
		if err := cartStore.Close(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("flush cart on shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	redis *redis.Client
}

func (c readinessChecker) PingStore(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
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

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
