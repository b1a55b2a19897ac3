package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/maxdokukin/haaangry-backend/internal/api"
	"github.com/maxdokukin/haaangry-backend/internal/cache"
	"github.com/maxdokukin/haaangry-backend/internal/catalog"
	"github.com/maxdokukin/haaangry-backend/internal/config"
	"github.com/maxdokukin/haaangry-backend/internal/logger"
	"github.com/maxdokukin/haaangry-backend/internal/metrics"
	"github.com/maxdokukin/haaangry-backend/internal/sentry"
	"github.com/maxdokukin/haaangry-backend/internal/services/anthropic"
	"github.com/maxdokukin/haaangry-backend/internal/services/intent"
	"github.com/maxdokukin/haaangry-backend/internal/services/recipes"
	"github.com/maxdokukin/haaangry-backend/internal/services/recommend"
	"github.com/maxdokukin/haaangry-backend/internal/services/websearch"
	"github.com/maxdokukin/haaangry-backend/internal/telemetry"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, nil)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion)
	if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	logger := logger.New(cfg.Env)
	slog.SetDefault(logger)

	// Startup data snapshot: video feed plus restaurant catalog
	snap := catalog.Load(cfg.FeedJSONPath, cfg.DownloadDir, cfg.CatalogPath)

	// Model gateway and its web tools. A missing key degrades the model
	// features instead of blocking startup.
	searchClient := websearch.NewClient(cfg.BraveSearchKey)
	gateway := anthropic.NewClient(cfg.AnthropicKey, cfg.Model, searchClient)
	if !gateway.Configured() {
		slog.Warn("ANTHROPIC_API_KEY not set, recipe search disabled and recommendations fall back to ranking")
	}

	recipeSvc := recipes.NewService(gateway, cache.NewMemory())
	recommendSvc := recommend.NewService(gateway, snap)
	intentSvc := intent.NewService(gateway)

	// API handlers
	apiServer := api.NewServer(cfg, snap, recipeSvc, recommendSvc, intentSvc)

	// Router
	r := chi.NewRouter()

	// Middleware
	r.Use(otelchi.Middleware(cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(sentry.HTTPMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.Get("/health", apiServer.HandleHealth)

	// Local media mount for the collected videos
	if dir := snap.DownloadDir(); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Handle("/videos/*", http.StripPrefix("/videos/", http.FileServer(http.Dir(dir))))
		}
	}

	// API routes
	r.Get("/feed", apiServer.HandleFeed)
	r.Get("/recipes", apiServer.HandleRecipes)
	r.Post("/recommend", apiServer.HandleRecommend)
	r.Get("/order/options", apiServer.HandleOrderOptions)
	r.Post("/orders", apiServer.HandleCreateOrder)
	r.Get("/orders/history", apiServer.HandleOrdersHistory)
	r.Post("/llm/text", apiServer.HandleLLMText)
	r.Post("/llm/voice", apiServer.HandleLLMVoice)
	r.Get("/profile", apiServer.HandleProfile)

	// Clients that percent-encode the query into the path land here.
	r.NotFound(apiServer.HandleNotFound)

	// Start server
	slog.Info("Starting server", "port", cfg.Port, "videos", snap.DownloadDir())

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
