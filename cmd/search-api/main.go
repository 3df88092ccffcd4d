package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/config"
	logpkg "github.com/flaxandteal/dp-conceptual-search-sub000/internal/logger"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/metrics"
	documentrepo "github.com/flaxandteal/dp-conceptual-search-sub000/internal/repository/document"
	sessionrepo "github.com/flaxandteal/dp-conceptual-search-sub000/internal/repository/session"
	chiTransport "github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/chi"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/elastic"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/transport/fasttext"
	healthuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/health"
	personalizeuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/personalize"
	recommenduc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/recommend"
	searchuc "github.com/flaxandteal/dp-conceptual-search-sub000/internal/usecase/search"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("elasticsearch_addr", cfg.Elasticsearch.Addr),
		zap.Bool("semantic_enabled", cfg.Semantic.Enabled),
	)

	// Register external call metrics explicitly (no init())
	metrics.RegisterExternalMetrics()

	sessions, err := sessionrepo.NewStore(sessionrepo.Config{
		Addrs:           cfg.Redis.Addrs,
		Password:        cfg.Redis.Password,
		KeyPrefix:       cfg.Redis.KeyPrefix,
		SessionTTLHours: cfg.Redis.SessionTTLHours,
		MaxSessions:     cfg.Redis.MaxSessions,
	})
	if err != nil {
		logger.Fatal("Failed to create session store", zap.Error(err))
	}
	defer sessions.Close()

	engine := elastic.NewClient(elastic.Config{
		Addr:       cfg.Elasticsearch.Addr,
		TimeoutSec: cfg.Elasticsearch.TimeoutSec,
		Logger:     logger,
	})
	embedder := fasttext.NewClient(fasttext.Config{
		Addr:       cfg.Fasttext.Addr,
		TimeoutSec: cfg.Fasttext.TimeoutSec,
		Logger:     logger,
	})

	docs := documentrepo.New(engine, cfg.Elasticsearch.ContentIndex)

	searchSvc := searchuc.New(engine, embedder, searchuc.Config{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
		MaxVisibleLinks: cfg.Search.MaxVisibleLinks,
		SemanticEnabled: cfg.Semantic.Enabled,
		NumLabels:       cfg.Semantic.NumLabels,
		LabelThreshold:  cfg.Semantic.LabelThreshold,
		Highlight:       cfg.Search.Highlight,
	}, cfg.Elasticsearch.ContentIndex, cfg.Elasticsearch.DepartmentsIndex)

	personalizeSvc := personalizeuc.New(sessions, embedder, docs, cfg.Semantic.LearningRate)

	recommendSvc := recommenduc.New(engine, embedder, docs, personalizeSvc, recommenduc.Config{
		NumLabels:   cfg.Semantic.NumLabels,
		DefaultSize: cfg.Search.DefaultPageSize,
	}, cfg.Elasticsearch.ContentIndex)

	healthSvc := healthuc.New(
		healthuc.Check{Name: "elasticsearch", Pinger: engine},
		healthuc.Check{Name: "fasttext", Pinger: embedder},
		healthuc.Check{Name: "redis", Pinger: sessions},
	)

	server := chiTransport.NewServer(searchSvc, recommendSvc, personalizeSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
