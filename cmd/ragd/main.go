package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/config"
	"github.com/cutelabs/ragd/internal/db"
	dbRedis "github.com/cutelabs/ragd/internal/db/redis"
	"github.com/cutelabs/ragd/internal/domain"
	logpkg "github.com/cutelabs/ragd/internal/logger"
	"github.com/cutelabs/ragd/internal/metrics"
	documentrepo "github.com/cutelabs/ragd/internal/repository/document"
	"github.com/cutelabs/ragd/internal/repository/embcache"
	searchrepo "github.com/cutelabs/ragd/internal/repository/search"
	settingsrepo "github.com/cutelabs/ragd/internal/repository/settings"
	chiTransport "github.com/cutelabs/ragd/internal/transport/chi"
	openaiTransport "github.com/cutelabs/ragd/internal/transport/openai"
	chatuc "github.com/cutelabs/ragd/internal/usecase/chat"
	documentuc "github.com/cutelabs/ragd/internal/usecase/document"
	healthuc "github.com/cutelabs/ragd/internal/usecase/health"
	retrievaluc "github.com/cutelabs/ragd/internal/usecase/retrieval"
	segmentuc "github.com/cutelabs/ragd/internal/usecase/segment"
	settingsuc "github.com/cutelabs/ragd/internal/usecase/settings"
	"github.com/cutelabs/ragd/internal/version"
)

func main() {
	// .env first, then ENV-selected YAML. Missing .env is fine.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if err := ensureDocumentIndex(ctx, store, cfg.Retrieval, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Failed to ensure document index", zap.Error(err))
	}

	// Register provider metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.CacheEnabled),
	)

	router := chatuc.NewRouter()
	for name, provCfg := range cfg.Chat.Providers {
		router.Register(name, openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:   provCfg.APIKey,
			BaseURL:  provCfg.BaseURL,
			Model:    provCfg.Model,
			Provider: name,
			Logger:   logger,
		}))
	}
	logger.Info("Completion providers registered", zap.Strings("providers", router.Names()))

	segmentCompleter, err := router.Resolve(cfg.Chat.SegmentProvider)
	if err != nil {
		logger.Fatal("Segmentation provider not configured", zap.Error(err))
	}

	docRepo := documentrepo.New(store)
	searchRepo := searchrepo.New(store)
	settingsStore := settingsrepo.New(store)

	settingsSvc := settingsuc.New(settingsStore, cfg.Retrieval.DefaultFanout, logger)
	if err := settingsSvc.Load(ctx); err != nil {
		logger.Fatal("Failed to load persisted settings", zap.Error(err))
	}
	logger.Info("Retrieval fanout in effect", zap.Int("fanout", settingsSvc.Fanout()))

	retrievalSvc := retrievaluc.New(embedder, searchRepo, settingsSvc, logger)
	chatSvc := chatuc.New(router, retrievalSvc, logger)
	docSvc := documentuc.New(docRepo, embedder, logger)
	segmentSvc := segmentuc.New(segmentCompleter, logger)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(chatSvc, docSvc, segmentSvc, settingsSvc, retrievalSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowCredentials))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// ensureDocumentIndex creates the FT index over document hashes if it does
// not exist yet. An index that appeared between the check and the create is
// fine.
func ensureDocumentIndex(ctx context.Context, store db.Store, ret config.RetrievalConfig, dim int) error {
	exists, err := store.IndexExists(ctx, documentrepo.IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     documentrepo.IndexName,
		Prefixes: []string{documentrepo.KeyPrefix},
		Vector: db.VectorField{
			Name:        documentrepo.FieldVector,
			Algo:        db.VectorHNSW,
			Dim:         dim,
			Distance:    db.DistanceCosine,
			M:           ret.HNSWM,
			EFConstruct: ret.HNSWEFConstruct,
		},
	}

	if err := store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// buildEmbedder assembles the embedder chain: OpenAI -> Cached.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Provider: "openai",
		Logger:   logger,
	})

	if !cfg.CacheEnabled {
		return base
	}
	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
