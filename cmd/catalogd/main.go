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

	"github.com/kailas-cloud/catalogd/internal/config"
	"github.com/kailas-cloud/catalogd/internal/index"
	logpkg "github.com/kailas-cloud/catalogd/internal/logger"
	"github.com/kailas-cloud/catalogd/internal/metrics"
	"github.com/kailas-cloud/catalogd/internal/resolver"
	"github.com/kailas-cloud/catalogd/internal/store"
	chiTransport "github.com/kailas-cloud/catalogd/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/catalogd/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/catalogd/internal/usecase/health"
	synceruc "github.com/kailas-cloud/catalogd/internal/usecase/syncer"
	"github.com/kailas-cloud/catalogd/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting catalogd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.String("index_addr", cfg.Index.Addr),
	)

	// Relational store — the source of truth.
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register index metrics explicitly (no init())
	metrics.RegisterIndexMetrics()

	// Search index — optional. With no addr configured every read is served
	// from storage and every sync request is a no-op.
	var idx *index.Client
	idxCfg := index.Config{
		Addr:               cfg.Index.Addr,
		Username:           cfg.Index.Username,
		Password:           cfg.Index.Password,
		Name:               cfg.Index.Name,
		InsecureSkipVerify: cfg.Index.InsecureSkipVerify,
		Timeout:            time.Duration(cfg.Index.TimeoutMSec) * time.Millisecond,
	}
	if idxCfg.Enabled() {
		idx, err = index.New(idxCfg, logger)
		if err != nil {
			logger.Fatal("Failed to create index client", zap.Error(err))
		}
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.Warn("Failed to ensure index schema, continuing without", zap.Error(err))
		} else {
			logger.Info("Search index ready", zap.String("name", cfg.Index.Name))
		}
	} else {
		idx = index.Disabled(logger)
		logger.Info("Search index disabled, serving from storage only")
	}
	defer idx.Close()

	// Repositories
	resources := store.NewResources(st.DB())
	items := store.NewItems(st.DB())
	comments := store.NewComments(st.DB())
	features := store.NewFeatures(st.DB())

	// Feature filters to id-set constraint resolver
	res := resolver.New(features)

	// Background index syncer
	sync := synceruc.New(resources, idx, logger, cfg.Index.SyncQueueSize)
	defer sync.Close()

	// Use case services
	paging := cataloguc.Paging{
		DefaultLimit: cfg.Paging.DefaultPageSize,
		MaxLimit:     cfg.Paging.MaxPageSize,
	}
	catalogSvc := cataloguc.New(resources, items, comments, res, idx, sync, paging, logger)
	healthSvc := healthuc.New(st, idx)

	// Create chi server
	server := chiTransport.NewServer(catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
