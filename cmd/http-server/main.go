package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleximart-catalog/internal/config"
	"fleximart-catalog/internal/database"
	handler "fleximart-catalog/internal/handler/http"
	"fleximart-catalog/internal/logger"
	middleware_http "fleximart-catalog/internal/middleware/http"
	"fleximart-catalog/internal/repository"
	"fleximart-catalog/internal/service"
	"fleximart-catalog/internal/tracer"
	"fleximart-catalog/internal/version"
)

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Instance()
	cfg := config.Instance()

	log.Info(cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	logger.SetDefaults(
		slog.String("service", cfg.AppName),
		slog.String("catalog.db", cfg.MongoDBName),
		slog.String("catalog.collection", cfg.MongoCollection),
	)

	shutdown, err := tracer.Instance(globalCtx, cfg)
	if err != nil {
		log.Warn("Tracing disabled", slog.String("error", err.Error()))
	}
	defer shutdown()

	db, err := database.Instance(globalCtx, cfg.MongoURI, cfg.MongoDBName, cfg.MongoTimeout)
	if err != nil {
		log.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wiring
	productRepo := repository.NewProductRepository(db.Database, cfg.MongoCollection)
	catalogService := service.NewCatalogService(productRepo)
	catalogHandler := handler.NewCatalogHandler(catalogService, service.DefaultPlan())

	healthService := service.NewHealthService(db.Client)
	healthHandler := handler.NewHealthHandler(healthService)

	// Routing
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		resp := map[string]string{"data": cfg.AppName, "version": version.Version}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	catalogHandler.Routes(mux)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			healthHandler.Check(r.Context(), w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      middleware_http.TraceMiddleware()(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-globalCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		_ = db.Close(ctx)
	}()

	log.Info("HTTP server running", slog.String("addr", server.Addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Flush(5 * time.Second)
}
