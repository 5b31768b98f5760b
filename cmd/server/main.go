package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shiva/wanderplan/config"
	"github.com/shiva/wanderplan/internal/handler"
	"github.com/shiva/wanderplan/internal/middleware"
	"github.com/shiva/wanderplan/internal/repository"
	"github.com/shiva/wanderplan/internal/service"
	"github.com/shiva/wanderplan/pkg/cache"
	"github.com/shiva/wanderplan/pkg/db"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// ── Connect to PostgreSQL ───────────────────────────
	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer pgPool.Close()
	log.Println("✓ PostgreSQL connected")

	// ── Connect to Redis ────────────────────────────────
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ── Catalog ─────────────────────────────────────────
	catalogRepo := repository.NewCatalogRepository(pgPool, redisClient, cfg.Store.CatalogCacheTTL)
	if n, err := catalogRepo.SeedEntries(ctx, service.BuiltinCatalog()); err != nil {
		log.Printf("[catalog] WARNING: seeding built-in catalog failed: %v", err)
	} else if n > 0 {
		log.Printf("[catalog] Seeded %d built-in entries", n)
	}
	catalogSvc := service.NewCatalogService(catalogRepo)
	if err := catalogSvc.Refresh(ctx); err != nil {
		log.Printf("[catalog] WARNING: serving built-in catalog only: %v", err)
	}

	// ── Plan store ──────────────────────────────────────
	var snapshots service.SnapshotRepository
	switch cfg.Store.Backend {
	case "redis":
		snapshots = repository.NewRedisSnapshotRepository(redisClient, cfg.Store.PlansKey, cfg.Store.ActivePlanKey)
	default:
		snapshots = repository.NewPostgresSnapshotRepository(pgPool, cfg.Store.ActivePlanKey)
	}

	engine := service.NewScheduleEngine(catalogSvc)
	store := service.NewPlanStore(engine, snapshots, service.StoreConfig{
		Defaults: service.PlanOptions{
			Days:           cfg.Planner.DefaultDays,
			Region:         cfg.Planner.DefaultRegion,
			TargetCurrency: cfg.Planner.DefaultCurrency,
		},
		WriteTimeout: cfg.Store.WriteTimeout,
	})
	if err := store.Load(ctx); err != nil {
		log.Fatalf("failed to load plans: %v", err)
	}
	log.Printf("✓ Plan store ready (backend=%s)", cfg.Store.Backend)

	// ── Initialize handlers ─────────────────────────────
	drag := service.NewDragCoordinator(engine)
	planHandler := handler.NewPlanHandler(store, engine, catalogSvc)
	scheduleHandler := handler.NewScheduleHandler(store, engine, catalogSvc, drag)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, store)
	extrasHandler := handler.NewExtrasHandler(store)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()

	// Health check endpoint.
	router.HandleFunc("/health", healthHandler(pgPool, redisClient, store)).Methods(http.MethodGet)

	// API v1 routes.
	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api, planHandler, scheduleHandler, catalogHandler, extrasHandler)

	// Wrap with logging, panic recovery and CORS.
	h := middleware.CORS(middleware.Recoverer(middleware.RequestLogger(router)))

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in a goroutine so we can listen for shutdown signals.
	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Server.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	// Flush the last pending plan write before the connections close.
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("[store] WARNING: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler returns an HTTP handler that checks PG and Redis connectivity
// and reports whether the last plan write succeeded.
func healthHandler(pgPool *pgxpool.Pool, redisClient *redis.Client, store *service.PlanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Services: make(map[string]string),
		}

		if err := db.HealthCheck(r.Context(), pgPool); err != nil {
			resp.Status = "degraded"
			resp.Services["postgres"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["postgres"] = "healthy"
		}

		if err := cache.HealthCheck(r.Context(), redisClient); err != nil {
			resp.Status = "degraded"
			resp.Services["redis"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["redis"] = "healthy"
		}

		if err := store.LastPersistError(); err != nil {
			resp.Status = "degraded"
			resp.Services["plan_store"] = "last write failed: " + err.Error()
		} else {
			resp.Services["plan_store"] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(resp)
	}
}
