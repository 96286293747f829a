package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/config"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/delivery/http/middleware"
	v1 "github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/delivery/http/v1"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/infrastructure/cache"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/repository/postgres"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/usecase"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/storage"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(context.Background(), pgxPool); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate schema")
		}
	}

	// Initialize Repositories
	productRepo := postgres.NewProductRepository(pgxPool)
	gateway := postgres.NewCatalogGateway(pgxPool)

	var txManager domain.TransactionManager
	if cfg.AtomicCommit {
		txManager = postgres.NewTransactionManager(pgxPool)
	} else {
		log.Warn().Msg("ATOMIC_COMMIT disabled: a failed commit may leave a product partially saved")
	}

	// Product read cache; edit sessions live in their own store so the
	// product purge never drops pending edits.
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)
	sessionStore := cache.NewMemoryCache(cfg.EditSessionTTL, cfg.EditSessionTTL/2)

	uploader, err := newUploader(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to initialize storage")
	}

	// --- Modules Initialization ---
	catalogUC := usecase.NewCatalogUsecase(productRepo, gateway, txManager, memCache, cfg)
	sequencer := usecase.NewOrderSequencer(gateway, memCache)
	sessionUC := usecase.NewEditSessionUsecase(productRepo, gateway, txManager, uploader, sessionStore, memCache, cfg)
	uploadUC := usecase.NewUploadUsecase(uploader, cfg.UploadFolder)

	catalogHandler := v1.NewCatalogHandler(catalogUC)
	adminCatalogHandler := v1.NewAdminCatalogHandler(catalogUC, sequencer)
	sessionHandler := v1.NewEditSessionHandler(sessionUC, cfg.MaxUploadSizeMB)
	uploadHandler := v1.NewUploadHandler(uploadUC, cfg.MaxUploadSizeMB)

	// Set up Router
	mux := http.NewServeMux()

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/categories", catalogHandler.GetCategories)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{slug}", catalogHandler.GetProductDetails)

	// Admin Product Management
	mux.Handle("GET /api/v1/admin/products", middleware.Admin(adminCatalogHandler.ListProducts))
	mux.Handle("POST /api/v1/admin/products", middleware.Admin(adminCatalogHandler.CreateProduct))
	mux.Handle("GET /api/v1/admin/products/{id}", middleware.Admin(adminCatalogHandler.GetProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", middleware.Admin(adminCatalogHandler.UpdateProduct))
	mux.Handle("DELETE /api/v1/admin/products/{id}", middleware.Admin(adminCatalogHandler.DeleteProduct))
	mux.Handle("POST /api/v1/admin/categories", middleware.Admin(adminCatalogHandler.CreateCategory))

	// Storefront ordering
	mux.Handle("GET /api/v1/admin/products/order", middleware.Admin(adminCatalogHandler.GetOrder))
	mux.Handle("POST /api/v1/admin/products/reorder", middleware.Admin(adminCatalogHandler.ReorderProducts))
	mux.Handle("POST /api/v1/admin/products/order/move", middleware.Admin(adminCatalogHandler.MoveProduct))

	// Edit sessions (variants + gallery)
	mux.Handle("POST /api/v1/admin/products/{id}/sessions", middleware.Admin(sessionHandler.Open))
	mux.Handle("GET /api/v1/admin/sessions/{sid}", middleware.Admin(sessionHandler.Get))
	mux.Handle("DELETE /api/v1/admin/sessions/{sid}", middleware.Admin(sessionHandler.Abandon))
	mux.Handle("POST /api/v1/admin/sessions/{sid}/images", middleware.Admin(sessionHandler.AddImage))
	mux.Handle("DELETE /api/v1/admin/sessions/{sid}/images/{index}", middleware.Admin(sessionHandler.RemoveImage))
	mux.Handle("POST /api/v1/admin/sessions/{sid}/images/{index}/primary", middleware.Admin(sessionHandler.SetPrimary))
	mux.Handle("POST /api/v1/admin/sessions/{sid}/images/{index}/move", middleware.Admin(sessionHandler.MoveImage))
	mux.Handle("POST /api/v1/admin/sessions/{sid}/variants", middleware.Admin(sessionHandler.AddVariant))
	mux.Handle("PUT /api/v1/admin/sessions/{sid}/variants/{index}", middleware.Admin(sessionHandler.SetVariant))
	mux.Handle("DELETE /api/v1/admin/sessions/{sid}/variants/{index}", middleware.Admin(sessionHandler.RemoveVariant))
	mux.Handle("POST /api/v1/admin/sessions/{sid}/commit", middleware.Admin(sessionHandler.Commit))

	// Uploads
	mux.Handle("POST /api/v1/admin/uploads", middleware.Admin(uploadHandler.UploadFile))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pgxPool.Ping(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart("giftcards-catalog", "1.0.0", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop("giftcards-catalog")
}

// newUploader selects the storage backend named by STORAGE_DRIVER.
func newUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverR2:
		return storage.NewR2Storage(ctx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
	case config.StorageDriverCloudinary:
		return storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.R2UploadTimeout)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
