package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/toystore_api/internal/cache"
	"github.com/GTDGit/toystore_api/internal/cart"
	"github.com/GTDGit/toystore_api/internal/config"
	"github.com/GTDGit/toystore_api/internal/database"
	"github.com/GTDGit/toystore_api/internal/events"
	"github.com/GTDGit/toystore_api/internal/handler"
	"github.com/GTDGit/toystore_api/internal/middleware"
	"github.com/GTDGit/toystore_api/internal/repository"
	"github.com/GTDGit/toystore_api/internal/service"
	"github.com/GTDGit/toystore_api/internal/sse"
	"github.com/GTDGit/toystore_api/internal/storage"
	"github.com/GTDGit/toystore_api/internal/utils"
	"github.com/GTDGit/toystore_api/internal/worker"
)

// main is the application entrypoint for the toy store API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting toystore api")

	jwtManager, err := utils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		fatal("jwt setup failed", err)
	}

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		fatal("database connection failed", err)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.RunMigrations(db.DB, cfg.DB.MigrationsDir); err != nil {
		fatal("migration failed", err)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		fatal("redis connection failed", err)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Caches and upload storage
	cartStore := cart.NewStore(cache.NewCartStorage(redisClient, cfg.Cart.TTL))
	dashboardCache := cache.NewDashboardCache(redisClient, cfg.DashboardCacheTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uploads, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		fatal("upload storage setup failed", err)
	}

	// 4. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderEventRepo := repository.NewOrderEventRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 5. Initialize services
	adminAuthSvc := service.NewAdminAuthService(adminRepo, jwtManager)
	catalogSvc := service.NewCatalogService(productRepo)
	cartSvc := service.NewCartService(cartStore, variantRepo)
	checkoutSvc := service.NewCheckoutService(cartStore, variantRepo, orderRepo, dashboardCache)
	orderSvc := service.NewOrderService(orderRepo, dashboardCache)
	dashboardSvc := service.NewDashboardService(productRepo, userRepo, orderRepo, dashboardCache)
	productMgmtSvc := service.NewProductManagementService(productRepo, dashboardCache, uploads)
	uploadSvc := service.NewUploadService(uploads, cfg.Storage.MaxUploadSize)

	// 6. Order event publishers
	hub := sse.NewHub()
	publishers := []events.Publisher{sse.NewHubPublisher(hub)}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPub.Close()
		publishers = append(publishers, kafkaPub)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka order events enabled")
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"redis":    redisClient,
		}, orderEventRepo),
		Product:           handler.NewProductHandler(catalogSvc),
		Cart:              handler.NewCartHandler(cartSvc),
		Checkout:          handler.NewCheckoutHandler(checkoutSvc),
		Order:             handler.NewOrderHandler(orderSvc),
		Dashboard:         handler.NewDashboardHandler(dashboardSvc),
		ProductManagement: handler.NewProductManagementHandler(productMgmtSvc),
		Upload:            handler.NewUploadHandler(uploadSvc),
		Auth:              handler.NewAuthHandler(adminAuthSvc),
		SSE:               handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(jwtManager)
	loginLimiter := middleware.NewInvalidAuthRateLimiter()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		router.Static(cfg.Storage.LocalURL, cfg.Storage.LocalDir)
	}
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Start workers
	go worker.NewOutboxWorker(orderEventRepo, cfg.Worker.OutboxInterval, cfg.Worker.OutboxBatchSize, publishers...).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func fatal(msg string, err error) {
	log.Error().Err(err).Msg(msg)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
