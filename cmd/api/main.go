package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/meetingops/taskbridge/pkg/validator"

	"github.com/meetingops/taskbridge/internal/adapter/handler"
	"github.com/meetingops/taskbridge/internal/adapter/repository"
	"github.com/meetingops/taskbridge/internal/infrastructure/cache"
	"github.com/meetingops/taskbridge/internal/infrastructure/database"
	"github.com/meetingops/taskbridge/internal/infrastructure/external/asana"
	httpmw "github.com/meetingops/taskbridge/internal/infrastructure/http/middleware"
	"github.com/meetingops/taskbridge/internal/infrastructure/storage"
	"github.com/meetingops/taskbridge/internal/usecase/analysis"
	"github.com/meetingops/taskbridge/internal/usecase/catalog"
	"github.com/meetingops/taskbridge/internal/usecase/document"
	"github.com/meetingops/taskbridge/internal/usecase/extraction"
	pkgai "github.com/meetingops/taskbridge/pkg/ai"
	"github.com/meetingops/taskbridge/pkg/config"
)

// @title           TaskBridge API
// @version         1.0
// @description     Turns meeting transcripts and quick notes into structured Asana tasks

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(echomw.Recover())

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize object storage
	log.Println("📦 Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	extractionRepo := repository.NewExtractionRepository(db)

	// Initialize routing catalog
	log.Println("📇 Loading routing catalog...")
	catalogService, err := catalog.NewService(&cfg.Catalog, logger)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Initialize extraction pipeline
	log.Println("🤖 Initializing extraction pipeline...")
	geminiClient, err := pkgai.NewGeminiClient(context.Background(), &cfg.Gemini)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	router := extraction.NewRouter(catalogService.Roster(), logger)
	engine := extraction.NewEngine(router, geminiClient, &cfg.Gemini, logger)
	interpreter := extraction.NewInterpreter(geminiClient, &cfg.Gemini, logger)
	documentProvider := document.NewProvider(logger)

	// Initialize task sink
	log.Println("🔗 Initializing Asana client...")
	asanaClient := asana.NewClient(&cfg.Asana, logger)

	// Initialize analysis service
	log.Println("✨ Initializing analysis service...")
	analysisCache := cache.NewAnalysisCache(redisClient, cfg.Redis.CacheTTL, logger)
	analysisService := analysis.NewService(
		engine,
		interpreter,
		documentProvider,
		catalogService,
		asanaClient,
		extractionRepo,
		minioClient,
		analysisCache,
		logger,
	)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	analysisHandler := handler.NewAnalysisHandler(analysisService, logger)
	quickTaskHandler := handler.NewQuickTaskHandler(analysisService, logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	authMW := httpmw.NewAuthMiddleware(&cfg.Auth)
	apiRouter := handler.NewRouter(cfg, authMW, analysisHandler, quickTaskHandler, catalogHandler)
	apiRouter.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
