package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tradenexus/internal/adapters/ai"
	"tradenexus/internal/adapters/http/middleware"
	"tradenexus/internal/adapters/http/routes"
	"tradenexus/internal/config"
	"tradenexus/internal/core/services"
	"tradenexus/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "tradenexus/docs" // Swagger docs
)

// @title TradeNexus API
// @version 1.0
// @description Global trade intelligence platform API: sessions, trade data and AI insights
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@tradenexus.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey ProfileToken
// @in header
// @name X-Profile-Token
// @description Browser profile token returned by the first API response.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.AppMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	// Open the browser-scoped key-value storage
	kv, err := config.OpenKVRepository(cfg)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.Error(err))
	}
	defer kv.Close()
	defer config.CloseDatabase()

	// Generative AI (disabled unless AI_ENABLED and a key are set)
	generator, err := ai.NewGenerator(context.Background(), cfg.AI)
	if err != nil {
		zlog.Fatal("failed to create AI client", zap.Error(err))
	}

	// Initialize services
	store := services.NewDataStore(config.NewSeeder(cfg.Seed))
	sessions := services.NewSessionService(kv, cfg.Session, zlog.Named("session"))
	aiService := services.NewAIService(generator, cfg.AI.Timeout, zlog.Named("ai"))
	assets := services.NewAssetService(kv, aiService, zlog.Named("assets"))

	hub := services.NewEventHub(store, sessions, zlog.Named("events"))

	logEvents(zlog, store, sessions)

	// Background jobs (expired session sweep, optional data reset)
	cronService, err := services.NewCronService(sessions, store, cfg.Cron, zlog.Named("cron"))
	if err != nil {
		zlog.Fatal("failed to schedule jobs", zap.Error(err))
	}
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TradeNexus API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, routes.Services{
		Sessions: sessions,
		Store:    store,
		AI:       aiService,
		Assets:   assets,
		Events:   hub,
	}, cfg)

	// Graceful shutdown
	go gracefulShutdown(app, hub, zlog)

	// Start server
	zlog.Info("🚀 server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// logEvents writes session and data changes to the log
func logEvents(zlog *zap.Logger, store *services.DataStore, sessions *services.SessionService) {
	sessions.Subscribe(func(e services.SessionEvent) {
		zlog.Info("session event",
			zap.String("type", string(e.Type)),
			zap.String("profile_id", e.ProfileID),
			zap.String("user_id", e.UserID),
		)
	})
	store.Subscribe(func(e services.DataEvent) {
		zlog.Debug("data event",
			zap.String("collection", e.Collection),
			zap.String("op", string(e.Op)),
			zap.String("id", e.ID),
		)
	})
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, hub *services.EventHub, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("🛑 shutting down server...")

	// Open event streams would otherwise hold the shutdown
	hub.Close()
	if err := app.Shutdown(); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	zlog.Info("✅ server stopped gracefully")
}
