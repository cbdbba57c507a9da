package routes

import (
	"tradenexus/internal/adapters/http/handlers"
	"tradenexus/internal/adapters/http/middleware"
	"tradenexus/internal/config"
	"tradenexus/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Services are the application services exposed over HTTP
type Services struct {
	Sessions *services.SessionService
	Store    *services.DataStore
	AI       *services.AIService
	Assets   *services.AssetService
	Events   *services.EventHub
}

// Setup configures all routes for the application
func Setup(app *fiber.App, svc Services, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, svc.AI.Enabled())
	authHandler := handlers.NewAuthHandler(svc.Sessions)
	profileHandler := handlers.NewProfileHandler(svc.Sessions)
	dataHandler := handlers.NewDataHandler(svc.Store)
	aiHandler := handlers.NewAIHandler(svc.AI, svc.Assets)
	eventsHandler := handlers.NewEventsHandler(svc.Events)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group; every request is tied to a browser profile
	apiV1 := app.Group("/api/v1", middleware.BrowserProfile(cfg))
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler)

	// Profile routes (signed-in users)
	profileRoutes := apiV1.Group("/profile", middleware.NoCacheHeaders(), middleware.RequireSession(svc.Sessions))
	setupProfileRoutes(profileRoutes, profileHandler)

	// Data routes (signed-in users)
	dataRoutes := apiV1.Group("/data", middleware.RequireSession(svc.Sessions))
	setupDataRoutes(dataRoutes, dataHandler, eventsHandler)

	// AI routes (signed-in users)
	aiRoutes := apiV1.Group("/ai", middleware.RequireSession(svc.Sessions))
	setupAIRoutes(aiRoutes, aiHandler)

	// Branding assets (signed-in users)
	apiV1.Get("/assets", middleware.RequireSession(svc.Sessions), aiHandler.Assets)
}

// setupAuthRoutes configures session routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler) {
	limited := middleware.AuthRateLimiter()

	router.Post("/login", limited, handler.Login)
	router.Post("/provider/:provider", limited, handler.LoginWithProvider)
	router.Post("/sso", limited, handler.SSOLogin)
	router.Post("/register", limited, handler.Register)
	router.Post("/logout", handler.Logout)

	router.Get("/me", handler.Me)
	router.Get("/session", handler.Session)
}

// setupProfileRoutes configures profile routes
func setupProfileRoutes(router fiber.Router, handler *handlers.ProfileHandler) {
	router.Put("/", handler.UpdateProfile)
	router.Post("/onboarding", handler.CompleteOnboarding)
}

// setupDataRoutes configures shipment, company and reference data routes
func setupDataRoutes(router fiber.Router, handler *handlers.DataHandler, events *handlers.EventsHandler) {
	router.Get("/shipments", handler.ListShipments)
	router.Post("/shipments", handler.CreateShipment)
	router.Get("/shipments/:id", handler.GetShipment)
	router.Put("/shipments/:id", handler.UpdateShipment)
	router.Delete("/shipments/:id", handler.DeleteShipment)

	router.Get("/companies", handler.ListCompanies)
	router.Post("/companies", handler.CreateCompany)
	router.Get("/companies/:id", handler.GetCompany)
	router.Put("/companies/:id", handler.UpdateCompany)
	router.Delete("/companies/:id", handler.DeleteCompany)

	// Reference data only changes on reset
	cache := middleware.ReferenceDataCache()
	router.Get("/hs-codes", cache, handler.ListHsCodes)
	router.Get("/hs-tree", cache, handler.HsTree)
	router.Get("/hs-tree/:code", cache, handler.GetHsNode)
	router.Get("/country-stats", cache, handler.ListCountryStats)

	// Admin only
	router.Post("/reset", middleware.AdminOnly(), middleware.StrictRateLimiter(), handler.Reset)

	router.Get("/events", events.Stream)
}

// setupAIRoutes configures generative-AI routes
func setupAIRoutes(router fiber.Router, handler *handlers.AIHandler) {
	router.Post("/ask", handler.Ask)
	router.Post("/chat", handler.Chat)
	router.Post("/hs-classify", handler.ClassifyHsCode)
	router.Post("/email-script", handler.EmailScript)
	router.Post("/call-script", handler.CallScript)
	router.Get("/news", handler.TradeNews)
}
