package router

import (
	"log"
	"time"

	"github.com/edstack/institute-api/config"
	"github.com/edstack/institute-api/database"
	"github.com/edstack/institute-api/handlers"
	auth_handlers "github.com/edstack/institute-api/handlers/auth"
	institute_handlers "github.com/edstack/institute-api/handlers/institute"
	"github.com/edstack/institute-api/utils/auth"
	"github.com/edstack/institute-api/utils/cache"
	"github.com/edstack/institute-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, store *database.GORMStore, env *config.EnviornmentVariable) {
	jwtSecret := env.JWT_SECRET
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "institute-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: 24 * time.Hour, // Access token expires in 24 hours
		Issuer: jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := store.GetDB()

	// Initialize Redis cache for brute force protection
	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	instituteHandler := institute_handlers.NewInstituteHandler(db)
	healthHandler := handlers.NewHealthHandler(store)

	apiGroup := app.Group("/api")

	// Probes: liveness never touches the database, readiness pings it
	apiGroup.Get("/healthCheck", handlers.HealthCheck)
	apiGroup.Get("/readyCheck", healthHandler.ReadyCheck)

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Institute routes, gated by the instituteManagement feature flag.
	// Reads are public; writes require an authenticated user.
	instituteGroup := apiGroup.Group("/institutes", middleware.FeatureFlag("instituteManagement"))
	instituteGroup.Get("/", instituteHandler.List)
	instituteGroup.Get("/:id", instituteHandler.Get)
	instituteGroup.Post("/", authMiddleware.Required(), instituteHandler.Create)
	instituteGroup.Put("/:id", authMiddleware.Required(), instituteHandler.Update)
	instituteGroup.Patch("/:id/deactivate", authMiddleware.Required(), instituteHandler.Deactivate)
	instituteGroup.Delete("/:id", authMiddleware.Required(), instituteHandler.Delete)
}
