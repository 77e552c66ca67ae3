// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quayside/internal/cache"
	"quayside/internal/config"
	"quayside/internal/database"
	"quayside/internal/featureflags"
	"quayside/internal/middleware"
	"quayside/internal/models"
	"quayside/internal/repository"
	"quayside/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	barrelRepo     repository.BarrelRepository
	postRepo       repository.FezPostRepository
	relations      *service.RelationService
	fezService     *service.FezService
	keywordService *service.KeywordService
	userService    *service.UserService
	imageService   *service.ImageService
	featureFlags   *featureflags.Manager
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	barrelRepo := repository.NewBarrelRepository(db)
	postRepo := repository.NewFezPostRepository(db)

	prom := middleware.InitMetrics("quayside-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		barrelRepo:     barrelRepo,
		postRepo:       postRepo,
	}
	server.relations = service.NewRelationService(barrelRepo, userRepo)
	server.fezService = service.NewFezService(barrelRepo, postRepo, server.relations)
	server.keywordService = service.NewKeywordService(barrelRepo)
	server.userService = service.NewUserService(userRepo)
	server.imageService = service.NewImageService(cfg)
	server.featureFlags = featureflags.NewManager(cfg.FeatureFlags)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Distributed tracing
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Quayside Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Image serving is public; references are unguessable content hashes.
	api.Get("/images/:hash", s.GetImage)

	protected := api.Group("", s.AuthRequired(), s.RequireAccess(models.AccessQuarantined))

	// Fez routes. Specific paths before parameterized ones so "/types",
	// "/open" and friends never match ":id".
	fez := protected.Group("/fez", s.RequireAccess(models.AccessVerified))
	fez.Get("/types", s.GetFezTypes)
	fez.Post("/create", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_fez"), s.CreateFez)
	fez.Get("/open", s.GetOpenFezzes)
	fez.Get("/joined", s.GetJoinedFezzes)
	// The owned listing is a POST for client compatibility; the GET alias is
	// kept for convenience.
	fez.Post("/owner", s.GetOwnedFezzes)
	fez.Get("/owner", s.GetOwnedFezzes)
	fez.Post("/post/:postId/delete", s.DeleteFezPost)
	fez.Get("/:id", s.GetFez)
	fez.Post("/:id/join", s.JoinFez)
	fez.Post("/:id/unjoin", s.UnjoinFez)
	fez.Post("/:id/update", s.UpdateFez)
	fez.Post("/:id/cancel", s.CancelFez)
	fez.Post("/:id/post", middleware.RateLimit(
		s.redis, 15, time.Minute, "fez_post"), s.CreateFezPost)
	fez.Post("/:id/favorite", s.FavoriteFez)
	fez.Post("/:id/unfavorite", s.UnfavoriteFez)
	fez.Post("/:id/user/:userId/add", s.OwnerAddUser)
	fez.Post("/:id/user/:userId/remove", s.OwnerRemoveUser)

	// Keyword routes
	user := protected.Group("/user")
	user.Get("/alertwords", s.GetAlertwords)
	user.Post("/alertwords/add/:word", s.AddAlertword)
	user.Post("/alertwords/remove/:word", s.RemoveAlertword)
	user.Get("/mutewords", s.GetMutewords)
	user.Post("/mutewords/add/:word", s.AddMuteword)
	user.Post("/mutewords/remove/:word", s.RemoveMuteword)
	user.Get("/features", s.GetFeatureFlags)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.RequireAccess(models.AccessModerator), s.GetAllUsers)
	users.Post("/:id/block", s.BlockUser)
	users.Post("/:id/unblock", s.UnblockUser)
	users.Post("/:id/mute", s.MuteUser)
	users.Post("/:id/unmute", s.UnmuteUser)
	users.Post("/:id/accesslevel", s.RequireAccess(models.AccessModerator), s.SetAccessLevel)
	users.Get("/:id", s.GetUserProfile)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Quayside",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// RequireAccess returns middleware that rejects users below the given access
// level with 403. Must be placed after AuthRequired so that userID is
// available in locals.
func (s *Server) RequireAccess(level models.AccessLevel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		current, err := s.accessLevelByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !current.AtLeast(level) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError(fmt.Sprintf("Requires %s access", level)))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		// Parse and validate token
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		// Validate issuer and audience
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "quayside-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "quayside-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		// Extract user ID from subject claim
		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// Store user ID in context
		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func (s *Server) accessLevelByUserID(ctx context.Context, userID uint) (models.AccessLevel, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("access_level").First(&user, userID).Error; err != nil {
		return models.AccessBanned, models.NewInternalError(err)
	}
	return user.AccessLevel, nil
}
