// Package server exposes the dashboard engine over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	_ "dashkeeper/docs" // swagger docs
	"dashkeeper/internal/auth"
	"dashkeeper/internal/bootstrap"
	"dashkeeper/internal/config"
	"dashkeeper/internal/featureflags"
	"dashkeeper/internal/middleware"
	"dashkeeper/internal/models"
	"dashkeeper/internal/modules"
	"dashkeeper/internal/observability"
	"dashkeeper/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	logger         *slog.Logger
	store          *repository.Store
	roles          *auth.CachedRoleLoader
	registry       modules.Registry
	featureFlags   *featureflags.Manager
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{DeployModules: cfg.DeployModulesOnStart})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Registry)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, which disables the role cache.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, registry modules.Registry) (*Server, error) {
	if registry == nil {
		registry = modules.Static{}
	}

	store := repository.NewStore(db)
	ttl := time.Duration(cfg.RoleCacheTTLSeconds) * time.Second

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("dashkeeper"),
		logger:         observability.Logger,
		store:          store,
		roles:          auth.NewCachedRoleLoader(store.Roles, redisClient, ttl),
		registry:       registry,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}, nil
}

// NewApp builds a Fiber app with the server's middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Dashkeeper API",
		UnescapePath: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, fe)
			}
			s.logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// After requestid and context so every line carries the request ID.
	app.Use(middleware.StructuredLogger(s.logger))

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
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

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/swagger/*", swagger.HandlerDefault)

	protected := api.Group("", s.AuthRequired())
	protected.Get("/feature-flags", s.GetFeatureFlags)

	homes := protected.Group("/homes")
	homes.Get("/", s.GetHomes)
	homes.Post("/", s.CreateHome)
	homes.Get("/choices", s.GetHomeChoices)
	// Specific /:home/:resource routes before the generic /:home routes
	homes.Get("/:home/panes", s.GetPanes)
	homes.Get("/:home/panes/choices", s.GetPaneChoices)
	homes.Put("/:home/panes/:pane/position", s.ReorderPane)
	homes.Post("/:home/panes/:pane/share", s.SharePane)
	homes.Put("/:home/panes/:pane/dashlets/:dashlet", s.UpdateDashlet)
	homes.Delete("/:home/panes/:pane/dashlets/:dashlet", s.DeleteDashlet)
	homes.Put("/:home/panes/:pane", s.UpdatePane)
	homes.Delete("/:home/panes/:pane", s.DeletePane)
	homes.Put("/:home", s.RenameHome)
	homes.Delete("/:home", s.DeleteHome)

	protected.Post("/dashlets", s.CreateDashlet)

	catalog := protected.Group("/catalog")
	catalog.Get("/dashlets", s.GetModuleDashlets)
	catalog.Get("/dashboards", s.GetSubscribableDashboards)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.Post("/:id", s.Subscribe)
	subscriptions.Put("/:id", s.SetSubscriptionDisabled)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetAdminFeatureFlags)
	admin.Post("/module-dashlets/deploy", s.DeployModuleDashlets)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it roles are read from the database on every request.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "degraded"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired validates the bearer token and records its subject as the acting user.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if parts := strings.Split(c.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		username, err := auth.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		middleware.SetUsername(c, username)
		return c.Next()
	}
}

// AdminRequired rejects users without the configured admin role with 403.
// Must be placed after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, err := s.roles.RolesOf(c.UserContext(), middleware.Username(c))
		if err != nil {
			return s.respondError(c, err)
		}
		if !slices.Contains(roles, s.config.AdminRole) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}
		return c.Next()
	}
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	s.logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			s.logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			s.logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			s.logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
