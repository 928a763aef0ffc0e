// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	_ "creepycorners/docs" // swagger docs
	"creepycorners/internal/auth"
	"creepycorners/internal/cache"
	"creepycorners/internal/config"
	"creepycorners/internal/media"
	"creepycorners/internal/middleware"
	"creepycorners/internal/models"
	"creepycorners/internal/notifications"
	"creepycorners/internal/observability"
	"creepycorners/internal/repository"
	"creepycorners/internal/service"

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

// Server holds all dependencies and provides handlers
type Server struct {
	config  *config.Config
	db      *gorm.DB
	redis   *redis.Client
	app     *fiber.App
	metrics *middleware.Metrics
	media   *media.Store

	authService         *service.AuthService
	postService         *service.PostService
	commentService      *service.CommentService
	userService         *service.UserService
	followService       *service.FollowService
	notificationService *service.NotificationService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, revocation and pub/sub are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	c := cache.New(redisClient)

	userRepo := repository.NewUserRepository(db, c)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	store := media.NewStore(media.Options{
		Dir:        cfg.UploadDir,
		BaseURL:    cfg.PublicBaseURL,
		MaxBytes:   cfg.MediaMaxUploadBytes(),
		Thumbnails: cfg.MediaThumbnails,
	})

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	notificationService := service.NewNotificationService(notificationRepo, notifications.NewNotifier(redisClient))

	return &Server{
		config:  cfg,
		db:      db,
		redis:   redisClient,
		metrics: middleware.InitMetrics(observability.ServiceName),
		media:   store,

		authService:         service.NewAuthService(userRepo, tokens, c, cfg.AuthRevokeOnLogout),
		postService:         service.NewPostService(postRepo, store, notificationService, c, time.Duration(cfg.FeedCacheTTLSeconds)*time.Second),
		commentService:      service.NewCommentService(commentRepo, postRepo, notificationService, c),
		userService:         service.NewUserService(userRepo, followRepo, store, c),
		followService:       service.NewFollowService(followRepo, notificationService),
		notificationService: notificationService,
	}, nil
}

// App returns the Fiber app with middleware and routes registered, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "The Creepiest Corners API",
		BodyLimit:    int(s.config.MediaMaxUploadBytes()) + 1<<20,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeValidation
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = models.CodeNotFound
		case fe.Code >= fiber.StatusInternalServerError:
			code = models.CodeInternal
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: code, Message: fe.Message})
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	if s.metrics != nil {
		app.Use(s.metrics.Middleware())
	}

	// Media is embedded by the frontend from another origin.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if s.config.GlobalRateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.GlobalRateLimit,
			Expiration: time.Minute,
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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.metrics != nil {
		app.Get("/metrics", s.metrics.Handler())
	}
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Static(strings.TrimSuffix(media.PublicPrefix, "/"), s.media.Dir(), fiber.Static{
		ByteRange: true,
		MaxAge:    3600,
	})

	api := app.Group("/api")
	api.Get("/health", s.HealthCheck)

	// Auth routes
	api.Post("/register", middleware.RateLimit(
		s.redis, s.config.AuthRateLimit, time.Minute, "register"), s.Register)
	api.Post("/login", middleware.RateLimit(
		s.redis, s.config.AuthRateLimit, time.Minute, "login"), s.Login)
	api.Post("/logout", s.SessionOptional(), s.Logout)

	protected := api.Group("", s.SessionRequired())

	// Profile of the caller
	protected.Get("/user/profile", s.GetMyProfile)
	protected.Put("/user/profile", s.UpdateMyProfile)

	// Media upload creates a post
	protected.Post("/upload", s.CreatePost)

	posts := protected.Group("/posts")
	posts.Post("/upload", s.CreatePost)
	posts.Get("/", s.GetPosts)
	posts.Get("/search", s.SearchPosts)
	posts.Get("/user/:userId", s.GetUserPosts)
	// Specific /:postId/:action routes before the generic /:postId route
	posts.Post("/:postId/like", s.ToggleLike)
	posts.Post("/:postId/comment", s.AddComment)
	posts.Get("/:postId/comments", s.GetComments)
	posts.Get("/:postId", s.GetPost)

	users := protected.Group("/users")
	users.Post("/:userId/follow", s.ToggleFollow)
	users.Get("/:userId", s.GetUserProfile)

	notes := protected.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Post("/read", s.MarkNotificationsRead)
}

// SessionRequired returns the authentication middleware
func (s *Server) SessionRequired() fiber.Handler {
	return middleware.SessionRequired(s.authService, s.authService)
}

// SessionOptional attaches the caller when a valid token is sent.
func (s *Server) SessionOptional() fiber.Handler {
	return middleware.SessionOptional(s.authService, s.authService)
}

// HealthCheck handles GET /api/health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string}
// @Router /health [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only
// a configured but unreachable Redis makes the service unready.
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
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP server, then closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
