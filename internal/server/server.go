// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "threads/docs" // swagger docs
	"threads/internal/assets"
	"threads/internal/bootstrap"
	"threads/internal/cache"
	"threads/internal/config"
	"threads/internal/database"
	"threads/internal/middleware"
	"threads/internal/models"
	"threads/internal/repository"
	"threads/internal/service"
	"threads/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	localUserID  = "userID"
	localSession = "session"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	userService    *service.UserService
	postService    *service.PostService
	replyService   *service.ReplyService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	host := assets.NewLocalHost(cfg.MediaDir, cfg.MediaBaseURL, cfg.ImageMaxUploadSizeMB, cfg.ImageMaxDimension)
	return NewServerWithDeps(cfg, db, redisClient, host)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching and token revocation are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, host assets.Host) (*Server, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}
	if host == nil {
		return nil, errors.New("asset host is required")
	}

	store := cache.NewStore(redisClient, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	userRepo := repository.NewUserRepository(db, store)
	followRepo := repository.NewFollowRepository(db, store)
	postRepo := repository.NewPostRepository(db, store)
	replyRepo := repository.NewReplyRepository(db, store)

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("threads-api"),
		sessions:       session.NewManager(cfg.JWTSecret, ttl, cfg.CookieSecure, redisClient),
		userService:    service.NewUserService(userRepo, followRepo, host),
		postService:    service.NewPostService(postRepo, userRepo, followRepo, host),
		replyService:   service.NewReplyService(replyRepo, postRepo, userRepo),
	}, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	// Base64 inflates uploads by a third; leave headroom for the JSON envelope.
	bodyLimit := max(s.config.ImageMaxUploadSizeMB, 1) * 1024 * 1024 * 4 / 3
	bodyLimit += 64 * 1024

	app := fiber.New(fiber.Config{
		AppName:      "Threads API",
		BodyLimit:    bodyLimit,
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// ErrorHandler renders errors that escape a handler. Fiber's own errors keep
// their status; anything else is logged and reported as a 500.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("path", c.Path()), slog.String("error", err.Error()))
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		// The frontend may load uploaded images from another origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if strings.HasPrefix(s.config.MediaBaseURL, "/") && s.config.MediaDir != "" {
		app.Static(s.config.MediaBaseURL, s.config.MediaDir, fiber.Static{
			MaxAge: 86400,
		})
	}

	api := app.Group("/api")

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	users := api.Group("/users")
	users.Post("/signup", s.Signup)
	users.Post("/login", s.Login)
	users.Post("/logout", s.Logout)
	users.Get("/profile/:username", s.GetUserProfile)
	users.Post("/follow/:id", s.AuthRequired(), s.FollowUnfollowUser)
	users.Put("/update/:id", s.AuthRequired(), s.UpdateUser)
	users.Delete("/delete/:id", s.AuthRequired(), s.DeleteUser)

	posts := api.Group("/posts")
	posts.Get("/feed", s.AuthRequired(), s.GetFeed)
	posts.Get("/get-post/:id", s.GetPost)
	posts.Get("/user/:username", s.GetUserPosts)
	posts.Post("/publish", s.AuthRequired(), s.CreatePost)
	for _, register := range []func(string, ...fiber.Handler) fiber.Router{posts.Put, posts.Post} {
		register("/like/:id", s.AuthRequired(), s.LikePost)
		register("/dislike/:id", s.AuthRequired(), s.DislikePost)
		register("/reply/:id", s.AuthRequired(), s.ReplyToPost)
	}
	// Define the reply route BEFORE the generic /delete/:id route
	posts.Delete("/delete/:postId/:commentId", s.AuthRequired(), s.DeleteReply)
	posts.Delete("/delete/:id", s.AuthRequired(), s.DeletePost)
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs the cache and revocation list, so running without it
	// is degraded rather than unready.
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

// AuthRequired returns the authentication middleware. The session cookie is
// preferred; an "Authorization: Bearer" header is accepted as a fallback.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := s.sessions.Parse(session.TokenFromRequest(c))
		if err != nil {
			return models.Respond(c, err)
		}

		if s.sessions.IsRevoked(c.UserContext(), identity.TokenID) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		// A valid token may outlive its account.
		exists, err := s.userService.Exists(c.UserContext(), identity.UserID)
		if err != nil {
			return models.Respond(c, err)
		}
		if !exists {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("User not found"))
		}

		c.Locals(localUserID, identity.UserID)
		c.Locals(localSession, identity)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), identity.UserID))

		return c.Next()
	}
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
