// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"incognitor/internal/cache"
	"incognitor/internal/config"
	"incognitor/internal/database"
	"incognitor/internal/featureflags"
	"incognitor/internal/middleware"
	"incognitor/internal/repository"
	"incognitor/internal/search"
	"incognitor/internal/service"
	"incognitor/internal/storage"
	"incognitor/internal/summarize"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	tokenRepo   repository.TokenRepository
	contentRepo repository.ContentRepository
	commentRepo repository.CommentRepository

	bus          *search.Publisher
	projector    *search.Projector
	featureFlags *featureflags.Manager

	accountService *service.AccountService
	contentService *service.ContentService
	commentService *service.CommentService
	searchService  *service.SearchService
	summaryService *service.SummaryService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and a miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	contentRepo := repository.NewContentRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	var store *storage.LocalStore
	if cfg.UploadDir != "" {
		var err error
		store, err = storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			return nil, err
		}
	}

	bus := search.NewBus()
	publisher := search.NewPublisher(bus)
	index := search.NewRedisIndex(redisClient)
	projector := search.NewProjector(bus, index, contentRepo, userRepo)

	prom := middleware.InitMetrics("incognitor-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		tokenRepo:      tokenRepo,
		contentRepo:    contentRepo,
		commentRepo:    commentRepo,
		bus:            publisher,
		projector:      projector,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	server.accountService = service.NewAccountService(db, userRepo, tokenRepo, store, publisher)
	server.contentService = service.NewContentService(db, contentRepo, userRepo, store, publisher)
	server.commentService = service.NewCommentService(commentRepo, contentRepo)
	server.searchService = service.NewSearchService(index, contentRepo, userRepo)
	server.summaryService = service.NewSummaryService(contentRepo,
		summarize.NewClient(cfg.OpenAIKey, cfg.OpenAIModel))

	return server, nil
}

// Projector exposes the search projector so the bootstrap layer can run
// it and trigger a startup rebuild.
func (s *Server) Projector() *search.Projector {
	return s.projector
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry spans
	app.Use(middleware.TracingMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
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
		// Never rate-limit preflight requests; they are handled by CORS.
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

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded files
	if s.config.UploadDir != "" {
		app.Static("/storage", s.config.UploadDir)
	}

	// Public account routes
	api.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	api.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	api.Post("/forgot-password", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "forgot_password"), s.ForgotPassword)

	// Public browse routes
	api.Get("/contents", s.ListContents)
	api.Get("/tags", s.ListTags)
	api.Get("/people", s.ListPeople)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired(s.tokenRepo))

	protected.Post("/logout", s.Logout)
	protected.Get("/me", s.Me)
	protected.Get("/me/flags", s.FeatureFlags)
	// Specific /me/posts/:resource route before the generic one
	protected.Get("/me/posts/summary", middleware.RateLimit(
		s.redis, 5, time.Minute, "summary"), s.MyPostsSummary)
	protected.Get("/me/posts", s.MyContent)
	protected.Post("/profile/update", s.UpdateProfile)

	contents := protected.Group("/content")
	contents.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.Search)
	contents.Post("/", s.CreateContent)
	// POST with a _method=PATCH override is accepted for multipart clients
	contents.Post("/:slug", s.UpdateContent)
	contents.Patch("/:slug", s.UpdateContent)
	contents.Delete("/:slug", s.DeleteContent)
	contents.Get("/:slug", s.GetContent)

	protected.Post("/posts/:post/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.AddComment)
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

	// Redis is optional; search and caching degrade without it.
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
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds (once) and returns the configured Fiber application.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "incognitor-api",
		BodyLimit: 25 << 20,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	return s.App().Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
