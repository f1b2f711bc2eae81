package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/lifeline-connect/lifeline_connect/internal/config"
	"github.com/lifeline-connect/lifeline_connect/internal/dashboard"
	"github.com/lifeline-connect/lifeline_connect/internal/identity"
	"github.com/lifeline-connect/lifeline_connect/internal/middleware"
	"github.com/lifeline-connect/lifeline_connect/internal/notification"
	"github.com/lifeline-connect/lifeline_connect/internal/requests"
	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Store  store.Store
	Cache  *redis.Client
	Mailer notification.OTPMailer
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return errors.New("routes: store is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Sessions and pending challenges live in Redis when it is configured.
	var (
		sessionStore session.Store
		challenges   identity.ChallengeRepository
	)
	if d.Cache != nil {
		sessionStore = session.NewRedisStore(d.Cache)
		challenges = identity.NewRedisChallengeRepository(d.Cache)
	} else {
		sessionStore = session.NewMemoryStore()
		challenges = identity.NewMemoryRepository()
	}
	sessions := session.NewManager(sessionStore, []byte(d.Cfg.SessionSecret), d.Cfg.SessionTTL)

	notifier := notification.NewLoggerNotifier(d.Logger)
	mailer := d.Mailer
	if mailer == nil {
		mailer = notifier
	}

	identitySvc := identity.NewService(d.Store, challenges, mailer, sessions,
		identity.WithChallengeTTL(d.Cfg.OTPTTL),
		identity.WithLogger(d.Logger),
	)
	requestSvc := requests.NewService(d.Store, requests.PolicyFor(d.Cfg.RequestOwnerEnforced), notifier, d.Logger)
	dashboardSvc := dashboard.NewService(d.Store, d.Logger)

	sessionAuth := middleware.SessionAuth(sessions)

	// API routes
	api := app.Group("/api/v1")
	RegisterMetaRoutes(api, d)

	// Public routes
	RegisterAuthRoutes(api, identity.NewHandler(identitySvc), middleware.OTPRateLimit(d.Cache, d.Cfg.OTPRequestsPerMinute), sessionAuth)

	// Protected routes attach sessionAuth per route or per group.
	RegisterDashboardRoutes(api, dashboard.NewHandler(dashboardSvc, requestSvc), sessionAuth)
	RegisterRequestRoutes(api, requests.NewHandler(requestSvc), sessionAuth, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))

	return nil
}

// ErrorHandler renders every error as a single JSON notice. Errors that are
// not *fiber.Error are logged and reported as a generic 500.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := http.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else if log != nil {
			log.Error("unhandled error", "path", c.Path(), "request_id", middleware.RequestIDFrom(c), "error", err)
		}

		return c.Status(code).JSON(fiber.Map{
			"error":      msg,
			"request_id": middleware.RequestIDFrom(c),
		})
	}
}
