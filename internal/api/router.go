package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sandia/users-manager/docs"
	"github.com/sandia/users-manager/internal/api/handler"
	"github.com/sandia/users-manager/internal/api/middleware"
	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/core/ports"
	"github.com/sandia/users-manager/internal/core/service"
	"github.com/sandia/users-manager/internal/core/session"
	mongodb "github.com/sandia/users-manager/internal/infrastructure/db/mongo"
	redisdb "github.com/sandia/users-manager/internal/infrastructure/db/redis"
	"github.com/sandia/users-manager/internal/infrastructure/http/handlers"
	"github.com/sandia/users-manager/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit sink may be nil to disable auditing (tests do this).
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger, audit ports.AuditSink) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("users"))

	// --- Dependencies ---
	profileRepo := mongodb.NewProfileRepository(db)
	var sessions ports.SessionStore
	if rdb != nil {
		sessions = redisdb.NewSessionStore(rdb, cfg.SessionTTL)
	} else {
		sessions = session.NewStore(cfg.SessionTTL)
	}
	profileService := service.NewProfileService(profileRepo, sessions, audit, log)
	profileHandler := handler.NewProfileHandler(profileService, cfg.JWTSecret)

	authRequired := middleware.Auth(cfg.JWTSecret, sessions)
	adminOnly := middleware.RequireKind(string(domain.KindAdministrator))

	// --- Auth routes ---
	e.POST("/auth/register", profileHandler.Register)
	e.POST("/auth/login", profileHandler.Login)
	e.POST("/auth/logout", profileHandler.Logout, authRequired)
	e.GET("/auth/me", profileHandler.Me, authRequired)

	// --- User management (administrators only) ---
	users := e.Group("/v1/users", authRequired, adminOnly)
	users.GET("", profileHandler.ListUsers)
	users.PUT("/:id", profileHandler.UpdateUser)
	users.DELETE("/:id", profileHandler.DeleteUser)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
