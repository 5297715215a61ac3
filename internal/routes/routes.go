package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lumengate/lumengate/internal/auth"
	"github.com/lumengate/lumengate/internal/config"
	"github.com/lumengate/lumengate/internal/middleware"
	"github.com/lumengate/lumengate/internal/users"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. In development the
// Postgres-backed stores fall back to in-memory implementations when no
// database is wired; outside development both backends are mandatory.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var (
		nonceStore   auth.NonceStore
		sessionStore auth.SessionStore
		userRepo     users.Repository
	)
	if d.DB != nil {
		nonceStore = auth.NewPostgresNonceStore(d.DB)
		sessionStore = auth.NewPostgresSessionStore(d.DB)
		userRepo = users.NewPostgresRepository(d.DB)
	} else {
		nonceStore = auth.NewMemoryNonceStore()
		sessionStore = auth.NewMemorySessionStore()
		userRepo = users.NewMemoryRepository()
	}

	authSvc := auth.NewService(auth.Config{
		AccessSecret:  []byte(d.Cfg.AccessSecret),
		RefreshSecret: []byte(d.Cfg.RefreshSecret),
		AccessTTL:     d.Cfg.AccessTTL,
		RefreshTTL:    d.Cfg.RefreshTTL,
	}, nonceStore, sessionStore, userRepo)
	authHandler := auth.NewHandler(authSvc)

	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(userSvc)

	api := app.Group("/api/v1")

	rateLimiter := middleware.NonceRateLimit(d.Cache, d.Cfg.NonceRateLimit)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	bearer := middleware.BearerAuth([]byte(d.Cfg.AccessSecret))
	RegisterUserRoutes(api, userHandler, bearer)

	return nil
}
