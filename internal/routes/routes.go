package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/minibank/minibank/internal/account"
	"github.com/minibank/minibank/internal/config"
	"github.com/minibank/minibank/internal/events"
	"github.com/minibank/minibank/internal/identity"
	"github.com/minibank/minibank/internal/ledger"
	"github.com/minibank/minibank/internal/middleware"
	"github.com/minibank/minibank/internal/statement"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// In-memory fallbacks exist for development only.
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
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var store ledger.Store
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
	} else {
		store = ledger.NewMemoryStore()
	}

	var publisher events.Publisher
	if len(d.Cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(d.Cfg.KafkaBrokers)
	} else {
		publisher = events.NewLogPublisher(d.Logger)
	}

	engine := ledger.NewEngine(store, publisher, d.Logger, d.Cfg.LockTimeout)
	accountSvc := account.NewService(store)
	statementSvc := statement.NewService(engine)

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo)

	ledgerHandler := ledger.NewHandler(engine)
	accountHandler := account.NewHandler(accountSvc)
	identityHandler := identity.NewHandler(identitySvc)
	statementHandler := statement.NewHandler(statementSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	loginLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterIdentityRoutes(api, identityHandler, loginLimiter)
	RegisterAccountRoutes(api, accountHandler)
	RegisterLedgerRoutes(api, ledgerHandler)
	RegisterStatementRoutes(api, statementHandler)

	return nil
}
