// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "family-ledger/internal/api"
	"family-ledger/internal/api/handler"
	"family-ledger/internal/cache"
	"family-ledger/internal/config"
	"family-ledger/internal/repository"
	"family-ledger/internal/repository/postgres"
	"family-ledger/internal/service"
	"family-ledger/internal/util"
	"family-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	CurrencyRepository    repository.CurrencyRepository
	CategoryRepository    repository.CategoryRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	LineItemRepository    repository.LineItemRepository

	CurrencyCache cache.CurrencyCache
	redisCache    *cache.RedisCurrencyCache
	TxRunner      *service.TxRunner

	// Services
	CurrencyService service.CurrencyService
	CategoryService service.CategoryService
	WalletService   service.WalletService
	LedgerService   service.LedgerService
	LineItemService service.LineItemService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		app.Logger = util.GetLogger()
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if app.Config.RunMigrations {
		if err := db.RunMigrations(app.DB); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		app.Logger.Info("Database migrations applied.")
	}

	// 4. Initialize Repositories
	app.CurrencyRepository = postgres.NewCurrencyRepository()
	app.CategoryRepository = postgres.NewCategoryRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.LineItemRepository = postgres.NewLineItemRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Currency cache
	app.CurrencyCache = app.newCurrencyCache(ctx)

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.TxRunner = service.NewTxRunner(app.DB, db.BeginTx, db.CommitTx, db.RollbackTx, app.Config.DB.MaxRetries)
	app.CurrencyService = service.NewCurrencyService(app.DB, app.TxRunner, app.CurrencyRepository, app.CurrencyCache)
	app.CategoryService = service.NewCategoryService(app.DB, app.TxRunner, app.CategoryRepository, app.TransactionRepository)
	app.WalletService = service.NewWalletService(app.DB, app.TxRunner, app.WalletRepository, app.TransactionRepository, app.CurrencyService)
	app.LedgerService = service.NewLedgerService(app.DB, app.TxRunner, app.WalletRepository, app.CategoryRepository, app.TransactionRepository)
	app.LineItemService = service.NewLineItemService(app.DB, app.TransactionRepository, app.LineItemRepository)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Currency:    handler.NewCurrencyHandler(app.CurrencyService, app.Logger),
		Category:    handler.NewCategoryHandler(app.CategoryService, app.Logger),
		Wallet:      handler.NewWalletHandler(app.WalletService, app.LedgerService, app.Logger),
		Transaction: handler.NewTransactionHandler(app.LedgerService, app.LineItemService, app.Logger),
	}, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// newCurrencyCache uses Redis when REDIS_ADDR is set and reachable, and an
// in-process cache otherwise.
func (app *Application) newCurrencyCache(ctx context.Context) cache.CurrencyCache {
	if app.Config.Redis.Addr == "" {
		app.Logger.Info("Using in-process currency cache.")
		return cache.NewMemoryCurrencyCache()
	}

	redisCache := cache.NewRedisCurrencyCache(cache.NewRedisClient(cache.RedisConfig{
		Addr:     app.Config.Redis.Addr,
		Password: app.Config.Redis.Password,
		DB:       app.Config.Redis.DB,
	}), app.Config.Redis.TTL)
	if err := redisCache.HealthCheck(ctx); err != nil {
		app.Logger.Warn("Redis unavailable, using in-process currency cache", "addr", app.Config.Redis.Addr, "error", err)
		_ = redisCache.Close()
		return cache.NewMemoryCurrencyCache()
	}

	app.redisCache = redisCache
	app.Logger.Info("Using Redis currency cache.", "addr", app.Config.Redis.Addr)
	return redisCache
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.redisCache != nil {
		if err := app.redisCache.Close(); err != nil {
			app.Logger.Error("Failed to close Redis client", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
