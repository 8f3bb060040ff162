// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "ledgerflow-wallet/internal/api"
	"ledgerflow-wallet/internal/api/handler"
	"ledgerflow-wallet/internal/config"
	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
	"ledgerflow-wallet/internal/repository/postgres"
	"ledgerflow-wallet/internal/service"
	"ledgerflow-wallet/internal/util"
	"ledgerflow-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Event sourcing infrastructure
	EventStore            repository.EventStore
	SnapshotStore         repository.SnapshotStore
	IdempotencyRepository repository.IdempotencyRepository

	// Read-model repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository

	// Services
	WalletService service.WalletService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger first so initialization failures are loggable
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Apply schema migrations and connect to the database
	if err := db.RunMigrations(app.Config.DB, app.Config.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database migrated and connection established.")

	// 4. Initialize Repositories
	app.EventStore = postgres.NewEventStore()
	app.SnapshotStore = postgres.NewSnapshotStore()
	app.IdempotencyRepository = postgres.NewIdempotencyRepository()
	app.UserRepository = postgres.NewUserRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize projection dispatcher and services
	dispatcher := service.NewProjectionDispatcher(app.DB, app.Logger,
		service.NewWalletProjector(app.WalletRepository),
		service.NewTransactionProjector(app.TransactionRepository),
		service.NewUserProjector(app.UserRepository),
	)
	app.WalletService = service.NewWalletService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor for reads outside transactions
		app.EventStore,
		app.SnapshotStore,
		app.IdempotencyRepository,
		app.UserRepository,
		app.WalletRepository,
		app.TransactionRepository,
		dispatcher,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		service.Config{
			Limits: domain.Limits{
				DailyWithdrawalCents:  app.Config.DailyWithdrawalLimitCents,
				DailyTransferOutCents: app.Config.DailyTransferLimitCents,
			},
			SnapshotFrequency: app.Config.SnapshotFrequency,
			DefaultCurrency:   app.Config.DefaultCurrency,
		},
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.WalletService, app.Logger)
	userHandler := handler.NewUserHandler(walletHandler, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, userHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
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
