// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "shopbot/internal/api"
	"shopbot/internal/api/handler"
	"shopbot/internal/config"
	"shopbot/internal/notify"
	"shopbot/internal/payment/yoomoney"
	"shopbot/internal/repository"
	"shopbot/internal/repository/postgres"
	"shopbot/internal/service"
	"shopbot/internal/util"
	"shopbot/internal/worker"
	"shopbot/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	TransactionRepository repository.TransactionRepository
	PaymentRepository     repository.PaymentRepository
	ProductRepository     repository.ProductRepository
	OrderRepository       repository.OrderRepository

	// Services
	LedgerService  service.LedgerService
	PaymentService service.PaymentService
	CatalogService service.CatalogService
	OrderService   service.OrderService

	Notifier   notify.Notifier
	Reconciler *worker.ReconciliationWorker

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database and apply schema
	database, err := db.NewPostgresDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	if err := db.Migrate(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.PaymentRepository = postgres.NewPaymentRepository()
	app.ProductRepository = postgres.NewProductRepository()
	app.OrderRepository = postgres.NewOrderRepository()

	// 5. Outbound integrations
	app.Notifier = app.newNotifier()
	provider := yoomoney.NewClient(yoomoney.Config{
		BaseURL:  cfg.Payment.BaseURL,
		Receiver: cfg.Payment.Receiver,
		Token:    cfg.Payment.Token,
	}, nil)
	if cfg.Payment.Receiver == "" || cfg.Payment.Token == "" {
		app.Logger.Warn("Payment provider is not fully configured; top-ups will not confirm")
	}

	// 6. Initialize Services
	txManager := service.NewTxManager(app.DB)
	app.LedgerService = service.NewLedgerService(txManager, app.DB, app.UserRepository, app.TransactionRepository)
	app.PaymentService = service.NewPaymentService(
		txManager,
		app.DB,
		app.UserRepository,
		app.TransactionRepository,
		app.PaymentRepository,
		provider,
		cfg.Reconcile.ConfirmTimeout,
	)
	app.CatalogService = service.NewCatalogService(app.DB, app.ProductRepository, cfg.CatalogPageSize)
	app.OrderService = service.NewOrderService(
		txManager,
		app.DB,
		app.UserRepository,
		app.ProductRepository,
		app.OrderRepository,
		app.TransactionRepository,
		util.GenerateOrderCode,
		app.Notifier,
		app.Logger,
	)
	app.Reconciler = worker.NewReconciliationWorker(
		app.PaymentService,
		app.Notifier,
		app.Logger,
		cfg.Reconcile.Interval,
		cfg.Reconcile.Concurrency,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	h := handler.NewHandler(app.LedgerService, app.PaymentService, app.CatalogService, app.OrderService, app.Logger)
	app.HTTPHandler = router.NewRouter(h, cfg.AdminToken, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) newNotifier() notify.Notifier {
	if app.Config.TelegramToken == "" {
		app.Logger.Warn("TELEGRAM_BOT_TOKEN is not set; notifications go to the log")
		return notify.NewLogNotifier(app.Logger)
	}
	tg, err := notify.NewTelegramNotifier(app.Config.TelegramToken)
	if err != nil {
		app.Logger.Error("Failed to start Telegram notifier, falling back to log", "error", err)
		return notify.NewLogNotifier(app.Logger)
	}
	return tg
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
