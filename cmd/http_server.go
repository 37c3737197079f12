package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/saas-admin/api"
	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/saas-admin/internal/analytics/postgres"
	"github.com/frahmantamala/saas-admin/internal/audit"
	auditPostgres "github.com/frahmantamala/saas-admin/internal/audit/postgres"
	"github.com/frahmantamala/saas-admin/internal/auth"
	authPostgres "github.com/frahmantamala/saas-admin/internal/auth/postgres"
	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/internal/customer"
	customerPostgres "github.com/frahmantamala/saas-admin/internal/customer/postgres"
	"github.com/frahmantamala/saas-admin/internal/expense"
	expensePostgres "github.com/frahmantamala/saas-admin/internal/expense/postgres"
	"github.com/frahmantamala/saas-admin/internal/notification"
	"github.com/frahmantamala/saas-admin/internal/promo"
	promoPostgres "github.com/frahmantamala/saas-admin/internal/promo/postgres"
	"github.com/frahmantamala/saas-admin/internal/salesperson"
	salesPostgres "github.com/frahmantamala/saas-admin/internal/salesperson/postgres"
	"github.com/frahmantamala/saas-admin/internal/transport/rest"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	Gorm   *gorm.DB
	DB     *sqlx.DB
	Redis  *redis.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           http.TimeoutHandler(deps.Router, deps.Config.Server.RequestTimeout, `{"error":{"type":"INTERNAL_ERROR","code":"REQUEST_TIMEOUT","message":"Request timed out"}}`),
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let in-flight audit writes and cache bumps finish
		deps.Bus.Wait()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	doc, err := api.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	lg.Debug("openapi document loaded", "title", doc.Info.Title, "version", doc.Info.Version)

	gdb, db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			// analytics falls back to direct computation
			lg.Warn("redis unavailable at startup", "addr", cfg.Redis.Addr, "error", err)
		}
	}

	deps := &Dependencies{
		Config: cfg,
		Gorm:   gdb,
		DB:     db,
		Redis:  rdb,
		Bus:    events.NewEventBus(lg),
		Router: chi.NewRouter(),
		Logger: lg,
	}
	deps.registerRoutes()
	return deps, nil
}

func (d *Dependencies) registerRoutes() {
	cfg, lg := d.Config, d.Logger

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(d.Gorm), tokens, cfg.Security.BCryptCost, lg)

	promoService := promo.NewService(promoPostgres.NewPromoRepository(d.Gorm), d.Bus, lg)
	expenseService := expense.NewService(expensePostgres.NewExpenseRepository(d.Gorm), d.Bus, lg)
	salesService := salesperson.NewService(salesPostgres.NewSalesPersonRepository(d.Gorm), d.Bus, lg)
	customerService := customer.NewService(customerPostgres.NewCustomerRepository(d.Gorm), salesService, d.Bus, lg)
	notificationService := notification.NewService(expenseService, lg)

	analyticsService := analytics.NewService(
		analyticsPostgres.NewRepository(d.DB),
		analytics.NewCache(d.Redis, cfg.Analytics.CacheTTL),
		lg,
	)
	analyticsService.Subscribe(d.Bus)

	auditService := audit.NewService(auditPostgres.NewAuditRepository(d.Gorm), lg)
	auditService.Subscribe(d.Bus)

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(d.Router, rest.Handlers{
		Health:       rest.NewHealthHandler(d.DB, d.Redis),
		Auth:         auth.NewHandler(authService, lg),
		Promo:        promo.NewHandler(promoService, lg),
		Expense:      expense.NewHandler(expenseService, lg),
		Notification: notification.NewHandler(notificationService, lg),
		Analytics:    analytics.NewHandler(analyticsService, lg),
		SalesPerson:  salesperson.NewHandler(salesService, lg),
		Customer:     customer.NewHandler(customerService, lg),
		Audit:        audit.NewHandler(auditService, lg),
	}, rest.Options{
		Logger:         lg,
		AllowedOrigins: cfg.Server.Origins(),
		Production:     cfg.IsProduction(),
		MetricsPath:    metricsPath,
		OpenAPI:        api.Document(),
	})
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

// initDB opens one pgx pool shared by gorm and sqlx.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.Source), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gdb, sqlx.NewDb(sqlDB, "pgx"), nil
}
