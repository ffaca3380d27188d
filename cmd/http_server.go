package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/internal/attendance"
	attendancepg "github.com/dayflow-hq/dayflow/internal/attendance/postgres"
	"github.com/dayflow-hq/dayflow/internal/auth"
	authpg "github.com/dayflow-hq/dayflow/internal/auth/postgres"
	"github.com/dayflow-hq/dayflow/internal/core/events"
	"github.com/dayflow-hq/dayflow/internal/dashboard"
	"github.com/dayflow-hq/dayflow/internal/employee"
	employeepg "github.com/dayflow-hq/dayflow/internal/employee/postgres"
	"github.com/dayflow-hq/dayflow/internal/leave"
	leavepg "github.com/dayflow-hq/dayflow/internal/leave/postgres"
	"github.com/dayflow-hq/dayflow/internal/notification"
	"github.com/dayflow-hq/dayflow/internal/payroll"
	payrollpg "github.com/dayflow-hq/dayflow/internal/payroll/postgres"
	"github.com/dayflow-hq/dayflow/internal/storage"
	"github.com/dayflow-hq/dayflow/internal/transport/rest"
	"github.com/dayflow-hq/dayflow/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	bus := events.NewEventBus(lg)

	objectStore, err := storage.NewFileStore(config.Storage.UploadsDir, config.Server.BaseURL+"/uploads")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	employeeRepo := employeepg.NewRepository(gormDB)
	employeeService := employee.NewService(employeeRepo, objectStore, lg)

	authRepo := authpg.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, employeeService, bus, config.Security.BCryptCost, lg)

	attendanceRepo := attendancepg.NewRepository(gormDB)
	attendanceService := attendance.NewService(attendanceRepo, attendanceRepo, config.Attendance, lg)

	leaveRepo := leavepg.NewRepository(gormDB)
	leaveService := leave.NewService(leaveRepo, employeeService, authService, bus, lg)

	payrollRepo := payrollpg.NewRepository(gormDB)
	payrollService := payroll.NewService(payrollRepo, bus, lg)

	dashboardService := dashboard.NewService(employeeService, attendanceService, leaveService, payrollService, lg)

	sender := notification.NewSender(config.SMTP, lg)
	notifier := notification.NewNotifier(sender, authService, config.Server.BaseURL, lg)
	notifier.Register(bus)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:       auth.NewHandler(authService, lg),
		Employee:   employee.NewHandler(employeeService, lg),
		Attendance: attendance.NewHandler(attendanceService, lg),
		Leave:      leave.NewHandler(leaveService, lg),
		Payroll:    payroll.NewHandler(payrollService, lg),
		Dashboard:  dashboard.NewHandler(dashboardService, lg),
	}, config.Storage.UploadsDir, lg)

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

// initDB opens the shared connection pool through the pgx stdlib driver.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
