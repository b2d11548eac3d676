package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eion/usersvc/internal/config"
	"github.com/eion/usersvc/internal/database"
	"github.com/eion/usersvc/internal/server"
	"github.com/eion/usersvc/internal/users"
)

// AppState holds all application services
type AppState struct {
	DB          *bun.DB
	Logger      *zap.Logger
	Config      *config.Config
	Health      *database.HealthManager
	UserService users.UserService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("driver", cfg.Database.Driver),
		zap.String("address", cfg.Http.Addr()))

	as, err := newAppState(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(
		users.NewUserHandlers(as.UserService, logger),
		as.Health,
		logger,
		server.Options{MaxRequestSize: cfg.Http.MaxRequestSize},
	)

	srv := &http.Server{
		Addr:              cfg.Http.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := setupSignalHandler(as, srv, logger)

	logger.Info("Starting users server", zap.String("address", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState opens the database and builds the services on top of it
func newAppState(cfg *config.Config, logger *zap.Logger) (*AppState, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		pg := cfg.Database.Postgres
		logger.Info("Database configuration",
			zap.String("host", pg.Host),
			zap.Int("port", pg.Port),
			zap.String("database", pg.Database),
			zap.String("user", pg.User))
	} else {
		logger.Info("Database configuration", zap.String("sqlite_path", cfg.Database.SQLite.Path))
	}

	db, err := database.Open(context.Background(), cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	health := database.NewHealthManager(logger)
	health.AddChecker(database.NewDatabaseHealthChecker(db))

	userStore := users.NewUserStore(db)
	userService := users.NewUserService(userStore)

	return &AppState{
		DB:          db,
		Logger:      logger,
		Config:      cfg,
		Health:      health,
		UserService: userService,
	}, nil
}

func initLogger(logConfig config.LogConfig) *zap.Logger {
	var zapConfig zap.Config
	if logConfig.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	switch logConfig.Level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func setupSignalHandler(as *AppState, srv *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		timeout := time.Duration(as.Config.Http.ShutdownTimeout) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if err := as.DB.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}
