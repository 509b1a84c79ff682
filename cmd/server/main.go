package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adminbank/backend/docs"
	"github.com/adminbank/backend/internal/audit"
	"github.com/adminbank/backend/internal/config"
	"github.com/adminbank/backend/internal/database"
	"github.com/adminbank/backend/internal/handlers"
	"github.com/adminbank/backend/internal/logger"
	mW "github.com/adminbank/backend/internal/middleware"
	"github.com/adminbank/backend/internal/services"
	"github.com/adminbank/backend/internal/store"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Admin Bank API
// @version 1.0
// @description Admin-operated account balances, transfers and audit trail
// @host localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	st, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient := database.InitRedis(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditLogger := audit.NewAuditLogger()
	hasher := services.NewArgon2Hasher(cfg.Argon2)
	sessions := services.NewJWTSessions(cfg.JWT.SecretKey, cfg.JWT.Expiry)

	adminService := services.NewAdminService(st, hasher, auditLogger)
	authService := services.NewAuthService(st, hasher, sessions, redisClient)
	transactionService := services.NewTransactionService(st, auditLogger)

	if err := bootstrapSuperAdmin(ctx, adminService, cfg.Bootstrap); err != nil {
		return err
	}

	api := &handlers.API{
		Auth:         handlers.NewAuthHandler(authService, cfg.Cookie),
		Admins:       handlers.NewAdminHandler(adminService, transactionService),
		Users:        handlers.NewUserHandler(transactionService),
		Transactions: handlers.NewTransactionHandler(transactionService),
	}
	r := handlers.NewRouter(api, mW.Authenticated(authService, cfg.Cookie.Name))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.String("addr", server.Addr), zap.String("store", cfg.Database.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Log.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		logger.Log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewPostgres(db), func() { db.Close() }, nil
}

// bootstrapSuperAdmin seeds the configured super-admin into an empty directory.
func bootstrapSuperAdmin(ctx context.Context, admins *services.AdminService, cfg config.BootstrapConfig) error {
	if cfg.AdminName == "" {
		return nil
	}
	admin, created, err := admins.EnsureSuperAdmin(ctx, cfg.AdminName, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Log.Info("bootstrap super-admin created", zap.String("name", admin.Name), zap.String("admin_code", admin.Code))
	}
	return nil
}
