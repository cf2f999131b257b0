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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/config"
	"github.com/oksasatya/messagely/internal/application"
	"github.com/oksasatya/messagely/internal/container"
	repo "github.com/oksasatya/messagely/internal/domain/repository"
	pginfra "github.com/oksasatya/messagely/internal/infrastructure/postgres"
	"github.com/oksasatya/messagely/internal/infrastructure/search"
	"github.com/oksasatya/messagely/internal/infrastructure/sqlite"
	"github.com/oksasatya/messagely/internal/interface/middleware"
	"github.com/oksasatya/messagely/internal/router"
	"github.com/oksasatya/messagely/pkg/helpers"
	"github.com/oksasatya/messagely/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	users, messages, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer closeStore()

	c := container.New(cfg, logger, users, messages)

	if cfg.AuditEnabled {
		pub, err := helpers.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQAuditQueue, 0)
		if err != nil {
			logger.WithError(err).Warn("audit publisher unavailable, continuing without audit events")
		} else {
			defer pub.Close()
			c.WithAudit(pub)
		}
	}
	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, search falls back to the store")
		} else {
			c.WithIndex(search.NewUserIndex(es, cfg.ESUsersIndex))
			go backfillIndex(c.Gateway, logger)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	r.Use(middleware.CORS(cfg.CORSOrigins()))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

// openStore connects the configured driver, applies migrations and returns
// the repositories with a close func.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repo.UserRepository, repo.MessageRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		conn, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewUserRepository(conn), sqlite.NewMessageRepository(conn), func() { _ = conn.Close() }, nil
	default:
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
			return nil, nil, nil, err
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, nil, err
		}
		return pginfra.NewUserRepository(pool), pginfra.NewMessageRepository(pool), pool.Close, nil
	}
}

func backfillIndex(gw *application.Gateway, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := gw.ReindexUsers(ctx)
	if err != nil {
		logger.WithError(err).WithField("indexed", n).Warn("user index backfill incomplete")
		return
	}
	logger.WithField("indexed", n).Info("user index backfilled")
}
