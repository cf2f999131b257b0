package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/messagely/config"
	"github.com/oksasatya/messagely/internal/application"
	"github.com/oksasatya/messagely/internal/domain/repository"
	pginfra "github.com/oksasatya/messagely/internal/infrastructure/postgres"
	"github.com/oksasatya/messagely/internal/infrastructure/sqlite"
	"github.com/oksasatya/messagely/pkg/apperror"
	"github.com/oksasatya/messagely/pkg/helpers"
)

var demoUsers = []application.RegisterInput{
	{Username: "alice", Password: "password123", FirstName: "Alice", LastName: "Liddell", Phone: "+15550100001"},
	{Username: "bob", Password: "password123", FirstName: "Bob", LastName: "Builder", Phone: "+15550100002"},
	{Username: "carol", Password: "password123", FirstName: "Carol", LastName: "Danvers", Phone: "+15550100003"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	var users repository.UserRepository
	var messages repository.MessageRepository
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		conn, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			log.Fatalf("failed to open sqlite: %v", err)
		}
		defer func() { _ = conn.Close() }()
		users, messages = sqlite.NewUserRepository(conn), sqlite.NewMessageRepository(conn)
	default:
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Hour)
		if err != nil {
			log.Fatalf("failed to open db: %v", err)
		}
		defer pool.Close()
		users, messages = pginfra.NewUserRepository(pool), pginfra.NewMessageRepository(pool)
	}

	userSvc := application.NewUserService(users, cfg.BcryptWorkFactor, logger)
	msgSvc := application.NewMessageService(messages, userSvc, logger)

	for _, in := range demoUsers {
		if _, err := userSvc.Register(ctx, in); err != nil {
			if errors.Is(err, apperror.ErrDuplicateUsername) {
				logger.WithField("username", in.Username).Info("already seeded")
				continue
			}
			log.Fatalf("failed to seed %s: %v", in.Username, err)
		}
		logger.WithField("username", in.Username).Info("seeded user")
	}

	if _, err := msgSvc.Send(ctx, "alice", "bob", "Hi Bob, welcome to messagely."); err != nil {
		log.Fatalf("failed to seed message: %v", err)
	}
	logger.Infof("seeded %d users, password=%s", len(demoUsers), demoUsers[0].Password)
}
