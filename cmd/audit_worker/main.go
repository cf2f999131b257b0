package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/messagely/config"
	"github.com/oksasatya/messagely/internal/worker"
	"github.com/oksasatya/messagely/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if !cfg.AuditEnabled {
		log.Println("AUDIT_ENABLED=false; audit worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQAuditQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	logger := helpers.NewLogger(cfg.AppName+"-audit", cfg.Env, cfg.LogLevel)

	q, err := helpers.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQAuditQueue, 32)
	if err != nil {
		logger.Fatalf("audit queue: %v", err)
	}
	defer q.Close()

	deliveries, err := q.Consume(cfg.AppName + "-audit")
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	h := &worker.AuditHandler{Logger: logger}
	done := make(chan struct{})
	go func() {
		h.Run(deliveries)
		close(done)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Infof("audit worker listening on queue=%s", cfg.RabbitMQAuditQueue)
	select {
	case <-stop:
		logger.Info("shutting down...")
	case <-done:
		logger.Warn("delivery channel closed")
		return
	}
	q.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
