// Package container holds the components built at startup. main constructs
// one Container and hands it to the router; nothing here is global.
package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/config"
	"github.com/oksasatya/messagely/internal/application"
	repo "github.com/oksasatya/messagely/internal/domain/repository"
	"github.com/oksasatya/messagely/pkg/helpers"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	JWT    *helpers.JWTManager

	Users    repo.UserRepository
	Messages repo.MessageRepository

	// Optional collaborators; nil when disabled.
	Audit application.AuditSink
	Index application.UserIndex

	Gateway *application.Gateway
}

// New wires the services and the gateway over the given repositories.
func New(cfg *config.Config, logger *logrus.Logger, users repo.UserRepository, messages repo.MessageRepository) *Container {
	jwtManager := helpers.NewJWTManager(cfg.SecretKey, cfg.JWTTTL)
	userSvc := application.NewUserService(users, cfg.BcryptWorkFactor, logger)
	msgSvc := application.NewMessageService(messages, userSvc, logger)
	return &Container{
		Config:   cfg,
		Logger:   logger,
		JWT:      jwtManager,
		Users:    users,
		Messages: messages,
		Gateway:  application.NewGateway(userSvc, msgSvc, jwtManager, logger),
	}
}

// WithAudit routes audit events to sink.
func (c *Container) WithAudit(sink application.AuditSink) *Container {
	c.Audit = sink
	c.Gateway.Audit = sink
	return c
}

// WithIndex enables indexed user search.
func (c *Container) WithIndex(idx application.UserIndex) *Container {
	c.Index = idx
	c.Gateway.Index = idx
	return c
}
