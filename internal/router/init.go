package router

import (
	"github.com/oksasatya/messagely/internal/container"
	handlers "github.com/oksasatya/messagely/internal/interface/http"
	"github.com/oksasatya/messagely/internal/interface/middleware"
	"github.com/oksasatya/messagely/internal/router/modules"
)

// InitModules builds the handlers from c and adds every module to r.
func InitModules(r *Registry, c *container.Container) {
	// Auth routes never look at tokens, so a stale one cannot block login.
	identify := middleware.Identify(c.Gateway)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(c.Gateway, c.Logger, c.Config.JWTTTL, c.Config.Env == "production")))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.Gateway, c.Logger), identify))
	r.Add(modules.NewMessageModule(handlers.NewMessageHandler(c.Gateway, c.Logger), identify))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
