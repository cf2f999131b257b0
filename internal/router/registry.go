package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/messagely/pkg/response"
)

// Registry collects modules, then mounts them under /api in one pass.
// Modules bring their own middleware.
type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts the modules. Unknown routes get the standard error
// envelope instead of Gin's plain-text 404.
func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.API)
	}
	r.Engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "route not found", nil)
	})
}
