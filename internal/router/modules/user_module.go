package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/messagely/internal/interface/http"
)

// UserModule serves profiles and per-user message listings. Profiles are
// public; listings are restricted by the gateway.
type UserModule struct {
	Handler    *handlers.UserHandler
	Middleware []gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, mw ...gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Middleware: mw}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users", m.Middleware...)
	g.GET("", m.Handler.List)
	g.GET("/search", m.Handler.Search)
	g.GET("/:username", m.Handler.Get)
	g.GET("/:username/to", m.Handler.MessagesTo)
	g.GET("/:username/from", m.Handler.MessagesFrom)
}
